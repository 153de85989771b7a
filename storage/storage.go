package storage

import (
	"context"
	"time"

	"github.com/sig-0/vcbrates/storage/types"
)

const (
	// DefaultLimit is the page size used when a query sets none
	DefaultLimit int32 = 100

	// MaxLimit caps the page size of a single query
	MaxLimit int32 = 500
)

// Storage is an abstraction over the exchange rate history
type Storage interface {
	// SaveExchangeRates saves a batch of exchange rate data points.
	// A data point for an existing series and effective date replaces it
	SaveExchangeRates(context.Context, []*types.ExchangeRate) error

	// RateAsOf fetches, per matching series, the latest rate effective at the given time
	RateAsOf(context.Context, *types.RateQuery, time.Time) (*types.Page[*types.ExchangeRate], error)

	// ListSources lists all sources with stored rates
	ListSources(context.Context) ([]types.Source, error)

	// ListCurrencies lists all currencies present on either side of a stored rate
	ListCurrencies(context.Context) ([]types.Currency, error)
}

// ClampLimit resolves the effective page size for a query limit
func ClampLimit(limit int32) int32 {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
