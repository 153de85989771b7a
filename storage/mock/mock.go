package mock

import (
	"context"
	"time"

	"github.com/sig-0/vcbrates/storage/types"
)

type (
	SaveExchangeRatesDelegate func(context.Context, []*types.ExchangeRate) error
	RateAsOfDelegate          func(context.Context, *types.RateQuery, time.Time) (*types.Page[*types.ExchangeRate], error)
	ListSourcesDelegate       func(context.Context) ([]types.Source, error)
	ListCurrenciesDelegate    func(context.Context) ([]types.Currency, error)
)

// Storage is a delegate-driven storage.Storage, for tests
type Storage struct {
	SaveExchangeRatesFn SaveExchangeRatesDelegate
	RateAsOfFn          RateAsOfDelegate
	ListSourcesFn       ListSourcesDelegate
	ListCurrenciesFn    ListCurrenciesDelegate
}

func (m *Storage) SaveExchangeRates(ctx context.Context, rates []*types.ExchangeRate) error {
	if m.SaveExchangeRatesFn != nil {
		return m.SaveExchangeRatesFn(ctx, rates)
	}

	return nil
}

func (m *Storage) RateAsOf(
	ctx context.Context,
	query *types.RateQuery,
	at time.Time,
) (*types.Page[*types.ExchangeRate], error) {
	if m.RateAsOfFn != nil {
		return m.RateAsOfFn(ctx, query, at)
	}

	return &types.Page[*types.ExchangeRate]{}, nil
}

func (m *Storage) ListSources(ctx context.Context) ([]types.Source, error) {
	if m.ListSourcesFn != nil {
		return m.ListSourcesFn(ctx)
	}

	return nil, nil
}

func (m *Storage) ListCurrencies(ctx context.Context) ([]types.Currency, error) {
	if m.ListCurrenciesFn != nil {
		return m.ListCurrenciesFn(ctx)
	}

	return nil, nil
}
