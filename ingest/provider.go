package ingest

import (
	"context"
	"time"

	"github.com/sig-0/vcbrates/storage/types"
)

// Provider is a single exchange rate source polled by the orchestrator
type Provider interface {
	// Name returns the human-readable name of the provider
	Name() string

	// Interval returns the pause between two successful fetches
	Interval() time.Duration

	// Fetch is the provider's main fetch job, yielding exchange rate data points
	Fetch(context.Context) ([]*types.ExchangeRate, error)
}
