package ingest

import (
	"context"
	"time"

	"github.com/sig-0/vcbrates/storage/types"
)

type fetchDelegate func(context.Context) ([]*types.ExchangeRate, error)

type mockProvider struct {
	fetchFn  fetchDelegate
	name     string
	interval time.Duration
}

// newMockProvider creates a provider mock with the given schedule
func newMockProvider(name string, interval time.Duration, fetchFn fetchDelegate) *mockProvider {
	return &mockProvider{
		name:     name,
		interval: interval,
		fetchFn:  fetchFn,
	}
}

func (m *mockProvider) Name() string {
	return m.name
}

func (m *mockProvider) Interval() time.Duration {
	return m.interval
}

func (m *mockProvider) Fetch(ctx context.Context) ([]*types.ExchangeRate, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}

	return nil, nil
}
