package serve

import (
	"fmt"

	"github.com/sig-0/vcbrates/provider/vcb"
	"github.com/sig-0/vcbrates/server/config"
)

// rateBoard is the bank rate board, shared by the relay and the ingestion
type rateBoard struct {
	client   *vcb.Client
	provider *vcb.Provider
}

// newRateBoard creates the rate board client and provider for the upstream
func newRateBoard(upstream *config.Upstream) (*rateBoard, error) {
	if upstream == nil {
		upstream = config.DefaultUpstream()
	}

	timeout, err := upstream.TimeoutDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid upstream timeout: %w", err)
	}

	interval, err := upstream.IntervalDuration()
	if err != nil {
		return nil, fmt.Errorf("invalid upstream interval: %w", err)
	}

	client := vcb.NewClient(upstream.URL, timeout)

	return &rateBoard{
		client:   client,
		provider: vcb.NewProvider(client, interval),
	}, nil
}
