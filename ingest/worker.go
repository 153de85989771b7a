package ingest

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/sig-0/vcbrates/storage/types"
)

// ingestJob is a single scheduled provider fetch
type ingestJob struct {
	at         time.Time
	provider   Provider
	providerID xid.ID
}

// Less orders jobs by due time (earliest first)
func (a ingestJob) Less(b ingestJob) bool {
	return a.at.Before(b.at)
}

// fetchResult is the outcome of a single provider fetch
type fetchResult struct {
	err        error
	rates      []*types.ExchangeRate
	providerID xid.ID
}

// runJob fetches using the provider and reports back on resCh
func runJob(
	ctx context.Context,
	job ingestJob,
	resCh chan<- *fetchResult,
) {
	rates, err := job.provider.Fetch(ctx)

	result := &fetchResult{
		err:        err,
		rates:      rates,
		providerID: job.providerID,
	}

	select {
	case <-ctx.Done():
	case resCh <- result:
	}
}
