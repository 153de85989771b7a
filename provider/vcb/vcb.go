package vcb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sig-0/vcbrates/normalize"
	"github.com/sig-0/vcbrates/provider/currencies"
	"github.com/sig-0/vcbrates/storage/types"
)

// DefaultInterval is how often the rate board is ingested.
// The bank revises its board several times a day
const DefaultInterval = 30 * time.Minute

var errNoRates = errors.New("no valid rates on the rate board")

var VietcombankSource types.Source = types.SourceVietcombank

// Provider ingests the Vietcombank rate board
type Provider struct {
	client   *Client
	interval time.Duration
}

// NewProvider creates a new instance of the Vietcombank provider
func NewProvider(client *Client, interval time.Duration) *Provider {
	return &Provider{
		client:   client,
		interval: interval,
	}
}

func (p *Provider) Name() string {
	return "Vietcombank"
}

func (p *Provider) Interval() time.Duration {
	return p.interval
}

func (p *Provider) Fetch(ctx context.Context) ([]*types.ExchangeRate, error) {
	feed, err := p.client.FetchFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch rate board: %w", err)
	}

	rates := normalize.Records(feed.Records)
	if len(rates) == 0 {
		return nil, errNoRates
	}

	var (
		fetchTime     = time.Now().UTC()
		effectiveDate = fetchTime
		out           = make([]*types.ExchangeRate, 0, len(rates)*3)
	)

	if !feed.AsOf.IsZero() {
		effectiveDate = feed.AsOf
	}

	for _, rate := range rates {
		base := types.Currency(strings.ToUpper(rate.Code))
		if base == currencies.VND {
			continue
		}

		quotes := []struct {
			value    *float64
			rateType types.RateType
		}{
			{rate.Buy, types.RateTypeBUY},
			{rate.Transfer, types.RateTypeTRANSFER},
			{rate.Sell, types.RateTypeSELL},
		}

		for _, quote := range quotes {
			// absent quotes are skipped, never stored as zero
			if quote.value == nil {
				continue
			}

			out = append(out, &types.ExchangeRate{
				AsOf:      effectiveDate,
				FetchedAt: fetchTime,
				Base:      base,
				Target:    currencies.VND,
				RateType:  quote.rateType,
				Source:    VietcombankSource,
				Rate:      *quote.value,
			})
		}
	}

	if len(out) == 0 {
		return nil, errNoRates
	}

	return out, nil
}
