package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/sig-0/vcbrates/normalize"
)

const (
	DefaultRelayPath     = "/v1/relay/vcb"
	DefaultTimeout       = 10 * time.Second
	DefaultRetryNum      = 2
	DefaultRetryDuration = time.Second

	maxPayloadSize = 4 << 20
)

var (
	ErrStatusCode = errors.New("invalid status code received")

	errInvalidBaseURL = errors.New("invalid relay base URL")
)

// Fetcher reads raw rate records from the relay and normalizes them
type Fetcher struct {
	client *http.Client
	logger *slog.Logger

	endpoint string
	path     string

	retryNum      uint64
	retryDuration time.Duration
}

// New creates a new relay fetcher for the given base URL
func New(baseURL string, opts ...Option) (*Fetcher, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", errInvalidBaseURL, baseURL)
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		path:          DefaultRelayPath,
		retryNum:      DefaultRetryNum,
		retryDuration: DefaultRetryDuration,
	}

	// Apply the options
	for _, opt := range opts {
		opt(f)
	}

	f.endpoint = u.JoinPath(f.path).String()

	return f, nil
}

// Endpoint returns the full relay URL
func (f *Fetcher) Endpoint() string {
	return f.endpoint
}

// FetchRates fetches and normalizes the current rates, in feed order.
// Any failure is logged and yields an empty result
func (f *Fetcher) FetchRates(ctx context.Context) []normalize.Rate {
	payload, err := f.fetchPayload(ctx)
	if err != nil {
		f.logger.Error(
			"unable to fetch rates",
			"endpoint", f.endpoint,
			"err", err,
		)

		return []normalize.Rate{}
	}

	return normalize.Rates(payload, f.logger)
}

// fetchPayload fetches the raw relay payload, retrying failed requests
func (f *Fetcher) fetchPayload(ctx context.Context) ([]byte, error) {
	b, err := retry.NewConstant(f.retryDuration)
	if err != nil {
		return nil, fmt.Errorf("unable to create backoff: %w", err)
	}

	b = retry.WithMaxRetries(f.retryNum, b)

	var payload []byte

	if err = retry.Do(ctx, b, func(ctx context.Context) error {
		body, err := f.get(ctx)
		if err != nil {
			f.logger.Debug(
				"relay request failed",
				"endpoint", f.endpoint,
				"err", err,
			)

			return retry.RetryableError(err)
		}

		payload = body

		return nil
	}); err != nil {
		return nil, err
	}

	return payload, nil
}

func (f *Fetcher) get(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("unable to create new GET request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrStatusCode, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadSize))
	if err != nil {
		return nil, fmt.Errorf("unable to read response: %w", err)
	}

	return body, nil
}
