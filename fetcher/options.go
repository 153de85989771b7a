package fetcher

import (
	"log/slog"
	"net/http"
	"time"
)

type Option func(f *Fetcher)

// WithLogger specifies the logger for the fetcher
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = l
	}
}

// WithHTTPClient specifies the HTTP client used to reach the relay
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithPath overrides the relay path, relative to the base URL
func WithPath(path string) Option {
	return func(f *Fetcher) {
		f.path = path
	}
}

// WithRetryNum sets the number of repeated requests after a failed fetch
func WithRetryNum(n uint64) Option {
	return func(f *Fetcher) {
		f.retryNum = n
	}
}

// WithRetryDuration sets the pause between repeated requests
func WithRetryDuration(d time.Duration) Option {
	return func(f *Fetcher) {
		f.retryDuration = d
	}
}
