package ingest

import (
	"log/slog"
	"time"
)

type Option func(o *Orchestrator)

// WithLogger specifies the logger for the orchestrator
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithQueryInterval specifies how often the orchestrator checks for due jobs.
// Defaults to 1s
func WithQueryInterval(q time.Duration) Option {
	return func(o *Orchestrator) {
		o.queryInterval = q
	}
}

// WithRetryBackoff specifies the retry delay after a failed fetch.
// The delay starts at base and doubles on every consecutive failure, up to max.
// Defaults to 10s and 15m
func WithRetryBackoff(base, maxDelay time.Duration) Option {
	return func(o *Orchestrator) {
		o.retryBase = base
		o.retryMax = maxDelay
	}
}

// WithSaveTimeout specifies the timeout for storing a single fetch result.
// Defaults to 10s
func WithSaveTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.saveTimeout = d
	}
}
