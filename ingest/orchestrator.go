package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sethvargo/go-retry"
	"github.com/sig-0/iq"

	"github.com/sig-0/vcbrates/storage"
)

const (
	defaultRetryBase   = 10 * time.Second
	defaultRetryMax    = 15 * time.Minute
	defaultSaveTimeout = 10 * time.Second

	resultBufferSize = 100
)

var (
	errInvalidProvider = errors.New("invalid provider")
	errInvalidInterval = errors.New("invalid interval")
)

// Orchestrator schedules registered providers and stores what they fetch
type Orchestrator struct {
	storage storage.Storage
	logger  *slog.Logger

	providers sync.Map // xid.ID -> Provider

	q             iq.Queue[ingestJob]
	queryInterval time.Duration
	qMux          sync.Mutex

	retryBase   time.Duration
	retryMax    time.Duration
	saveTimeout time.Duration
}

// New creates a new Orchestrator instance
func New(storage storage.Storage, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		storage:       storage,
		q:             iq.NewQueue[ingestJob](),
		queryInterval: time.Second,
		retryBase:     defaultRetryBase,
		retryMax:      defaultRetryMax,
		saveTimeout:   defaultSaveTimeout,
	}

	// Apply the options
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Register registers a new provider with the orchestrator.
// The provider is immediately queued up for execution
func (o *Orchestrator) Register(p Provider) error {
	if p == nil || p.Name() == "" {
		return errInvalidProvider
	}

	if p.Interval() <= 0 {
		return errInvalidInterval
	}

	id := xid.New()
	o.providers.Store(id, p)

	o.logger.Info(
		"registered new provider",
		"name", p.Name(),
		"id", id.String(),
		"interval", p.Interval().String(),
	)

	o.schedule(time.Now().UTC(), id, p)

	return nil
}

// Start starts the provider orchestration service loop [BLOCKING]
func (o *Orchestrator) Start(ctx context.Context) error {
	var (
		resCh = make(chan *fetchResult, resultBufferSize)

		// consecutive failure backoffs, owned by this loop
		backoffs = make(map[xid.ID]retry.Backoff)
	)

	ticker := time.NewTicker(o.queryInterval)
	defer ticker.Stop()

	// dispatch starts all jobs that are due
	dispatch := func() {
		for ctx.Err() == nil {
			job := o.nextDue()
			if job == nil {
				return
			}

			o.logger.Debug(
				"starting ingest",
				"name", job.provider.Name(),
			)

			go runJob(ctx, *job, resCh)
		}
	}

	// Start the first set of due jobs (on boot)
	dispatch()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("orchestrator service shut down")

			return nil
		case <-ticker.C:
			dispatch()
		case result := <-resCh:
			o.handleResult(ctx, result, backoffs)
		}
	}
}

// handleResult stores a fetch result and reschedules its provider
func (o *Orchestrator) handleResult(
	ctx context.Context,
	result *fetchResult,
	backoffs map[xid.ID]retry.Backoff,
) {
	now := time.Now().UTC()

	raw, ok := o.providers.Load(result.providerID)
	if !ok {
		o.logger.Error(
			"unable to load registered provider",
			"id", result.providerID.String(),
		)

		return
	}

	p, _ := raw.(Provider)

	if result.err != nil {
		delay := o.retryDelay(result.providerID, backoffs)

		o.logger.Error(
			"unable to fetch rates",
			"name", p.Name(),
			"retry_in", delay.String(),
			"err", result.err,
		)

		o.schedule(now.Add(delay), result.providerID, p)

		return
	}

	delete(backoffs, result.providerID)

	saveCtx, cancelFn := context.WithTimeout(ctx, o.saveTimeout)
	defer cancelFn()

	if err := o.storage.SaveExchangeRates(saveCtx, result.rates); err != nil {
		o.logger.Error(
			"unable to save exchange rates",
			"name", p.Name(),
			"count", len(result.rates),
			"err", err,
		)
	} else {
		o.logger.Info(
			"saved exchange rates",
			"name", p.Name(),
			"count", len(result.rates),
		)
	}

	o.schedule(now.Add(p.Interval()), result.providerID, p)
}

// retryDelay returns the next retry delay for the provider's failure streak
func (o *Orchestrator) retryDelay(id xid.ID, backoffs map[xid.ID]retry.Backoff) time.Duration {
	b, ok := backoffs[id]
	if !ok {
		var err error

		if b, err = retry.NewExponential(o.retryBase); err != nil {
			return o.retryMax
		}

		backoffs[id] = b
	}

	delay, stop := b.Next()
	if stop || delay <= 0 || delay > o.retryMax {
		return o.retryMax
	}

	return delay
}

// schedule queues a provider fetch at the given time
func (o *Orchestrator) schedule(
	at time.Time,
	providerID xid.ID,
	provider Provider,
) {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	o.q.Push(ingestJob{
		at:         at,
		providerID: providerID,
		provider:   provider,
	})
}

// nextDue pops the next job that is due, if any
func (o *Orchestrator) nextDue() *ingestJob {
	o.qMux.Lock()
	defer o.qMux.Unlock()

	if o.q.Len() == 0 {
		return nil
	}

	if o.q.Index(0).at.After(time.Now().UTC()) {
		return nil
	}

	return o.q.PopFront()
}
