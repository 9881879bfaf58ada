// Package worker drains the enrichment queue and writes overlays.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/newspulse/internal/enrichment"
	"github.com/JakeFAU/newspulse/internal/metrics"
	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/projection"
)

// Default loop timings.
const (
	DefaultDequeueTimeout = time.Second
	DefaultIdleSleep      = 100 * time.Millisecond
)

// Enrichment outcome labels for metrics.
const (
	outcomeOK    = "ok"
	outcomeError = "error"
	outcomePanic = "panic"
)

// Config controls the consume loop.
type Config struct {
	DequeueTimeout time.Duration
	IdleSleep      time.Duration
}

func (c Config) withDefaults() Config {
	if c.DequeueTimeout <= 0 {
		c.DequeueTimeout = DefaultDequeueTimeout
	}
	if c.IdleSleep <= 0 {
		c.IdleSleep = DefaultIdleSleep
	}
	return c
}

// Worker is the single consumer of the enrichment queue and the only writer
// of overlays.
type Worker struct {
	queue     news.Queue
	store     news.Store
	handle    *enrichment.Handle
	publisher news.Publisher
	clock     news.Clock
	tracker   *Tracker
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Worker. publisher may be nil.
func New(
	queue news.Queue,
	store news.Store,
	handle *enrichment.Handle,
	publisher news.Publisher,
	clock news.Clock,
	tracker *Tracker,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tracker == nil {
		tracker = NewTracker()
	}
	return &Worker{
		queue:     queue,
		store:     store,
		handle:    handle,
		publisher: publisher,
		clock:     clock,
		tracker:   tracker,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}
}

// Tracker exposes the per-article state records.
func (w *Worker) Tracker() *Tracker {
	return w.tracker
}

// Run consumes entries until ctx ends or the queue closes. A failed article
// never stops the loop.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		entry, err := w.dequeue(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return
			case errors.Is(err, news.ErrQueueClosed):
				w.logger.Info("queue closed, worker exiting")
				return
			case errors.Is(err, context.DeadlineExceeded):
			default:
				w.logger.Error("queue dequeue failed", zap.Error(err))
			}
			w.idle(ctx)
			continue
		}
		w.process(ctx, entry)
	}
}

func (w *Worker) dequeue(ctx context.Context) (news.QueueEntry, error) {
	dctx, cancel := context.WithTimeout(ctx, w.cfg.DequeueTimeout)
	defer cancel()
	return w.queue.Dequeue(dctx)
}

func (w *Worker) idle(ctx context.Context) {
	timer := time.NewTimer(w.cfg.IdleSleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (w *Worker) process(ctx context.Context, entry news.QueueEntry) {
	log := w.logger.With(zap.String("article_id", entry.ArticleID))
	defer func() {
		w.queue.Done(entry.ArticleID)
		metrics.SetQueueDepth(w.queue.Len())
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Error("enrichment panicked", zap.Any("panic", r))
			w.fail(entry.ArticleID, fmt.Errorf("panic: %v", r), outcomePanic)
		}
	}()

	w.tracker.set(entry.ArticleID, Record{State: StateProcessing, UpdatedAt: w.clock.Now()})
	log.Debug("enriching article")

	if err := w.enrich(ctx, log, entry); err != nil {
		log.Warn("enrichment failed", zap.Error(err))
		w.fail(entry.ArticleID, err, outcomeError)
		return
	}
	w.tracker.set(entry.ArticleID, Record{State: StateCompleted, UpdatedAt: w.clock.Now()})
	metrics.ObserveEnrichment(outcomeOK)
}

func (w *Worker) enrich(ctx context.Context, log *zap.Logger, entry news.QueueEntry) error {
	svc, err := w.handle.Service()
	if err != nil {
		return fmt.Errorf("enrichment service: %w", err)
	}
	overlay, err := projection.Enrich(ctx, svc, entry.Article, w.clock.Now())
	if err != nil {
		return err
	}
	if err := w.store.WriteOverlay(ctx, overlay); err != nil {
		return fmt.Errorf("write overlay: %w", err)
	}
	if w.publisher != nil {
		if _, err := w.publisher.Publish(ctx, news.TopicArticleEnriched, overlay); err != nil {
			log.Warn("publish enrichment event failed", zap.Error(err))
		}
	}
	return nil
}

func (w *Worker) fail(articleID string, err error, outcome string) {
	w.tracker.set(articleID, Record{State: StateFailed, UpdatedAt: w.clock.Now(), Error: err.Error()})
	metrics.ObserveEnrichment(outcome)
}
