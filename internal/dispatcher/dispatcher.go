// Package dispatcher owns the enrichment queue and its single worker.
package dispatcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/newspulse/internal/metrics"
	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/worker"
)

// Dispatcher accepts enrichment work from readers and drains it with one worker.
type Dispatcher struct {
	queue  news.Queue
	worker *worker.Worker
}

// New creates a Dispatcher.
func New(queue news.Queue, w *worker.Worker) *Dispatcher {
	return &Dispatcher{
		queue:  queue,
		worker: w,
	}
}

// Run starts the worker and blocks until the context finishes.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.worker.Run(ctx)
	}()
	<-ctx.Done()
	wg.Wait()
}

// Enqueue hands entry to the queue without blocking. It returns false when the
// article is already pending or being processed.
func (d *Dispatcher) Enqueue(ctx context.Context, entry news.QueueEntry) (bool, error) {
	queued, err := d.queue.Enqueue(ctx, entry)
	if err != nil {
		return false, fmt.Errorf("queue enqueue: %w", err)
	}
	if queued {
		d.worker.Tracker().MarkQueued(entry.ArticleID, entry.Enqueued)
	}
	metrics.SetQueueDepth(d.queue.Len())
	return queued, nil
}

// QueueLen reports pending entries.
func (d *Dispatcher) QueueLen() int {
	return d.queue.Len()
}

// Tracker exposes worker state for status endpoints.
func (d *Dispatcher) Tracker() *worker.Tracker {
	return d.worker.Tracker()
}
