// Package memory provides the in-process enrichment queue.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/JakeFAU/newspulse/internal/news"
)

// ErrClosed is returned once the queue has been closed.
var ErrClosed = news.ErrQueueClosed

// Queue is an unbounded FIFO with context-aware dequeue. An article ID stays
// in flight from Enqueue until Done, and is rejected while in flight.
type Queue struct {
	mu       sync.Mutex
	items    []news.QueueEntry
	inFlight map[string]struct{}
	notify   chan struct{}
	done     chan struct{}
	closed   bool
}

// NewQueue constructs an empty queue.
func NewQueue() *Queue {
	return &Queue{
		inFlight: make(map[string]struct{}),
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Enqueue appends entry without blocking. It returns false when the article
// is already pending or being processed.
func (q *Queue) Enqueue(ctx context.Context, entry news.QueueEntry) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("enqueue canceled: %w", err)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false, ErrClosed
	}
	if _, busy := q.inFlight[entry.ArticleID]; busy {
		return false, nil
	}
	q.inFlight[entry.ArticleID] = struct{}{}
	q.items = append(q.items, entry)
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true, nil
}

// Dequeue pops the oldest entry, waiting until one arrives, ctx ends, or the
// queue closes.
func (q *Queue) Dequeue(ctx context.Context) (news.QueueEntry, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			entry := q.items[0]
			q.items[0] = news.QueueEntry{}
			q.items = q.items[1:]
			more := len(q.items) > 0
			q.mu.Unlock()
			if more {
				select {
				case q.notify <- struct{}{}:
				default:
				}
			}
			return entry, nil
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return news.QueueEntry{}, ErrClosed
		}

		select {
		case <-ctx.Done():
			return news.QueueEntry{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
		case <-q.done:
		case <-q.notify:
		}
	}
}

// Done releases the article ID so it can be enqueued again.
func (q *Queue) Done(articleID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inFlight, articleID)
}

// Len reports the number of pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops the queue. Pending entries are dropped. Close is idempotent.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.items = nil
	close(q.done)
}
