// Package dispatcher contains tests for worker coordination.
package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/newspulse/internal/clock/system"
	"github.com/JakeFAU/newspulse/internal/enrichment"
	"github.com/JakeFAU/newspulse/internal/enrichment/heuristic"
	"github.com/JakeFAU/newspulse/internal/news"
	queuemem "github.com/JakeFAU/newspulse/internal/queue/memory"
	"github.com/JakeFAU/newspulse/internal/storage/memory"
	"github.com/JakeFAU/newspulse/internal/worker"
)

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newDispatcher(t *testing.T, queue news.Queue, handle *enrichment.Handle) (*Dispatcher, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	w := worker.New(queue, store, handle, nil, system.NewFixed(testNow), nil,
		worker.Config{DequeueTimeout: 20 * time.Millisecond, IdleSleep: 5 * time.Millisecond}, zap.NewNop())
	return New(queue, w), store
}

func entry(id string) news.QueueEntry {
	return news.QueueEntry{
		ArticleID: id,
		Article:   news.Article{ID: id, Title: "ЦБ повысил ключевую ставку до 18%", SourceName: "ЦБ", PublishedAt: testNow},
		Enqueued:  testNow,
	}
}

// TestDispatcherRunStartsWorker ensures the worker drains the queue and stops on cancel.
func TestDispatcherRunStartsWorker(t *testing.T) {
	t.Parallel()

	handle := enrichment.NewHandle(enrichment.Static(heuristic.New()), nil)
	handle.Start(context.Background())
	require.Eventually(t, handle.Ready, time.Second, 5*time.Millisecond)

	d, store := newDispatcher(t, queuemem.NewQueue(), handle)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	queued, err := d.Enqueue(ctx, entry("cb1"))
	require.NoError(t, err)
	require.True(t, queued)

	require.Eventually(t, func() bool {
		_, err := store.ReadOverlay(ctx, "cb1")
		return err == nil
	}, time.Second, 10*time.Millisecond)
	rec, ok := d.Tracker().Status("cb1")
	require.True(t, ok)
	require.Equal(t, worker.StateCompleted, rec.State)
	require.Zero(t, d.QueueLen())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after context cancel")
	}
}

// TestDispatcherEnqueueTracksQueued verifies accepted entries are tracked and
// duplicates are reported.
func TestDispatcherEnqueueTracksQueued(t *testing.T) {
	t.Parallel()

	d, _ := newDispatcher(t, queuemem.NewQueue(), nil)
	ctx := context.Background()

	queued, err := d.Enqueue(ctx, entry("a"))
	require.NoError(t, err)
	require.True(t, queued)
	queued, err = d.Enqueue(ctx, entry("a"))
	require.NoError(t, err)
	require.False(t, queued)

	require.Equal(t, 1, d.QueueLen())
	require.Equal(t, worker.Counts{Queued: 1}, d.Tracker().Counts())
}

// TestDispatcherEnqueueForwardsErrors verifies queue errors are wrapped for callers.
func TestDispatcherEnqueueForwardsErrors(t *testing.T) {
	t.Parallel()

	queue := queuemem.NewQueue()
	queue.Close()
	d, _ := newDispatcher(t, queue, nil)

	_, err := d.Enqueue(context.Background(), entry("a"))
	require.Error(t, err)
	require.True(t, errors.Is(err, news.ErrQueueClosed))
	require.Contains(t, err.Error(), "queue enqueue")
}

// slowAckQueue delays returning from Enqueue until after the entry has been
// handed over, so the worker can finish it first.
type slowAckQueue struct {
	*queuemem.Queue
	afterEnqueue func()
}

func (q *slowAckQueue) Enqueue(ctx context.Context, e news.QueueEntry) (bool, error) {
	queued, err := q.Queue.Enqueue(ctx, e)
	if queued && q.afterEnqueue != nil {
		q.afterEnqueue()
	}
	return queued, err
}

// TestDispatcherEnqueueKeepsFinishedState verifies a fast worker's completed
// state is not reset to queued when Enqueue returns late.
func TestDispatcherEnqueueKeepsFinishedState(t *testing.T) {
	t.Parallel()

	handle := enrichment.NewHandle(enrichment.Static(heuristic.New()), nil)
	handle.Start(context.Background())
	require.Eventually(t, handle.Ready, time.Second, 5*time.Millisecond)

	queue := &slowAckQueue{Queue: queuemem.NewQueue()}
	d, store := newDispatcher(t, queue, handle)
	queue.afterEnqueue = func() {
		deadline := time.Now().Add(time.Second)
		for time.Now().Before(deadline) {
			if rec, ok := d.Tracker().Status("cb1"); ok && rec.State == worker.StateCompleted {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	queued, err := d.Enqueue(ctx, entry("cb1"))
	require.NoError(t, err)
	require.True(t, queued)

	_, err = store.ReadOverlay(ctx, "cb1")
	require.NoError(t, err)
	rec, ok := d.Tracker().Status("cb1")
	require.True(t, ok)
	require.Equal(t, worker.StateCompleted, rec.State)
	require.Equal(t, worker.Counts{Completed: 1}, d.Tracker().Counts())
}
