package worker

import (
	"sync"
	"time"
)

// State is the enrichment lifecycle of one article.
type State string

// Enrichment states.
const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Record is the latest known state of one article.
type Record struct {
	State     State     `json:"state"`
	UpdatedAt time.Time `json:"updated_at"`
	Error     string    `json:"error,omitempty"`
}

// Counts tallies records by state.
type Counts struct {
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// Tracker records per-article enrichment state. Only the worker and the
// dispatcher write to it.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewTracker constructs an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{records: make(map[string]Record)}
}

// MarkQueued records that articleID was accepted by the queue. The worker may
// dequeue the entry before the caller gets here, so a processing or finished
// record at or after at is kept.
func (t *Tracker) MarkQueued(articleID string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.records[articleID]; ok && cur.State != StateQueued && !cur.UpdatedAt.Before(at) {
		return
	}
	t.records[articleID] = Record{State: StateQueued, UpdatedAt: at}
}

func (t *Tracker) set(articleID string, rec Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[articleID] = rec
}

// Status returns the latest record for articleID.
func (t *Tracker) Status(articleID string) (Record, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[articleID]
	return rec, ok
}

// Counts tallies the latest state of every tracked article.
func (t *Tracker) Counts() Counts {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var c Counts
	for _, rec := range t.records {
		switch rec.State {
		case StateQueued:
			c.Queued++
		case StateProcessing:
			c.Processing++
		case StateCompleted:
			c.Completed++
		case StateFailed:
			c.Failed++
		}
	}
	return c
}
