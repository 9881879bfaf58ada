package news

import (
	"context"
	"time"
)

// Store persists articles and enrichment overlays.
type Store interface {
	Upsert(ctx context.Context, article Article) error
	Query(ctx context.Context, q Query) ([]Article, error)
	GetByPrefix(ctx context.Context, prefix string) (Article, error)
	WriteOverlay(ctx context.Context, overlay Overlay) error
	ReadOverlay(ctx context.Context, articleID string) (Overlay, error)
	Stats(ctx context.Context, since time.Time) (Stats, error)
	Ping(ctx context.Context) error
	Close() error
}

// DraftStore keeps operator-saved drafts.
type DraftStore interface {
	SaveDraft(ctx context.Context, draft SavedDraft) error
	GetDraft(ctx context.Context, articleID string) (SavedDraft, error)
}

// Queue buffers enrichment work.
type Queue interface {
	Enqueue(ctx context.Context, entry QueueEntry) (bool, error)
	Dequeue(ctx context.Context) (QueueEntry, error)
	Done(articleID string)
	Len() int
	Close()
}

// Enqueuer accepts enrichment work without blocking the caller.
type Enqueuer interface {
	Enqueue(ctx context.Context, entry QueueEntry) (bool, error)
}

// FetchRequest describes a single page or feed retrieval.
type FetchRequest struct {
	URL string
}

// FetchResponse holds the retrieved document.
type FetchResponse struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Fetcher retrieves remote documents.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (FetchResponse, error)
}

// Publisher emits pipeline events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Clock provides time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator creates identifiers for runs and requests.
type IDGenerator interface {
	NewID() (string, error)
}

// Event topics.
const (
	TopicArticleEnriched     = "article.enriched"
	TopicCollectionCompleted = "collection.completed"
)
