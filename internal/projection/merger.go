package projection

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/JakeFAU/newspulse/internal/enrichment"
	"github.com/JakeFAU/newspulse/internal/news"
)

// Merger resolves articles to views. It is stateless and safe for concurrent use.
type Merger struct {
	store  news.Store
	handle *enrichment.Handle
	queue  news.Enqueuer
	clock  news.Clock
	logger *zap.Logger
}

// NewMerger wires a Merger. handle and queue may be nil, in which case every
// article without an overlay stays on the fast projection.
func NewMerger(store news.Store, handle *enrichment.Handle, queue news.Enqueuer, clock news.Clock, logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Merger{store: store, handle: handle, queue: queue, clock: clock, logger: logger}
}

// View returns the stored overlay when present, else the fast projection. Reading
// an unenriched article hands it to the enrichment queue when enrichment is live.
func (m *Merger) View(ctx context.Context, a news.Article) news.ArticleView {
	overlay, err := m.store.ReadOverlay(ctx, a.ID)
	switch {
	case err == nil:
		return overlay.View
	case !errors.Is(err, news.ErrNotFound):
		m.logger.Warn("read overlay failed", zap.String("article_id", a.ID), zap.Error(err))
	}

	view := Fast(a)
	if m.queue == nil || !m.handle.Ready() {
		return view
	}
	if _, err := m.queue.Enqueue(ctx, news.QueueEntry{ArticleID: a.ID, Article: a, Enqueued: m.clock.Now()}); err != nil {
		m.logger.Warn("enqueue for enrichment failed", zap.String("article_id", a.ID), zap.Error(err))
		return view
	}
	// A false return means the article is already pending or processing.
	view.NeuralProcessing = NeuralQueued
	return view
}

// List returns views for the finance articles matching q.
func (m *Merger) List(ctx context.Context, q news.Query) ([]news.ArticleView, error) {
	articles, err := m.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	views := make([]news.ArticleView, 0, len(articles))
	for _, a := range articles {
		views = append(views, m.View(ctx, a))
	}
	return views, nil
}

// Get resolves an identity prefix to a view. Misses wrap news.ErrNotFound.
func (m *Merger) Get(ctx context.Context, prefix string) (news.ArticleView, error) {
	a, err := m.store.GetByPrefix(ctx, prefix)
	if err != nil {
		return news.ArticleView{}, fmt.Errorf("get article %q: %w", prefix, err)
	}
	return m.View(ctx, a), nil
}
