// Package memory provides in-process article, overlay, and draft stores.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/storage/sqlq"
)

// Store implements news.Store and news.DraftStore over maps.
type Store struct {
	mu       sync.RWMutex
	articles map[string]news.Article
	overlays map[string]news.Overlay
	drafts   map[string]news.SavedDraft
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		articles: make(map[string]news.Article),
		overlays: make(map[string]news.Overlay),
		drafts:   make(map[string]news.SavedDraft),
	}
}

// Upsert inserts or replaces the article keyed by its ID.
func (s *Store) Upsert(_ context.Context, article news.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	article.Tags = append([]string(nil), article.Tags...)
	s.articles[article.ID] = article
	return nil
}

// Query returns finance articles matching q.
func (s *Store) Query(_ context.Context, q news.Query) ([]news.Article, error) {
	s.mu.RLock()
	out := make([]news.Article, 0)
	for _, a := range s.articles {
		if !a.Finance || a.PublishedAt.Before(q.Since) || !q.Band.Contains(a.Importance) {
			continue
		}
		out = append(out, a)
	}
	s.mu.RUnlock()

	news.SortArticles(out, q.Sort)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// GetByPrefix returns the newest finance article whose ID starts with prefix.
func (s *Store) GetByPrefix(_ context.Context, prefix string) (news.Article, error) {
	if !sqlq.ValidPrefix(prefix) {
		return news.Article{}, news.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		best  news.Article
		found bool
	)
	for id, a := range s.articles {
		if !a.Finance || !strings.HasPrefix(id, prefix) {
			continue
		}
		if !found || a.PublishedAt.After(best.PublishedAt) {
			best, found = a, true
		}
	}
	if !found {
		return news.Article{}, news.ErrNotFound
	}
	return best, nil
}

// WriteOverlay stores the overlay, replacing any earlier one.
func (s *Store) WriteOverlay(_ context.Context, overlay news.Overlay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays[overlay.ArticleID] = overlay
	return nil
}

// ReadOverlay returns news.ErrNotFound when the article has no overlay.
func (s *Store) ReadOverlay(_ context.Context, articleID string) (news.Overlay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	overlay, ok := s.overlays[articleID]
	if !ok {
		return news.Overlay{}, news.ErrNotFound
	}
	return overlay, nil
}

// Stats tallies every stored article.
func (s *Store) Stats(_ context.Context, since time.Time) (news.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := news.NewStats()
	for id, a := range s.articles {
		_, enriched := s.overlays[id]
		stats.Add(a, enriched, since)
	}
	return stats, nil
}

// SaveDraft stores an edited draft.
func (s *Store) SaveDraft(_ context.Context, draft news.SavedDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft.Draft.Bullets = append([]string(nil), draft.Draft.Bullets...)
	s.drafts[draft.ArticleID] = draft
	return nil
}

// GetDraft returns news.ErrNotFound when no draft was saved.
func (s *Store) GetDraft(_ context.Context, articleID string) (news.SavedDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[articleID]
	if !ok {
		return news.SavedDraft{}, news.ErrNotFound
	}
	return draft, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() error { return nil }
