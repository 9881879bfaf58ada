package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/newspulse/internal/news"
)

var base = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func article(id string, finance bool, importance float64, published time.Time) news.Article {
	return news.Article{
		ID:          id,
		SourceName:  "РБК",
		Title:       "title " + id,
		URL:         "https://rbc.ru/" + id,
		PublishedAt: published,
		CollectedAt: published,
		Finance:     finance,
		Importance:  importance,
		Language:    "ru",
		Country:     "russia",
	}
}

func TestUpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	first := article("aaaaaaaaaaaaaaaa", true, 0.5, base)
	first.Content = "old body"
	require.NoError(t, s.Upsert(ctx, first))

	second := first
	second.Content = "corrected body"
	require.NoError(t, s.Upsert(ctx, second))

	got, err := s.Query(ctx, news.Query{Since: base.Add(-time.Hour)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "corrected body", got[0].Content)
}

func TestQueryFiltersAndOrders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Upsert(ctx, article("high", true, 0.9, base)))
	require.NoError(t, s.Upsert(ctx, article("medium", true, 0.7, base.Add(time.Minute))))
	require.NoError(t, s.Upsert(ctx, article("low", true, 0.3, base.Add(2*time.Minute))))
	require.NoError(t, s.Upsert(ctx, article("old", true, 1.0, base.Add(-48*time.Hour))))
	require.NoError(t, s.Upsert(ctx, article("sport", false, 0.9, base)))

	since := base.Add(-24 * time.Hour)
	tests := []struct {
		name string
		q    news.Query
		want []string
	}{
		{"hotness all", news.Query{Since: since, Sort: news.SortHotness, Band: news.BandAll}, []string{"high", "medium", "low"}},
		{"date new", news.Query{Since: since, Sort: news.SortDateNew}, []string{"low", "medium", "high"}},
		{"date old", news.Query{Since: since, Sort: news.SortDateOld}, []string{"high", "medium", "low"}},
		{"high band", news.Query{Since: since, Band: news.BandHigh}, []string{"high"}},
		{"medium inclusive", news.Query{Since: since, Band: news.BandMedium}, []string{"medium"}},
		{"low band", news.Query{Since: since, Band: news.BandLow}, []string{"low"}},
		{"limit", news.Query{Since: since, Limit: 2}, []string{"high", "medium"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := s.Query(ctx, tt.q)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, a := range got {
				ids = append(ids, a.ID)
			}
			require.Equal(t, tt.want, ids)
		})
	}
}

func TestQueryEmptyStore(t *testing.T) {
	t.Parallel()

	got, err := NewStore().Query(context.Background(), news.Query{})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestGetByPrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Upsert(ctx, article("abc123000000aaaa", true, 0.5, base)))
	require.NoError(t, s.Upsert(ctx, article("abc123000000bbbb", true, 0.5, base.Add(time.Hour))))
	require.NoError(t, s.Upsert(ctx, article("fff000000000aaaa", false, 0.5, base)))

	got, err := s.GetByPrefix(ctx, "abc123000000")
	require.NoError(t, err)
	require.Equal(t, "abc123000000bbbb", got.ID)

	_, err = s.GetByPrefix(ctx, "fff000000000")
	require.ErrorIs(t, err, news.ErrNotFound)
	_, err = s.GetByPrefix(ctx, "")
	require.ErrorIs(t, err, news.ErrNotFound)
}

func TestGetByPrefixRejectsNonHex(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Upsert(ctx, article("abc123000000aaaa", true, 0.5, base)))

	for _, prefix := range []string{"ABC123", "abc%", "abc_", "abc-123", "abc123 "} {
		_, err := s.GetByPrefix(ctx, prefix)
		require.ErrorIs(t, err, news.ErrNotFound, prefix)
	}
	got, err := s.GetByPrefix(ctx, "abc")
	require.NoError(t, err)
	require.Equal(t, "abc123000000aaaa", got.ID)
}

func TestOverlaysAndStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Upsert(ctx, article("one", true, 0.9, base)))
	require.NoError(t, s.Upsert(ctx, article("two", false, 0.2, base)))

	_, err := s.ReadOverlay(ctx, "one")
	require.ErrorIs(t, err, news.ErrNotFound)

	overlay := news.Overlay{ArticleID: "one", View: news.ArticleView{ID: "one", AIEnhanced: true}, ProcessedAt: base, Enriched: true}
	require.NoError(t, s.WriteOverlay(ctx, overlay))
	got, err := s.ReadOverlay(ctx, "one")
	require.NoError(t, err)
	require.Equal(t, overlay, got)

	stats, err := s.Stats(ctx, base.Add(-time.Hour))
	require.NoError(t, err)
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 1, stats.Finance)
	require.Equal(t, 1, stats.HighPriority)
	require.Equal(t, 1, stats.Enriched)
	require.Equal(t, 2, stats.CollectedSince)
}

func TestDrafts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	_, err := s.GetDraft(ctx, "one")
	require.ErrorIs(t, err, news.ErrNotFound)

	saved := news.SavedDraft{ArticleID: "one", Draft: news.Draft{Title: "Анализ", Bullets: []string{"a"}}, SavedAt: base}
	require.NoError(t, s.SaveDraft(ctx, saved))
	got, err := s.GetDraft(ctx, "one")
	require.NoError(t, err)
	require.Equal(t, saved, got)
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = s.Upsert(ctx, article(fmt.Sprintf("id-%02d", i), true, 0.5, base))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.Query(ctx, news.Query{})
		}()
	}
	wg.Wait()

	got, err := s.Query(ctx, news.Query{})
	require.NoError(t, err)
	require.Len(t, got, 20)
}
