package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/newspulse/internal/news"
)

var base = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func article(id string, finance bool, importance float64, published time.Time) news.Article {
	return news.Article{
		ID:          id,
		SourceName:  "Интерфакс",
		Title:       "Заголовок " + id,
		URL:         "https://www.interfax.ru/" + id,
		Content:     "текст",
		PublishedAt: published,
		CollectedAt: published.Add(time.Minute),
		Language:    "ru",
		Category:    "currency",
		Finance:     finance,
		Country:     "russia",
		Importance:  importance,
		Tags:        []string{"рынок"},
	}
}

func TestUpsertRoundTripAndOverwrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openMemory(t)

	a := article("aaaa00000000", true, 0.85, base)
	require.NoError(t, s.Upsert(ctx, a))

	got, err := s.GetByPrefix(ctx, "aaaa")
	require.NoError(t, err)
	require.Equal(t, a, got)

	a.Content = "исправленный текст"
	a.Tags = nil
	require.NoError(t, s.Upsert(ctx, a))

	listed, err := s.Query(ctx, news.Query{Since: base.Add(-time.Hour)})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "исправленный текст", listed[0].Content)
	require.Nil(t, listed[0].Tags)
}

func TestQueryBandsAndSorts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openMemory(t)
	require.NoError(t, s.Upsert(ctx, article("aa01", true, 0.95, base)))
	require.NoError(t, s.Upsert(ctx, article("aa02", true, 0.4, base.Add(time.Hour))))
	require.NoError(t, s.Upsert(ctx, article("aa03", true, 0.2, base.Add(2*time.Hour))))
	require.NoError(t, s.Upsert(ctx, article("aa04", false, 0.99, base)))
	require.NoError(t, s.Upsert(ctx, article("aa05", true, 0.9, base.Add(-72*time.Hour))))

	since := base.Add(-24 * time.Hour)
	tests := []struct {
		name string
		q    news.Query
		want []string
	}{
		{"hotness", news.Query{Since: since}, []string{"aa01", "aa02", "aa03"}},
		{"date new", news.Query{Since: since, Sort: news.SortDateNew}, []string{"aa03", "aa02", "aa01"}},
		{"date old", news.Query{Since: since, Sort: news.SortDateOld}, []string{"aa01", "aa02", "aa03"}},
		{"high", news.Query{Since: since, Band: news.BandHigh}, []string{"aa01"}},
		{"medium lower edge", news.Query{Since: since, Band: news.BandMedium}, []string{"aa02"}},
		{"low", news.Query{Since: since, Band: news.BandLow}, []string{"aa03"}},
		{"limit", news.Query{Since: since, Limit: 1}, []string{"aa01"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
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

func TestGetByPrefixMisses(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openMemory(t)
	require.NoError(t, s.Upsert(ctx, article("bb01", false, 0.5, base)))

	_, err := s.GetByPrefix(ctx, "bb01")
	require.ErrorIs(t, err, news.ErrNotFound)
	_, err = s.GetByPrefix(ctx, "cc")
	require.ErrorIs(t, err, news.ErrNotFound)
	_, err = s.GetByPrefix(ctx, "b%")
	require.ErrorIs(t, err, news.ErrNotFound)
}

func TestOverlayAndStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openMemory(t)
	require.NoError(t, s.Upsert(ctx, article("dd01", true, 0.9, base)))
	require.NoError(t, s.Upsert(ctx, article("dd02", true, 0.5, base)))
	require.NoError(t, s.Upsert(ctx, article("dd03", false, 0.5, base)))

	_, err := s.ReadOverlay(ctx, "dd01")
	require.ErrorIs(t, err, news.ErrNotFound)

	view := news.ArticleView{ID: "dd01", Headline: "Заголовок dd01", Hotness: 0.9, Entities: []string{"Цб"}, AIEnhanced: true}
	overlay := news.Overlay{ArticleID: "dd01", View: view, ProcessedAt: base, Enriched: true}
	require.NoError(t, s.WriteOverlay(ctx, overlay))
	require.NoError(t, s.WriteOverlay(ctx, overlay))

	got, err := s.ReadOverlay(ctx, "dd01")
	require.NoError(t, err)
	require.Equal(t, overlay, got)

	stats, err := s.Stats(ctx, base)
	require.NoError(t, err)
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 2, stats.Finance)
	require.Equal(t, 1, stats.HighPriority)
	require.Equal(t, 1, stats.MediumPriority)
	require.Equal(t, 1, stats.Enriched)
	require.Equal(t, 3, stats.CollectedSince)
	require.Equal(t, 2, stats.BySource["Интерфакс"])
}

func TestOpenFileCreatesDirectory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "news.db")
	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Upsert(ctx, article("ee01", true, 0.5, base)))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	got, err := reopened.GetByPrefix(ctx, "ee01")
	require.NoError(t, err)
	require.Equal(t, "ee01", got.ID)
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "")
	require.Error(t, err)
}
