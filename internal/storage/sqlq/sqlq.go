// Package sqlq builds the article and overlay statements shared by the SQL stores.
package sqlq

import (
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/JakeFAU/newspulse/internal/news"
)

// Table names.
const (
	ArticlesTable = "articles"
	OverlaysTable = "article_overlays"
)

// ArticleColumns is the column order used by every article select and insert.
var ArticleColumns = []string{
	"id", "source_name", "title", "url", "content", "published_at", "collected_at",
	"language", "category", "finance", "country", "importance", "tags",
}

// Dialect adapts bind values and placeholders to one SQL engine.
type Dialect struct {
	Placeholder sq.PlaceholderFormat
	Time        func(time.Time) any
	Bool        func(bool) any
}

// Identity binds values unchanged.
func Identity[T any](v T) any { return v }

// UnixMilli binds timestamps as integer milliseconds.
func UnixMilli(t time.Time) any { return t.UTC().UnixMilli() }

// BoolInt binds booleans as 0 or 1.
func BoolInt(b bool) any {
	if b {
		return 1
	}
	return 0
}

// SQLite stores timestamps as unix milliseconds and booleans as integers.
var SQLite = Dialect{Placeholder: sq.Question, Time: UnixMilli, Bool: BoolInt}

// Postgres binds native timestamp and boolean values.
var Postgres = Dialect{Placeholder: sq.Dollar, Time: Identity[time.Time], Bool: Identity[bool]}

func (d Dialect) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

// EncodeTags serializes tags as a JSON array; nil becomes "[]".
func EncodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(raw), nil
}

// DecodeTags parses a JSON tag array. Empty input yields nil.
func DecodeTags(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

// UpsertArticle inserts the article or overwrites every non-key field.
func (d Dialect) UpsertArticle(a news.Article) (string, []any, error) {
	tags, err := EncodeTags(a.Tags)
	if err != nil {
		return "", nil, err
	}
	return d.builder().
		Insert(ArticlesTable).
		Columns(ArticleColumns...).
		Values(
			a.ID, a.SourceName, a.Title, a.URL, a.Content, d.Time(a.PublishedAt), d.Time(a.CollectedAt),
			a.Language, a.Category, d.Bool(a.Finance), a.Country, a.Importance, tags,
		).
		Suffix(upsertSuffix("id", ArticleColumns[1:])).
		ToSql()
}

// SelectArticles filters finance articles by publish time and band.
func (d Dialect) SelectArticles(q news.Query) (string, []any, error) {
	stmt := d.builder().
		Select(ArticleColumns...).
		From(ArticlesTable).
		Where(sq.Eq{"finance": d.Bool(true)}).
		Where(sq.GtOrEq{"published_at": d.Time(q.Since)})
	if band := bandFilter(q.Band); band != nil {
		stmt = stmt.Where(band)
	}
	stmt = stmt.OrderBy(orderBy(q.Sort)...)
	if q.Limit > 0 {
		stmt = stmt.Limit(uint64(q.Limit))
	}
	return stmt.ToSql()
}

// SelectByPrefix finds the newest finance article whose ID starts with prefix.
func (d Dialect) SelectByPrefix(prefix string) (string, []any, error) {
	if !ValidPrefix(prefix) {
		return "", nil, fmt.Errorf("invalid id prefix %q: %w", prefix, news.ErrNotFound)
	}
	return d.builder().
		Select(ArticleColumns...).
		From(ArticlesTable).
		Where(sq.Like{"id": prefix + "%"}).
		Where(sq.Eq{"finance": d.Bool(true)}).
		OrderBy("published_at DESC").
		Limit(1).
		ToSql()
}

// UpsertOverlay writes the serialized overlay view for one article.
func (d Dialect) UpsertOverlay(o news.Overlay) (string, []any, error) {
	payload, err := json.Marshal(o.View)
	if err != nil {
		return "", nil, fmt.Errorf("encode overlay: %w", err)
	}
	cols := []string{"article_id", "payload", "processed_at", "enriched"}
	return d.builder().
		Insert(OverlaysTable).
		Columns(cols...).
		Values(o.ArticleID, string(payload), d.Time(o.ProcessedAt), d.Bool(o.Enriched)).
		Suffix(upsertSuffix("article_id", cols[1:])).
		ToSql()
}

// SelectOverlay reads one overlay row: payload, processed_at, enriched.
func (d Dialect) SelectOverlay(articleID string) (string, []any, error) {
	return d.builder().
		Select("payload", "processed_at", "enriched").
		From(OverlaysTable).
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
}

// StatsColumns is the column order of SelectStatsRows.
var StatsColumns = []string{"a.source_name", "a.country", "a.language", "a.finance", "a.importance", "a.collected_at", "o.article_id IS NOT NULL"}

// SelectStatsRows returns one row per article for tallying.
func (d Dialect) SelectStatsRows() (string, []any, error) {
	return d.builder().
		Select(StatsColumns...).
		From(ArticlesTable + " a").
		LeftJoin(OverlaysTable + " o ON o.article_id = a.id").
		ToSql()
}

// DecodeOverlay rebuilds an overlay from its stored payload.
func DecodeOverlay(articleID, payload string, processedAt time.Time, enriched bool) (news.Overlay, error) {
	var view news.ArticleView
	if err := json.Unmarshal([]byte(payload), &view); err != nil {
		return news.Overlay{}, fmt.Errorf("decode overlay: %w", err)
	}
	return news.Overlay{ArticleID: articleID, View: view, ProcessedAt: processedAt, Enriched: enriched}, nil
}

// ValidPrefix reports whether prefix is a non-empty lowercase hex string.
func ValidPrefix(prefix string) bool {
	if prefix == "" {
		return false
	}
	for _, r := range prefix {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

func bandFilter(b news.Band) sq.Sqlizer {
	switch b {
	case news.BandHigh:
		return sq.Gt{"importance": news.HighThreshold}
	case news.BandMedium:
		return sq.And{
			sq.GtOrEq{"importance": news.LowThreshold},
			sq.LtOrEq{"importance": news.HighThreshold},
		}
	case news.BandLow:
		return sq.Lt{"importance": news.LowThreshold}
	default:
		return nil
	}
}

func orderBy(key news.SortKey) []string {
	switch key {
	case news.SortDateNew:
		return []string{"published_at DESC"}
	case news.SortDateOld:
		return []string{"published_at ASC"}
	case news.SortSource:
		return []string{"source_name ASC", "published_at DESC"}
	default:
		return []string{"importance DESC", "published_at DESC"}
	}
}

func upsertSuffix(key string, cols []string) string {
	suffix := "ON CONFLICT (" + key + ") DO UPDATE SET "
	for i, col := range cols {
		if i > 0 {
			suffix += ", "
		}
		suffix += col + " = excluded." + col
	}
	return suffix
}
