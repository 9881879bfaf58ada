// Package sqlite persists articles and overlays in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/storage/sqlq"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	id           TEXT PRIMARY KEY,
	source_name  TEXT NOT NULL,
	title        TEXT NOT NULL,
	url          TEXT NOT NULL,
	content      TEXT NOT NULL DEFAULT '',
	published_at INTEGER NOT NULL,
	collected_at INTEGER NOT NULL,
	language     TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	finance      INTEGER NOT NULL DEFAULT 0,
	country      TEXT NOT NULL DEFAULT '',
	importance   REAL NOT NULL DEFAULT 0.3,
	tags         TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_articles_finance_published ON articles (finance, published_at);
CREATE TABLE IF NOT EXISTS article_overlays (
	article_id   TEXT PRIMARY KEY,
	payload      TEXT NOT NULL,
	processed_at INTEGER NOT NULL,
	enriched     INTEGER NOT NULL DEFAULT 1
);`

// Store implements news.Store on database/sql with the modernc driver.
type Store struct {
	db *sql.DB
	q  sqlq.Dialect
}

// Open creates parent directories, opens path, and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if path != MemoryPath {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to :memory: would see its own empty database.
	db.SetMaxOpenConns(1)
	if path != MemoryPath {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configure sqlite: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &Store{db: db, q: sqlq.SQLite}, nil
}

// Upsert inserts or replaces the article keyed by its ID.
func (s *Store) Upsert(ctx context.Context, a news.Article) error {
	query, args, err := s.q.UpsertArticle(a)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article %s: %w", a.ID, err)
	}
	return nil
}

// Query returns finance articles matching q.
func (s *Store) Query(ctx context.Context, q news.Query) ([]news.Article, error) {
	query, args, err := s.q.SelectArticles(q)
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]news.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return out, nil
}

// GetByPrefix returns the newest finance article whose ID starts with prefix.
func (s *Store) GetByPrefix(ctx context.Context, prefix string) (news.Article, error) {
	query, args, err := s.q.SelectByPrefix(prefix)
	if err != nil {
		return news.Article{}, err
	}
	a, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return news.Article{}, news.ErrNotFound
	}
	return a, err
}

// WriteOverlay stores the overlay, replacing any earlier one.
func (s *Store) WriteOverlay(ctx context.Context, o news.Overlay) error {
	query, args, err := s.q.UpsertOverlay(o)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("write overlay %s: %w", o.ArticleID, err)
	}
	return nil
}

// ReadOverlay returns news.ErrNotFound when the article has no overlay.
func (s *Store) ReadOverlay(ctx context.Context, articleID string) (news.Overlay, error) {
	query, args, err := s.q.SelectOverlay(articleID)
	if err != nil {
		return news.Overlay{}, fmt.Errorf("build overlay query: %w", err)
	}
	var (
		payload   string
		processed int64
		enriched  int64
	)
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&payload, &processed, &enriched)
	if errors.Is(err, sql.ErrNoRows) {
		return news.Overlay{}, news.ErrNotFound
	}
	if err != nil {
		return news.Overlay{}, fmt.Errorf("read overlay %s: %w", articleID, err)
	}
	return sqlq.DecodeOverlay(articleID, payload, fromMillis(processed), enriched != 0)
}

// Stats tallies every stored article.
func (s *Store) Stats(ctx context.Context, since time.Time) (news.Stats, error) {
	query, args, err := s.q.SelectStatsRows()
	if err != nil {
		return news.Stats{}, fmt.Errorf("build stats query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return news.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	stats := news.NewStats()
	for rows.Next() {
		var (
			a                 news.Article
			finance, enriched int64
			collected         int64
		)
		if err := rows.Scan(&a.SourceName, &a.Country, &a.Language, &finance, &a.Importance, &collected, &enriched); err != nil {
			return news.Stats{}, fmt.Errorf("scan stats row: %w", err)
		}
		a.Finance = finance != 0
		a.CollectedAt = fromMillis(collected)
		stats.Add(a, enriched != 0, since)
	}
	if err := rows.Err(); err != nil {
		return news.Stats{}, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

// Ping checks the database handle.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (news.Article, error) {
	var (
		a                    news.Article
		published, collected int64
		finance              int64
		tags                 string
	)
	err := row.Scan(
		&a.ID, &a.SourceName, &a.Title, &a.URL, &a.Content, &published, &collected,
		&a.Language, &a.Category, &finance, &a.Country, &a.Importance, &tags,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return news.Article{}, err
		}
		return news.Article{}, fmt.Errorf("scan article: %w", err)
	}
	a.PublishedAt = fromMillis(published)
	a.CollectedAt = fromMillis(collected)
	a.Finance = finance != 0
	if a.Tags, err = sqlq.DecodeTags(tags); err != nil {
		return news.Article{}, err
	}
	return a, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
