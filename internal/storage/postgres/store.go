// Package postgres persists articles and overlays in Postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/storage/sqlq"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS articles (
	id           TEXT PRIMARY KEY,
	source_name  TEXT NOT NULL,
	title        TEXT NOT NULL,
	url          TEXT NOT NULL,
	content      TEXT NOT NULL DEFAULT '',
	published_at TIMESTAMPTZ NOT NULL,
	collected_at TIMESTAMPTZ NOT NULL,
	language     TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL DEFAULT '',
	finance      BOOLEAN NOT NULL DEFAULT FALSE,
	country      TEXT NOT NULL DEFAULT '',
	importance   DOUBLE PRECISION NOT NULL DEFAULT 0.3,
	tags         TEXT NOT NULL DEFAULT '[]'
)`,
	`CREATE INDEX IF NOT EXISTS idx_articles_finance_published ON articles (finance, published_at)`,
	`CREATE TABLE IF NOT EXISTS article_overlays (
	article_id   TEXT PRIMARY KEY,
	payload      TEXT NOT NULL,
	processed_at TIMESTAMPTZ NOT NULL,
	enriched     BOOLEAN NOT NULL DEFAULT TRUE
)`,
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store implements news.Store on a pgx pool.
type Store struct {
	pool pgxPool
	q    sqlq.Dialect
}

// New connects to Postgres and applies the schema.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &Store{pool: pool, q: sqlq.Postgres}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(pool pgxPool) (*Store, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &Store{pool: pool, q: sqlq.Postgres}, nil
}

// EnsureSchema creates the tables and index when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply postgres schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts or replaces the article keyed by its ID.
func (s *Store) Upsert(ctx context.Context, a news.Article) error {
	query, args, err := s.q.UpsertArticle(a)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
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
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

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
	a, err := scanArticle(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
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
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
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
		processed time.Time
		enriched  bool
	)
	err = s.pool.QueryRow(ctx, query, args...).Scan(&payload, &processed, &enriched)
	if errors.Is(err, pgx.ErrNoRows) {
		return news.Overlay{}, news.ErrNotFound
	}
	if err != nil {
		return news.Overlay{}, fmt.Errorf("read overlay %s: %w", articleID, err)
	}
	return sqlq.DecodeOverlay(articleID, payload, processed.UTC(), enriched)
}

// Stats tallies every stored article.
func (s *Store) Stats(ctx context.Context, since time.Time) (news.Stats, error) {
	query, args, err := s.q.SelectStatsRows()
	if err != nil {
		return news.Stats{}, fmt.Errorf("build stats query: %w", err)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return news.Stats{}, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := news.NewStats()
	for rows.Next() {
		var (
			a        news.Article
			enriched bool
		)
		if err := rows.Scan(&a.SourceName, &a.Country, &a.Language, &a.Finance, &a.Importance, &a.CollectedAt, &enriched); err != nil {
			return news.Stats{}, fmt.Errorf("scan stats row: %w", err)
		}
		stats.Add(a, enriched, since)
	}
	if err := rows.Err(); err != nil {
		return news.Stats{}, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

// Ping checks pool connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

func scanArticle(row pgx.Row) (news.Article, error) {
	var (
		a    news.Article
		tags string
	)
	err := row.Scan(
		&a.ID, &a.SourceName, &a.Title, &a.URL, &a.Content, &a.PublishedAt, &a.CollectedAt,
		&a.Language, &a.Category, &a.Finance, &a.Country, &a.Importance, &tags,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return news.Article{}, err
		}
		return news.Article{}, fmt.Errorf("scan article: %w", err)
	}
	a.PublishedAt = a.PublishedAt.UTC()
	a.CollectedAt = a.CollectedAt.UTC()
	if a.Tags, err = sqlq.DecodeTags(tags); err != nil {
		return news.Article{}, err
	}
	return a, nil
}
