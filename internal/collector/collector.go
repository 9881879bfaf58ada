// Package collector fans a collection run out over every registered source.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/newspulse/internal/adapter"
	"github.com/JakeFAU/newspulse/internal/classify"
	"github.com/JakeFAU/newspulse/internal/metrics"
	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/source"
)

// ErrBusy is returned by TryCollect while another run holds the collector.
var ErrBusy = errors.New("collection already running")

// Default per-kind limits.
const (
	DefaultHTMLConcurrency = 5
	DefaultFeedConcurrency = 10
	DefaultHTMLDelay       = time.Second
	DefaultFeedDelay       = 500 * time.Millisecond
)

// Config controls fan-out width and politeness.
type Config struct {
	HTMLConcurrency int
	FeedConcurrency int
	HTMLDelay       time.Duration
	FeedDelay       time.Duration
}

func (c Config) withDefaults() Config {
	if c.HTMLConcurrency <= 0 {
		c.HTMLConcurrency = DefaultHTMLConcurrency
	}
	if c.FeedConcurrency <= 0 {
		c.FeedConcurrency = DefaultFeedConcurrency
	}
	if c.HTMLDelay < 0 {
		c.HTMLDelay = 0
	}
	if c.FeedDelay < 0 {
		c.FeedDelay = 0
	}
	return c
}

// Report summarizes one collection run.
type Report struct {
	RunID         string         `json:"run_id"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Sources       int            `json:"sources"`
	FailedSources []string       `json:"failed_sources"`
	Candidates    int            `json:"candidates"`
	Finance       int            `json:"finance"`
	Saved         int            `json:"saved"`
	ByCountry     map[string]int `json:"by_country"`
	ByLanguage    map[string]int `json:"by_language"`
	BySource      map[string]int `json:"by_source"`
}

// pauser backs off between source fetches.
type pauser interface {
	Pause(ctx context.Context, delay time.Duration)
}

type timerPauser struct{}

func (timerPauser) Pause(ctx context.Context, delay time.Duration) {
	if delay <= 0 {
		return
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Collector runs collection passes. Runs are serialized.
type Collector struct {
	registry  source.Registry
	html      adapter.Collector
	feed      adapter.Collector
	store     news.Store
	publisher news.Publisher
	clock     news.Clock
	ids       news.IDGenerator
	cfg       Config
	logger    *zap.Logger
	pause     pauser

	runMu  sync.Mutex
	lastMu sync.RWMutex
	last   *Report
}

// New constructs a Collector. The publisher may be nil.
func New(
	registry source.Registry,
	html adapter.Collector,
	feed adapter.Collector,
	store news.Store,
	publisher news.Publisher,
	clock news.Clock,
	ids news.IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		registry:  registry,
		html:      html,
		feed:      feed,
		store:     store,
		publisher: publisher,
		clock:     clock,
		ids:       ids,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		pause:     timerPauser{},
	}
}

// Collect performs one run, waiting for any run already in progress.
func (c *Collector) Collect(ctx context.Context) (Report, error) {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	return c.run(ctx)
}

// TryCollect performs one run unless another is in progress, in which case it
// returns ErrBusy without waiting.
func (c *Collector) TryCollect(ctx context.Context) (Report, error) {
	if !c.runMu.TryLock() {
		return Report{}, ErrBusy
	}
	defer c.runMu.Unlock()
	return c.run(ctx)
}

// Trigger starts a run in the background unless one is in progress, in which
// case it returns ErrBusy. ctx should outlive the caller's request.
func (c *Collector) Trigger(ctx context.Context) error {
	if !c.runMu.TryLock() {
		return ErrBusy
	}
	go func() {
		defer c.runMu.Unlock()
		if _, err := c.run(ctx); err != nil {
			c.logger.Error("background collection failed", zap.Error(err))
		}
	}()
	return nil
}

// LastReport returns the most recent completed run, if any.
func (c *Collector) LastReport() (Report, bool) {
	c.lastMu.RLock()
	defer c.lastMu.RUnlock()
	if c.last == nil {
		return Report{}, false
	}
	return *c.last, true
}

type unitResult struct {
	articles []news.Article
	failed   string
}

func (c *Collector) run(ctx context.Context) (Report, error) {
	report := Report{
		StartedAt:  c.clock.Now(),
		ByCountry:  map[string]int{},
		ByLanguage: map[string]int{},
		BySource:   map[string]int{},
	}
	if c.ids != nil {
		runID, err := c.ids.NewID()
		if err != nil {
			return Report{}, fmt.Errorf("run id: %w", err)
		}
		report.RunID = runID
	}
	log := c.logger.With(zap.String("run_id", report.RunID))

	htmlSources := c.registry.HTML()
	feedSources := c.registry.Feeds()
	report.Sources = len(htmlSources) + len(feedSources)
	log.Info("collection started", zap.Int("html_sources", len(htmlSources)), zap.Int("feed_sources", len(feedSources)))

	htmlResults := make([]unitResult, len(htmlSources))
	feedResults := make([]unitResult, len(feedSources))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.fanOut(ctx, log, c.html, htmlSources, htmlResults, c.cfg.HTMLConcurrency, c.cfg.HTMLDelay)
	}()
	go func() {
		defer wg.Done()
		c.fanOut(ctx, log, c.feed, feedSources, feedResults, c.cfg.FeedConcurrency, c.cfg.FeedDelay)
	}()
	wg.Wait()

	var candidates []news.Article
	for _, res := range append(htmlResults, feedResults...) {
		if res.failed != "" {
			report.FailedSources = append(report.FailedSources, res.failed)
		}
		candidates = append(candidates, res.articles...)
	}
	report.Candidates = len(candidates)

	for i := range candidates {
		article := candidates[i]
		classify.Classify(&article)
		if article.Finance {
			report.Finance++
		}
		report.ByCountry[article.Country]++
		report.ByLanguage[article.Language]++
		report.BySource[article.SourceName]++
		if err := c.store.Upsert(ctx, article); err != nil {
			log.Warn("upsert failed", zap.String("article_id", article.ID), zap.Error(err))
			continue
		}
		report.Saved++
	}
	metrics.ObserveSaved(report.Saved)

	report.FinishedAt = c.clock.Now()
	c.lastMu.Lock()
	snapshot := report
	c.last = &snapshot
	c.lastMu.Unlock()

	log.Info("collection finished",
		zap.Int("candidates", report.Candidates),
		zap.Int("finance", report.Finance),
		zap.Int("saved", report.Saved),
		zap.Strings("failed_sources", report.FailedSources),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	c.publishReport(ctx, log, report)
	return report, nil
}

// fanOut runs one adapter call per source under a concurrency cap. Every unit
// records into its own slot so no locking is needed.
func (c *Collector) fanOut(
	ctx context.Context,
	log *zap.Logger,
	collector adapter.Collector,
	sources []source.Source,
	results []unitResult,
	limit int,
	delay time.Duration,
) {
	if collector == nil || len(sources) == 0 {
		return
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, src := range sources {
		g.Go(func() error {
			results[i] = c.collectOne(ctx, log, collector, src)
			c.pause.Pause(ctx, delay)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Collector) collectOne(ctx context.Context, log *zap.Logger, collector adapter.Collector, src source.Source) (res unitResult) {
	start := time.Now()
	kind := src.KindName()
	defer func() {
		if r := recover(); r != nil {
			log.Error("source panicked", zap.String("source", src.Name), zap.Any("panic", r))
			metrics.ObserveSourceFetch(kind, "panic", 0, time.Since(start))
			res = unitResult{failed: src.Name}
		}
	}()

	articles, err := collector.Collect(ctx, src)
	if err != nil {
		log.Warn("source failed", zap.String("source", src.Name), zap.String("kind", kind), zap.Error(err))
		metrics.ObserveSourceFetch(kind, "error", 0, time.Since(start))
		return unitResult{failed: src.Name}
	}
	log.Debug("source collected", zap.String("source", src.Name), zap.Int("candidates", len(articles)))
	metrics.ObserveSourceFetch(kind, "ok", len(articles), time.Since(start))
	return unitResult{articles: articles}
}

func (c *Collector) publishReport(ctx context.Context, log *zap.Logger, report Report) {
	if c.publisher == nil {
		return
	}
	if _, err := c.publisher.Publish(ctx, news.TopicCollectionCompleted, report); err != nil {
		log.Warn("publish report failed", zap.Error(err))
	}
}
