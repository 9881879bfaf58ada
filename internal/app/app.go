// Package app assembles the service's dependencies from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/newspulse/internal/adapter/feed"
	htmladapter "github.com/JakeFAU/newspulse/internal/adapter/html"
	"github.com/JakeFAU/newspulse/internal/api"
	"github.com/JakeFAU/newspulse/internal/clock/system"
	"github.com/JakeFAU/newspulse/internal/collector"
	"github.com/JakeFAU/newspulse/internal/config"
	"github.com/JakeFAU/newspulse/internal/dispatcher"
	"github.com/JakeFAU/newspulse/internal/enrichment"
	"github.com/JakeFAU/newspulse/internal/enrichment/heuristic"
	"github.com/JakeFAU/newspulse/internal/enrichment/remote"
	collyfetcher "github.com/JakeFAU/newspulse/internal/fetcher/colly"
	"github.com/JakeFAU/newspulse/internal/id/uuid"
	"github.com/JakeFAU/newspulse/internal/identity"
	"github.com/JakeFAU/newspulse/internal/metrics"
	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/policy/ratelimit"
	"github.com/JakeFAU/newspulse/internal/projection"
	pubmem "github.com/JakeFAU/newspulse/internal/publisher/memory"
	gcppublisher "github.com/JakeFAU/newspulse/internal/publisher/pubsub"
	queuememory "github.com/JakeFAU/newspulse/internal/queue/memory"
	"github.com/JakeFAU/newspulse/internal/scheduler"
	"github.com/JakeFAU/newspulse/internal/source"
	"github.com/JakeFAU/newspulse/internal/storage/memory"
	"github.com/JakeFAU/newspulse/internal/storage/postgres"
	"github.com/JakeFAU/newspulse/internal/storage/sqlite"
	"github.com/JakeFAU/newspulse/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired components of one process.
type App struct {
	cfg    config.Config
	logger *zap.Logger

	store      news.Store
	drafts     news.DraftStore
	publisher  news.Publisher
	pubsub     *gcppublisher.Publisher
	queue      *queuememory.Queue
	handle     *enrichment.Handle
	collector  *collector.Collector
	dispatch   *dispatcher.Dispatcher
	merger     *projection.Merger
	scheduler  *scheduler.Scheduler
	apiServer  *api.Server
	sourceList source.Registry
}

// Build creates every component described by cfg. The caller owns Close.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	a := &App{cfg: cfg, logger: logger}
	logger.Info("building application",
		zap.Int("server_port", cfg.Server.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("enrichment_provider", cfg.Enrichment.Provider),
		zap.Bool("scheduler_enabled", cfg.Scheduler.Enabled),
	)

	if err := a.setupStorage(ctx); err != nil {
		return nil, err
	}
	if err := a.setupPublisher(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.setupCollector(); err != nil {
		a.Close()
		return nil, err
	}
	a.setupEnrichment()

	a.apiServer = api.NewServer(api.Deps{
		Reader:     a.merger,
		Store:      a.store,
		Drafts:     a.drafts,
		Collector:  a.collector,
		Enrichment: a.dispatch,
		Handle:     a.handle,
		Clock:      system.New(),
		IDs:        uuid.NewRandom(),
	}, cfg, logger.Named("api"))

	if cfg.Scheduler.Enabled {
		a.scheduler = scheduler.New(a.collector, cfg.SchedulerInterval(), logger.Named("scheduler"))
	}
	return a, nil
}

func (a *App) setupStorage(ctx context.Context) error {
	switch a.cfg.Storage.Driver {
	case config.StoragePostgres:
		store, err := postgres.New(ctx, postgres.Config{
			DSN:      a.cfg.DB.DSN,
			MaxConns: int32(a.cfg.DB.MaxConns),
		})
		if err != nil {
			return fmt.Errorf("postgres store init failed: %w", err)
		}
		a.store = store
		a.logger.Info("using postgres storage backend")
	case config.StorageMemory:
		store := memory.NewStore()
		a.store = store
		a.drafts = store
		a.logger.Info("using in-memory storage backend")
	default:
		store, err := sqlite.Open(ctx, a.cfg.Storage.SQLitePath)
		if err != nil {
			return fmt.Errorf("sqlite store init failed: %w", err)
		}
		a.store = store
		a.logger.Info("using sqlite storage backend", zap.String("path", a.cfg.Storage.SQLitePath))
	}
	if a.drafts == nil {
		// Drafts are operator scratch space and never outlive the process.
		a.drafts = memory.NewStore()
	}
	return nil
}

func (a *App) setupPublisher(ctx context.Context) error {
	if a.cfg.PubSub.ProjectID == "" {
		a.logger.Warn("no Pub/Sub project configured, using in-memory publisher")
		a.publisher = pubmem.New()
		return nil
	}
	pub, err := gcppublisher.New(ctx, a.cfg.PubSub.ProjectID, a.cfg.PubSub.Topic)
	if err != nil {
		return fmt.Errorf("pubsub publisher init failed: %w", err)
	}
	a.pubsub = pub
	a.publisher = pub
	a.logger.Info("Pub/Sub publisher initialized",
		zap.String("project", a.cfg.PubSub.ProjectID),
		zap.String("topic", a.cfg.PubSub.Topic),
	)
	return nil
}

func (a *App) setupCollector() error {
	var (
		reg source.Registry
		err error
	)
	if a.cfg.Sources.Path == "" {
		reg, err = source.Default()
	} else {
		reg, err = source.Load(a.cfg.Sources.Path)
	}
	if err != nil {
		return fmt.Errorf("source registry init failed: %w", err)
	}
	a.sourceList = reg

	limiter := ratelimit.New(ratelimit.Config{
		RatePerHost: a.cfg.HTTP.RatePerHost,
		Burst:       a.cfg.HTTP.Burst,
	})
	fetcher := collyfetcher.New(collyfetcher.Config{Timeout: a.cfg.FetchTimeout()}, limiter)
	clock := system.New()
	denylist := identity.DefaultDenylist()

	a.collector = collector.New(
		reg,
		htmladapter.New(fetcher, clock, denylist, a.cfg.Collector.HTMLLimit),
		feed.New(fetcher, clock, denylist, a.cfg.Collector.FeedLimit),
		a.store,
		a.publisher,
		clock,
		uuid.New(),
		collector.Config{
			HTMLConcurrency: a.cfg.Collector.HTMLConcurrency,
			FeedConcurrency: a.cfg.Collector.FeedConcurrency,
			HTMLDelay:       time.Duration(a.cfg.Collector.HTMLDelayMs) * time.Millisecond,
			FeedDelay:       time.Duration(a.cfg.Collector.FeedDelayMs) * time.Millisecond,
		},
		a.logger.Named("collector"),
	)
	a.logger.Info("source registry loaded",
		zap.Int("html_sources", len(reg.HTML())),
		zap.Int("feed_sources", len(reg.Feeds())),
	)
	return nil
}

func (a *App) setupEnrichment() {
	var loader enrichment.Loader
	switch a.cfg.Enrichment.Provider {
	case config.EnrichmentHeuristic:
		loader = enrichment.Static(heuristic.New())
	case config.EnrichmentRemote:
		loader = remote.Loader(a.cfg.Enrichment.RemoteURL, &http.Client{Timeout: a.cfg.EnrichmentTimeout()})
	default:
		a.logger.Info("enrichment disabled")
	}
	a.handle = enrichment.NewHandle(loader, a.logger.Named("enrichment"))

	clock := system.New()
	a.queue = queuememory.NewQueue()
	w := worker.New(
		a.queue,
		a.store,
		a.handle,
		a.publisher,
		clock,
		nil,
		worker.Config{
			DequeueTimeout: time.Duration(a.cfg.Worker.DequeueTimeoutMs) * time.Millisecond,
			IdleSleep:      time.Duration(a.cfg.Worker.IdleSleepMs) * time.Millisecond,
		},
		a.logger.Named("worker"),
	)
	a.dispatch = dispatcher.New(a.queue, w)
	a.merger = projection.NewMerger(a.store, a.handle, a.dispatch, clock, a.logger.Named("projection"))
}

// Config returns the configuration the app was built from.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Store returns the article store.
func (a *App) Store() news.Store { return a.store }

// Collector returns the collection orchestrator.
func (a *App) Collector() *collector.Collector { return a.collector }

// Handle returns the enrichment readiness handle.
func (a *App) Handle() *enrichment.Handle { return a.handle }

// Dispatcher returns the enrichment queue front.
func (a *App) Dispatcher() *dispatcher.Dispatcher { return a.dispatch }

// Reader returns the article projection.
func (a *App) Reader() *projection.Merger { return a.merger }

// Handler returns the HTTP router.
func (a *App) Handler() http.Handler { return a.apiServer.Handler() }

// Sources returns the loaded source registry.
func (a *App) Sources() source.Registry { return a.sourceList }

// Run serves HTTP, consumes the enrichment queue, and optionally collects on
// a schedule until ctx is canceled or the process is signaled.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.handle.Start(ctx)

	dispatchDone := make(chan struct{})
	go func() {
		defer close(dispatchDone)
		a.logger.Info("dispatcher started")
		a.dispatch.Run(ctx)
	}()

	if a.scheduler != nil {
		go func() {
			a.logger.Info("scheduler started", zap.Duration("interval", a.cfg.SchedulerInterval()))
			a.scheduler.Run(ctx)
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			serveErr <- err
			stop()
		}
	}()

	<-ctx.Done()
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	a.queue.Close()
	<-dispatchDone

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
		return nil
	}
}

// Close releases the queue, publisher, and store.
func (a *App) Close() {
	if a.queue != nil {
		a.queue.Close()
	}
	if a.pubsub != nil {
		if err := a.pubsub.Close(); err != nil {
			a.logger.Warn("pubsub publisher close failed", zap.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("store close failed", zap.Error(err))
		}
	}
	if err := a.logger.Sync(); err != nil {
		a.logger.Debug("logger sync failed", zap.Error(err))
	}
	a.logger.Info("shutdown complete")
}
