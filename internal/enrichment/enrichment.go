// Package enrichment models the optional article enrichment capability and
// the handle that tracks whether it is live.
package enrichment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/JakeFAU/newspulse/internal/news"
)

// ErrNotReady is returned while the service is absent, loading, or failed.
var ErrNotReady = errors.New("enrichment service not ready")

// Service produces the enriched view of an article.
type Service interface {
	ClassifyImportance(ctx context.Context, title, content, source string) (float64, error)
	ExtractEntities(ctx context.Context, text string) (news.Entities, error)
	AnalyzeSentiment(ctx context.Context, text string) (news.Sentiment, error)
	GenerateDraft(ctx context.Context, article news.Article, entities news.Entities, score float64) (news.Draft, error)
}

// Loader builds a Service. It may block while models or remote endpoints warm up.
type Loader func(ctx context.Context) (Service, error)

// Status describes the handle lifecycle.
type Status string

// Handle states.
const (
	StatusDisabled Status = "disabled"
	StatusLoading  Status = "loading"
	StatusReady    Status = "ready"
	StatusFailed   Status = "failed"
)

// Handle owns the lazily loaded Service. A nil *Handle is valid and never ready.
type Handle struct {
	loader Loader
	logger *zap.Logger

	ready   atomic.Bool
	once    sync.Once
	mu      sync.RWMutex
	status  Status
	service Service
	loadErr error
}

// NewHandle wraps loader. A nil loader yields a permanently disabled handle.
func NewHandle(loader Loader, logger *zap.Logger) *Handle {
	if logger == nil {
		logger = zap.NewNop()
	}
	status := StatusLoading
	if loader == nil {
		status = StatusDisabled
	}
	return &Handle{loader: loader, logger: logger, status: status}
}

// Start runs the loader in the background. Later calls are no-ops.
func (h *Handle) Start(ctx context.Context) {
	if h == nil || h.loader == nil {
		return
	}
	h.once.Do(func() {
		go h.load(ctx)
	})
}

func (h *Handle) load(ctx context.Context) {
	h.logger.Info("loading enrichment service")
	svc, err := h.loader(ctx)
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.status = StatusFailed
		h.loadErr = err
		h.logger.Warn("enrichment service unavailable, serving fast projections only", zap.Error(err))
		return
	}
	h.service = svc
	h.status = StatusReady
	h.ready.Store(true)
	h.logger.Info("enrichment service ready")
}

// Ready reports whether Service will succeed.
func (h *Handle) Ready() bool {
	return h != nil && h.ready.Load()
}

// Service returns the loaded service or ErrNotReady.
func (h *Handle) Service() (Service, error) {
	if !h.Ready() {
		return nil, ErrNotReady
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.service, nil
}

// Status reports the lifecycle state.
func (h *Handle) Status() Status {
	if h == nil {
		return StatusDisabled
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Err returns the loader failure, if any.
func (h *Handle) Err() error {
	if h == nil {
		return nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loadErr
}

// Static returns a loader that yields svc immediately.
func Static(svc Service) Loader {
	return func(context.Context) (Service, error) { return svc, nil }
}
