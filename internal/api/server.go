// Package api exposes the HTTP interface for the news service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/newspulse/internal/collector"
	"github.com/JakeFAU/newspulse/internal/config"
	"github.com/JakeFAU/newspulse/internal/enrichment"
	"github.com/JakeFAU/newspulse/internal/metrics"
	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/worker"
)

// Read path defaults.
const (
	DefaultHours = 24
	DefaultLimit = 50
	MaxLimit     = 200

	requestTimeout = 60 * time.Second
)

// Reader resolves articles to views.
type Reader interface {
	List(ctx context.Context, q news.Query) ([]news.ArticleView, error)
	Get(ctx context.Context, prefix string) (news.ArticleView, error)
}

// Collector starts background collection runs.
type Collector interface {
	Trigger(ctx context.Context) error
	LastReport() (collector.Report, bool)
}

// Enrichment reports the state of the enrichment queue.
type Enrichment interface {
	QueueLen() int
	Tracker() *worker.Tracker
}

// Deps are the collaborators behind the handlers. Collector, Enrichment,
// Handle, and IDs may be nil.
type Deps struct {
	Reader     Reader
	Store      news.Store
	Drafts     news.DraftStore
	Collector  Collector
	Enrichment Enrichment
	Handle     *enrichment.Handle
	Clock      news.Clock
	IDs        news.IDGenerator
}

// Server wires HTTP handlers to the read path and operational controls.
type Server struct {
	router chi.Router
	deps   Deps
	cfg    config.Config
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(deps Deps, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{deps: deps, cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware(deps.IDs))
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))
		if cfg.Auth.Enabled {
			r.Use(apiKeyMiddleware(cfg.Auth.APIKey))
		}
		r.Get("/news", s.listArticles)
		r.Get("/news/{id}", s.getArticle)
		r.Get("/stats", s.stats)
		r.Get("/system-status", s.systemStatus)
		r.Post("/collect-now", s.collectNow)
		r.Post("/drafts", s.saveDraft)
		r.Get("/drafts/{id}", s.getDraft)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Ping(r.Context()); err != nil {
		s.logger.Warn("readiness check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type priorityStats struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type sorting struct {
	CurrentSort     news.SortKey  `json:"current_sort"`
	CurrentPriority news.Band     `json:"current_priority"`
	PriorityStats   priorityStats `json:"priority_stats"`
}

type listResponse struct {
	News           []news.ArticleView `json:"news"`
	Status         string             `json:"status"`
	Message        string             `json:"message"`
	SourcesCount   int                `json:"sources_count"`
	NeuralEnhanced bool               `json:"neural_enhanced"`
	NeuralQueued   bool               `json:"neural_queued"`
	Sorting        sorting            `json:"sorting"`
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := listResponse{
		News:    []news.ArticleView{},
		Sorting: sorting{CurrentSort: q.Sort, CurrentPriority: q.Band},
	}
	views, err := s.deps.Reader.List(r.Context(), q)
	if err != nil {
		s.logger.Error("list articles failed", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		resp.Status = "error"
		resp.Message = "Ошибка при получении новостей"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	if len(views) == 0 {
		resp.Status = "no_data"
		resp.Message = "Новости собираются..."
		writeJSON(w, http.StatusOK, resp)
		return
	}

	sources := map[string]struct{}{}
	for _, v := range views {
		sources[v.Source] = struct{}{}
		resp.NeuralEnhanced = resp.NeuralEnhanced || v.AIEnhanced
		resp.NeuralQueued = resp.NeuralQueued || v.NeuralProcessing != ""
		switch news.BandOf(v.Hotness) {
		case news.BandHigh:
			resp.Sorting.PriorityStats.High++
		case news.BandMedium:
			resp.Sorting.PriorityStats.Medium++
		default:
			resp.Sorting.PriorityStats.Low++
		}
	}
	resp.News = views
	resp.Status = "success"
	resp.Message = fmt.Sprintf("Загружено %d новостей", len(views))
	resp.SourcesCount = len(sources)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) parseQuery(r *http.Request) (news.Query, error) {
	values := r.URL.Query()
	hours, err := positiveInt(values.Get("hours"), DefaultHours)
	if err != nil {
		return news.Query{}, fmt.Errorf("hours: %w", err)
	}
	limit, err := positiveInt(values.Get("limit"), DefaultLimit)
	if err != nil {
		return news.Query{}, fmt.Errorf("limit: %w", err)
	}
	limit = min(limit, MaxLimit)
	sortKey, err := news.ParseSortKey(values.Get("sort"))
	if err != nil {
		return news.Query{}, err
	}
	band, err := news.ParseBand(values.Get("priority"))
	if err != nil {
		return news.Query{}, err
	}
	return news.Query{
		Since: s.deps.Clock.Now().Add(-time.Duration(hours) * time.Hour),
		Limit: limit,
		Sort:  sortKey,
		Band:  band,
	}, nil
}

func positiveInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := s.deps.Reader.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("get article failed", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if s.deps.Drafts != nil {
		if saved, err := s.deps.Drafts.GetDraft(r.Context(), view.ID); err == nil {
			view.Draft = saved.Draft
		}
	}
	writeJSON(w, http.StatusOK, view)
}

type statsResponse struct {
	news.Stats
	QueueSize        int               `json:"queue_size"`
	NeuralReady      bool              `json:"neural_ready"`
	EnrichmentStatus enrichment.Status `json:"enrichment_status"`
	Worker           worker.Counts     `json:"worker"`
	PriorityStats    priorityStats     `json:"priority_stats"`
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	since := s.deps.Clock.Now().Add(-DefaultHours * time.Hour)
	stats, err := s.deps.Store.Stats(r.Context(), since)
	if err != nil {
		s.logger.Error("stats failed", zap.Error(err))
		stats = news.NewStats()
	}
	resp := statsResponse{
		Stats:            stats,
		NeuralReady:      s.deps.Handle.Ready(),
		EnrichmentStatus: s.deps.Handle.Status(),
		PriorityStats: priorityStats{
			High:   stats.HighPriority,
			Medium: stats.MediumPriority,
			Low:    stats.LowPriority,
		},
	}
	if s.deps.Enrichment != nil {
		resp.QueueSize = s.deps.Enrichment.QueueLen()
		resp.Worker = s.deps.Enrichment.Tracker().Counts()
	}
	writeJSON(w, http.StatusOK, resp)
}

type enrichmentStatus struct {
	Status enrichment.Status `json:"status"`
	Ready  bool              `json:"ready"`
	Error  string            `json:"error,omitempty"`
}

type systemStatusResponse struct {
	Status        string            `json:"status"`
	StorageDriver string            `json:"storage_driver"`
	DatabaseReady bool              `json:"database_ready"`
	Enrichment    enrichmentStatus  `json:"enrichment"`
	QueueSize     int               `json:"queue_size"`
	Worker        worker.Counts     `json:"worker"`
	CollectorSet  bool              `json:"collector_ready"`
	LastRun       *collector.Report `json:"last_run,omitempty"`
}

func (s *Server) systemStatus(w http.ResponseWriter, r *http.Request) {
	resp := systemStatusResponse{
		Status:        "operational",
		StorageDriver: s.cfg.Storage.Driver,
		DatabaseReady: s.deps.Store.Ping(r.Context()) == nil,
		Enrichment: enrichmentStatus{
			Status: s.deps.Handle.Status(),
			Ready:  s.deps.Handle.Ready(),
		},
		CollectorSet: s.deps.Collector != nil,
	}
	if err := s.deps.Handle.Err(); err != nil {
		resp.Enrichment.Error = err.Error()
	}
	if s.deps.Enrichment != nil {
		resp.QueueSize = s.deps.Enrichment.QueueLen()
		resp.Worker = s.deps.Enrichment.Tracker().Counts()
	}
	if s.deps.Collector != nil {
		if report, ok := s.deps.Collector.LastReport(); ok {
			resp.LastRun = &report
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) collectNow(w http.ResponseWriter, r *http.Request) {
	if s.deps.Collector == nil {
		writeError(w, http.StatusServiceUnavailable, "collector not configured")
		return
	}
	err := s.deps.Collector.Trigger(context.WithoutCancel(r.Context()))
	switch {
	case errors.Is(err, collector.ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]string{
			"status":  "busy",
			"message": "Сбор новостей уже выполняется",
		})
	case err != nil:
		s.logger.Error("collect-now failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{
			"status":  "started",
			"message": "Сбор новостей запущен! Новости появятся через 1-2 минуты.",
		})
	}
}

type saveDraftRequest struct {
	ArticleID string     `json:"article_id"`
	Draft     news.Draft `json:"draft"`
}

func (s *Server) saveDraft(w http.ResponseWriter, r *http.Request) {
	var req saveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ArticleID == "" {
		writeError(w, http.StatusBadRequest, "article_id required")
		return
	}
	article, err := s.deps.Store.GetByPrefix(r.Context(), req.ArticleID)
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("draft lookup failed", zap.String("article_id", req.ArticleID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	saved := news.SavedDraft{ArticleID: article.ShortID(), Draft: req.Draft, SavedAt: s.deps.Clock.Now()}
	if err := s.deps.Drafts.SaveDraft(r.Context(), saved); err != nil {
		s.logger.Error("save draft failed", zap.String("article_id", saved.ArticleID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Черновик успешно сохранен!",
		"news_id": saved.ArticleID,
	})
}

func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if len(id) > news.ShortIDLength {
		id = id[:news.ShortIDLength]
	}
	saved, err := s.deps.Drafts.GetDraft(r.Context(), id)
	switch {
	case errors.Is(err, news.ErrNotFound):
		writeJSON(w, http.StatusOK, news.Draft{Bullets: []string{}})
	case err != nil:
		s.logger.Error("get draft failed", zap.String("article_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		writeJSON(w, http.StatusOK, saved.Draft)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
