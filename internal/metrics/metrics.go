// Package metrics exposes Prometheus collectors for the news pipeline.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	sourceFetchTotal           *prometheus.CounterVec
	sourceFetchDuration        *prometheus.HistogramVec
	articlesCollectedTotal     *prometheus.CounterVec
	articlesSavedTotal         prometheus.Counter
	enrichmentTotal            *prometheus.CounterVec
	enrichmentQueueDepth       prometheus.Gauge
	rateLimitDelaySeconds      *prometheus.HistogramVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		sourceFetchTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspulse_source_fetch_total",
				Help: "Source fetches, labeled by source kind and outcome.",
			},
			[]string{"kind", "status"},
		)

		sourceFetchDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newspulse_source_fetch_duration_seconds",
				Help:    "Time spent fetching and parsing one source.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"kind"},
		)

		articlesCollectedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspulse_articles_collected_total",
				Help: "Candidate articles produced by fetch adapters.",
			},
			[]string{"kind"},
		)

		articlesSavedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "newspulse_articles_saved_total",
				Help: "Articles upserted into the store.",
			},
		)

		enrichmentTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newspulse_enrichment_total",
				Help: "Enrichment attempts, labeled by outcome.",
			},
			[]string{"status"},
		)

		enrichmentQueueDepth = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "newspulse_enrichment_queue_depth",
				Help: "Entries waiting in the enrichment queue.",
			},
		)

		rateLimitDelaySeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "newspulse_rate_limit_delay_seconds",
				Help:    "Histogram of per-host rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"host"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeHost extracts a lowercase hostname from a URL.
// It returns "unknown" if the URL is invalid.
func SanitizeHost(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}

// ObserveSourceFetch records one source fetch and the candidates it produced.
func ObserveSourceFetch(kind, status string, candidates int, duration time.Duration) {
	Init()
	sourceFetchTotal.WithLabelValues(kind, status).Inc()
	sourceFetchDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if candidates > 0 {
		articlesCollectedTotal.WithLabelValues(kind).Add(float64(candidates))
	}
}

// ObserveSaved counts persisted articles.
func ObserveSaved(n int) {
	Init()
	if n > 0 {
		articlesSavedTotal.Add(float64(n))
	}
}

// ObserveEnrichment counts one enrichment outcome.
func ObserveEnrichment(status string) {
	Init()
	enrichmentTotal.WithLabelValues(status).Inc()
}

// SetQueueDepth reports the current enrichment backlog.
func SetQueueDepth(n int) {
	Init()
	enrichmentQueueDepth.Set(float64(n))
}

// ObserveRateLimitDelay records time spent waiting on a host limiter.
func ObserveRateLimitDelay(host string, d time.Duration) {
	Init()
	rateLimitDelaySeconds.WithLabelValues(host).Observe(d.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
