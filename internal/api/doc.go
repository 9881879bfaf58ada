// Package api hosts the HTTP server, middleware, and REST handlers for the
// news read path. Notable routes:
//   - GET /api/news and /api/news/{id} for article views.
//   - GET /api/stats and /api/system-status for operators.
//   - POST /api/collect-now to trigger a collection run.
//   - POST /api/drafts and GET /api/drafts/{id} for edited drafts.
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
package api
