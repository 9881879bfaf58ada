// Command newspulse aggregates financial news and serves it over HTTP.
//
// Architecture overview:
//   - Collection: internal/collector fans out over the source registry, HTML pages through goquery selectors and
//     feeds through gofeed, under separate concurrency caps. Candidates are classified, scored, and upserted by
//     content identity so repeated runs never duplicate an article.
//   - Read path: internal/projection answers every request immediately with a fast heuristic view. When the
//     enrichment service is ready and no overlay exists, the article is queued for the background worker.
//   - Enrichment: internal/worker drains the queue one article at a time and stores an overlay that supersedes the
//     fast view on later reads. A failing article is logged and skipped.
//   - Plumbing: Viper loads config from file and NEWSPULSE_* env vars; zap provides structured logging; Prometheus
//     metrics are exported on /metrics; events go to Pub/Sub when a project is configured.
//
// Run locally: go run . serve --config config.yaml, or go run . collect for a one-off pass.
package main

import (
	"github.com/JakeFAU/newspulse/cmd"
)

func main() {
	cmd.Execute()
}
