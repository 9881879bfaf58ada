package projection

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JakeFAU/newspulse/internal/enrichment"
	"github.com/JakeFAU/newspulse/internal/news"
)

const (
	maxFlatEntities  = 6
	perGroupEntities = 2
	criticalScore    = 0.9
)

var majorOrganizations = []string{
	"сбербанк", "газпром", "роснефть", "мосбиржа", "цб", "минфин",
	"apple", "microsoft", "google", "fed", "ecb",
}

// Enrich asks svc for every enrichment facet of a and assembles the overlay.
func Enrich(ctx context.Context, svc enrichment.Service, a news.Article, now time.Time) (news.Overlay, error) {
	text := strings.TrimSpace(a.Title + " " + a.Content)

	entities, err := svc.ExtractEntities(ctx, text)
	if err != nil {
		return news.Overlay{}, fmt.Errorf("extract entities: %w", err)
	}
	score, err := svc.ClassifyImportance(ctx, a.Title, a.Content, a.SourceName)
	if err != nil {
		return news.Overlay{}, fmt.Errorf("classify importance: %w", err)
	}
	score = min(max(score, 0), 1)
	sentiment, err := svc.AnalyzeSentiment(ctx, text)
	if err != nil {
		return news.Overlay{}, fmt.Errorf("analyze sentiment: %w", err)
	}
	draft, err := svc.GenerateDraft(ctx, a, entities, score)
	if err != nil {
		return news.Overlay{}, fmt.Errorf("generate draft: %w", err)
	}

	category := draft.Category
	if category == "" {
		category = categoryOf(a)
	}
	processed := now.UTC()
	view := news.ArticleView{
		ID:           a.ShortID(),
		Headline:     a.Title,
		Hotness:      score,
		WhyNow:       enrichedWhyNow(score, entities, sentiment),
		Entities:     FlattenEntities(entities),
		Sources:      []string{a.URL},
		Timeline:     enrichedTimeline(a, score),
		Draft:        draft,
		Source:       a.SourceName,
		PublishedAt:  a.PublishedAt,
		Category:     category,
		Country:      a.Country,
		Language:     a.Language,
		Tags:         a.Tags,
		ImpactLevel:  ImpactLevel(score, entities, sentiment),
		AIEnhanced:   true,
		Sentiment:    &sentiment,
		EntityGroups: &entities,
		ProcessedAt:  &processed,
	}
	return news.Overlay{ArticleID: a.ID, View: view, ProcessedAt: processed, Enriched: true}, nil
}

// FlattenEntities merges up to two names per group, money excluded, without
// duplicates.
func FlattenEntities(e news.Entities) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, group := range [][]string{e.Organizations, e.Persons, e.Locations, e.Misc} {
		if len(group) > perGroupEntities {
			group = group[:perGroupEntities]
		}
		for _, name := range group {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	if len(out) > maxFlatEntities {
		out = out[:maxFlatEntities]
	}
	return out
}

func enrichedWhyNow(score float64, e news.Entities, s news.Sentiment) string {
	switch {
	case score > 0.8 && len(e.Organizations) > 0:
		return fmt.Sprintf("🔥 КРИТИЧЕСКАЯ ВАЖНОСТЬ: Событие может оказать существенное влияние на %s и рынок в целом", e.Organizations[0])
	case score > 0.8:
		return "🔥 ВЫСОКАЯ СРОЧНОСТЬ: Требуется немедленное внимание инвесторов и аналитиков"
	case score > 0.6 && s.Label == "negative":
		return "⚠️ ЗНАЧИТЕЛЬНЫЙ РИСК: Негативное развитие требует анализа потенциальных последствий"
	case score > 0.6:
		return "📈 ВАЖНАЯ ИНФОРМАЦИЯ: Может повлиять на инвестиционные решения в среднесрочной перспективе"
	default:
		return "📊 ИНФОРМАЦИЯ К СВЕДЕНИЮ: Рекомендуется мониторинг развития ситуации"
	}
}

// enrichedTimeline has four points for high scores and three otherwise.
func enrichedTimeline(a news.Article, score float64) []string {
	at := a.PublishedAt
	timeline := []string{
		at.Format(timeLayout) + " - Публикация в " + a.SourceName,
		at.Add(30*time.Minute).Format(timeLayout) + " - Распространение в информационных каналах",
	}
	if score > 0.7 {
		return append(timeline,
			at.Add(time.Hour).Format(timeLayout)+" - Начало активного обсуждения экспертами",
			at.Add(2*time.Hour).Format(timeLayout)+" - Ожидается реакция рынка",
		)
	}
	return append(timeline, at.Add(time.Hour).Format(timeLayout)+" - Начало экспертного обсуждения")
}

// ImpactLevel grades the enriched score. Negative tone adds 0.1.
func ImpactLevel(score float64, e news.Entities, s news.Sentiment) string {
	adjusted := score
	if s.Label == "negative" {
		adjusted += 0.1
	}
	switch {
	case adjusted >= criticalScore:
		return ImpactCritical
	case adjusted > 0.7 && hasMajorOrganization(e):
		return ImpactCritical
	case adjusted > 0.7:
		return ImpactHigh
	case adjusted > 0.5:
		return ImpactMedium
	default:
		return ImpactBase
	}
}

func hasMajorOrganization(e news.Entities) bool {
	for _, org := range e.Organizations {
		lower := strings.ToLower(org)
		for _, major := range majorOrganizations {
			if strings.Contains(lower, major) {
				return true
			}
		}
	}
	return false
}
