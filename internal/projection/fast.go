// Package projection builds the reader-facing view of an article, preferring a
// stored enrichment overlay over the heuristic fast projection.
package projection

import (
	"strings"

	"github.com/JakeFAU/newspulse/internal/classify"
	"github.com/JakeFAU/newspulse/internal/news"
)

// Impact levels.
const (
	ImpactCritical = "критический"
	ImpactHigh     = "высокий"
	ImpactMedium   = "средний"
	ImpactBase     = "базовый"
)

// NeuralQueued marks a fast projection whose article awaits enrichment.
const NeuralQueued = "queued"

const (
	maxQuickEntities = 4
	defaultEntity    = "Финансы"
	fallbackSubject  = "рынка"
	timeLayout       = "15:04"
)

var quickKeywords = []string{
	"сбербанк", "газпром", "роснефть", "лукойл", "втб", "яндекс",
	"тинькофф", "альфа-банк", "мосбиржа", "цб", "минфин",
}

// Fast builds the heuristic projection available without enrichment.
func Fast(a news.Article) news.ArticleView {
	entities := QuickEntities(a.Title)
	return news.ArticleView{
		ID:          a.ShortID(),
		Headline:    a.Title,
		Hotness:     a.Importance,
		WhyNow:      quickWhyNow(a.Importance),
		Entities:    entities,
		Sources:     []string{a.URL},
		Timeline:    quickTimeline(a),
		Draft:       quickDraft(a.Title, entities),
		Source:      a.SourceName,
		PublishedAt: a.PublishedAt,
		Category:    categoryOf(a),
		Country:     a.Country,
		Language:    a.Language,
		Tags:        a.Tags,
		ImpactLevel: quickImpact(a.Importance),
	}
}

// QuickEntities returns title keyword matches, title-cased.
func QuickEntities(title string) []string {
	lower := strings.ToLower(title)
	var out []string
	for _, kw := range quickKeywords {
		if strings.Contains(lower, kw) {
			out = append(out, classify.TitleCase(kw))
			if len(out) == maxQuickEntities {
				break
			}
		}
	}
	if len(out) == 0 {
		return []string{defaultEntity}
	}
	return out
}

func quickWhyNow(score float64) string {
	switch {
	case score > 0.7:
		return "🔥 Высокий приоритет"
	case score > 0.5:
		return "📈 Важное событие"
	default:
		return "📊 Информация к сведению"
	}
}

func quickImpact(score float64) string {
	switch {
	case score > 0.7:
		return ImpactHigh
	case score > 0.5:
		return ImpactMedium
	default:
		return ImpactBase
	}
}

func quickTimeline(a news.Article) []string {
	return []string{
		a.PublishedAt.Format(timeLayout) + " - Публикация",
		"Следующий час - Мониторинг реакции",
	}
}

func quickDraft(title string, entities []string) news.Draft {
	subject := fallbackSubject
	if len(entities) > 0 {
		subject = entities[0]
	}
	return news.Draft{
		Title: "Анализ: " + title,
		Lead:  "Событие привлекает внимание финансового сообщества.",
		Bullets: []string{
			"Событие затрагивает " + subject,
			"Требуется мониторинг развития",
			"Рекомендуется анализ последствий",
		},
		Quote:    "Ситуация требует внимания - система",
		Category: "finance",
	}
}

func categoryOf(a news.Article) string {
	if a.Category == "" {
		return "finance"
	}
	return a.Category
}
