// Package heuristic is the built-in, dictionary-driven enrichment service.
package heuristic

import (
	"context"
	"math"
	"strings"

	"github.com/JakeFAU/newspulse/internal/classify"
	"github.com/JakeFAU/newspulse/internal/news"
)

// Sentiment labels.
const (
	Positive = "positive"
	Negative = "negative"
	Neutral  = "neutral"
)

// MaxImportance caps heuristic scores below certainty.
const MaxImportance = 0.99

// Service implements enrichment.Service without external calls.
type Service struct{}

// New returns a Service.
func New() *Service {
	return &Service{}
}

// ClassifyImportance starts from the classifier score and adjusts it for tone,
// length, and the number of organizations mentioned.
func (s *Service) ClassifyImportance(ctx context.Context, title, content, source string) (float64, error) {
	score := classify.Importance(title, content, source)

	sentiment, _ := s.AnalyzeSentiment(ctx, title+". "+content)
	switch sentiment.Label {
	case Positive:
		score += 0.1
	case Negative:
		score += 0.15
	}

	switch n := len([]rune(content)); {
	case n > 1000:
		score += 0.1
	case n > 500:
		score += 0.05
	}

	entities, _ := s.ExtractEntities(ctx, title+" "+content)
	score += 0.02 * float64(len(entities.Organizations))

	return math.Min(MaxImportance, math.Max(classify.MinImportance, score)), nil
}

// ExtractEntities matches dictionary entries and money expressions.
func (s *Service) ExtractEntities(_ context.Context, text string) (news.Entities, error) {
	lower := strings.ToLower(text)
	entities := news.Entities{
		Organizations: matchTerms(lower, organizations, maxOrganizations),
		Persons:       matchTerms(lower, persons, maxPersons),
		Locations:     matchTerms(lower, locations, maxLocations),
		Money:         []string{},
		Misc:          []string{},
	}
	for _, re := range moneyPatterns {
		for _, m := range re.FindAllString(lower, -1) {
			if len(entities.Money) == maxMoney {
				break
			}
			entities.Money = append(entities.Money, m)
		}
	}
	return entities, nil
}

// AnalyzeSentiment compares positive and negative keyword counts.
func (s *Service) AnalyzeSentiment(_ context.Context, text string) (news.Sentiment, error) {
	lower := strings.ToLower(text)
	pos := countTerms(lower, positiveWords)
	neg := countTerms(lower, negativeWords)
	switch {
	case pos > neg:
		return news.Sentiment{Label: Positive, Confidence: 0.7, Scores: scores(0.2, 0.3, 0.5)}, nil
	case neg > pos:
		return news.Sentiment{Label: Negative, Confidence: 0.7, Scores: scores(0.5, 0.3, 0.2)}, nil
	default:
		return news.Sentiment{Label: Neutral, Confidence: 0.6, Scores: scores(0.3, 0.4, 0.3)}, nil
	}
}

// GenerateDraft fills the analyst template around the leading organization.
func (s *Service) GenerateDraft(_ context.Context, article news.Article, entities news.Entities, _ float64) (news.Draft, error) {
	subject := "рынка"
	if len(entities.Organizations) > 0 {
		subject = entities.Organizations[0]
	}
	category := classify.Category(article.Title, "")
	if category == classify.CategoryGeneral {
		category = "finance"
	}
	return news.Draft{
		Title: "Анализ: " + article.Title,
		Lead: "Развитие ситуации вокруг " + subject +
			" требует внимания со стороны финансового сообщества. Событие может оказать влияние на рыночные тенденции.",
		Bullets: []string{
			"Событие затрагивает деятельность " + subject + " и смежные сектора экономики",
			"Рыночная реакция может оказать влияние на инвестиционные стратегии участников",
			"Эксперты рекомендуют внимательно следить за развитием событий в ближайшее время",
		},
		Quote:         "Текущая динамика требует тщательного анализа и мониторинга - финансовый эксперт",
		Category:      category,
		GeneratedByAI: false,
	}, nil
}

func matchTerms(lower string, terms []string, limit int) []string {
	out := []string{}
	for _, term := range terms {
		if len(out) == limit {
			break
		}
		if strings.Contains(lower, term) {
			out = append(out, classify.TitleCase(term))
		}
	}
	return out
}

func countTerms(lower string, terms []string) int {
	n := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			n++
		}
	}
	return n
}

func scores(negative, neutral, positive float64) map[string]float64 {
	return map[string]float64{Negative: negative, Neutral: neutral, Positive: positive}
}
