// Package news defines the shared domain model for the collection and enrichment pipeline.
package news

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when an article, overlay, or draft does not exist.
	ErrNotFound = errors.New("not found")
	// ErrQueueClosed is returned by Queue operations after Close.
	ErrQueueClosed = errors.New("queue closed")
)

// Article is a collected, classified news item keyed by its fingerprint.
type Article struct {
	ID          string    `json:"id"`
	SourceName  string    `json:"source_name"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
	CollectedAt time.Time `json:"collected_at"`
	Language    string    `json:"language"`
	Category    string    `json:"category"`
	Finance     bool      `json:"finance"`
	Country     string    `json:"country"`
	Importance  float64   `json:"importance"`
	Tags        []string  `json:"tags,omitempty"`
}

// ShortID returns the public identifier used by the read path.
func (a Article) ShortID() string {
	if len(a.ID) <= ShortIDLength {
		return a.ID
	}
	return a.ID[:ShortIDLength]
}

// ShortIDLength is the fingerprint prefix length exposed to readers.
const ShortIDLength = 12

// Entities groups named entities found in an article.
type Entities struct {
	Organizations []string `json:"organizations"`
	Persons       []string `json:"persons"`
	Locations     []string `json:"locations"`
	Money         []string `json:"money"`
	Misc          []string `json:"misc"`
}

// Count returns the total number of entities across all groups.
func (e Entities) Count() int {
	return len(e.Organizations) + len(e.Persons) + len(e.Locations) + len(e.Money) + len(e.Misc)
}

// Leading returns the most prominent entity name, preferring organizations.
func (e Entities) Leading() string {
	for _, group := range [][]string{e.Organizations, e.Persons, e.Locations, e.Misc} {
		if len(group) > 0 {
			return group[0]
		}
	}
	return ""
}

// Sentiment is the tone assessment produced by the enrichment service.
type Sentiment struct {
	Label      string             `json:"sentiment"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores,omitempty"`
}

// Draft is a short narrative write-up of an article.
type Draft struct {
	Title         string   `json:"title"`
	Lead          string   `json:"lead"`
	Bullets       []string `json:"bullets"`
	Quote         string   `json:"quote"`
	Category      string   `json:"category"`
	GeneratedByAI bool     `json:"generated_by_ai"`
	AIConfidence  float64  `json:"ai_confidence,omitempty"`
}

// ArticleView is the representation returned to readers. The fast projection
// and the enrichment overlay share this shape.
type ArticleView struct {
	ID               string     `json:"id"`
	Headline         string     `json:"headline"`
	Hotness          float64    `json:"hotness"`
	WhyNow           string     `json:"why_now"`
	Entities         []string   `json:"entities"`
	Sources          []string   `json:"sources"`
	Timeline         []string   `json:"timeline"`
	Draft            Draft      `json:"draft"`
	Source           string     `json:"source"`
	PublishedAt      time.Time  `json:"published_at"`
	Category         string     `json:"category"`
	Country          string     `json:"country"`
	Language         string     `json:"language"`
	Tags             []string   `json:"tags,omitempty"`
	ImpactLevel      string     `json:"impact_level"`
	AIEnhanced       bool       `json:"ai_enhanced"`
	NeuralProcessing string     `json:"neural_processing,omitempty"`
	Sentiment        *Sentiment `json:"sentiment,omitempty"`
	EntityGroups     *Entities  `json:"entity_groups,omitempty"`
	ProcessedAt      *time.Time `json:"processed_at,omitempty"`
}

// Overlay is the stored enrichment result for one article.
type Overlay struct {
	ArticleID   string      `json:"article_id"`
	View        ArticleView `json:"enhanced_data"`
	ProcessedAt time.Time   `json:"processed_at"`
	Enriched    bool        `json:"ai_enhanced"`
}

// QueueEntry is a pending enrichment request.
type QueueEntry struct {
	ArticleID string
	Article   Article
	Enqueued  time.Time
}

// SavedDraft is an operator-edited draft kept alongside the article.
type SavedDraft struct {
	ArticleID string    `json:"article_id"`
	Draft     Draft     `json:"draft"`
	SavedAt   time.Time `json:"saved_at"`
}

// Stats summarizes the article store.
type Stats struct {
	Total          int            `json:"total_articles"`
	Finance        int            `json:"finance_articles"`
	HighPriority   int            `json:"high_priority"`
	MediumPriority int            `json:"medium_priority"`
	LowPriority    int            `json:"low_priority"`
	Enriched       int            `json:"ai_processed"`
	CollectedSince int            `json:"collected_recently"`
	BySource       map[string]int `json:"by_source"`
	ByCountry      map[string]int `json:"by_country"`
	ByLanguage     map[string]int `json:"by_language"`
}
