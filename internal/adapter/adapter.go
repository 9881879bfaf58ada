// Package adapter holds the helpers shared by the HTML and feed fetch adapters.
package adapter

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JakeFAU/newspulse/internal/classify"
	"github.com/JakeFAU/newspulse/internal/identity"
	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/source"
)

// Candidate limits.
const (
	MinTitleRunes   = 10
	MaxExcerptRunes = 1000
)

// Collector turns one source into candidate articles.
type Collector interface {
	Collect(ctx context.Context, src source.Source) ([]news.Article, error)
}

// NewCandidate builds an unclassified article with identity, language, and country set.
func NewCandidate(src source.Source, title, link, content string) news.Article {
	language := src.Language
	if language == "" {
		language = classify.DetectLanguage(title)
	}
	return news.Article{
		ID:         identity.Fingerprint(title, link),
		SourceName: src.Name,
		Title:      title,
		URL:        link,
		Content:    content,
		Language:   language,
		Country:    classify.DetectCountry(src.Name, language),
	}
}

// CollapseSpace trims text and folds internal whitespace runs to single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Excerpt collapses whitespace and truncates to MaxExcerptRunes.
func Excerpt(s string) string {
	s = CollapseSpace(s)
	if utf8.RuneCountInString(s) <= MaxExcerptRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxExcerptRunes])
}

var (
	numberPattern = regexp.MustCompile(`(\d+)`)
	clockPattern  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	dayPattern    = regexp.MustCompile(`^(сегодня|today|вчера|yesterday)(?:,?\s*(?:в|at)?\s*(\d{1,2}):(\d{2}))?$`)
)

var absoluteLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"02.01.2006 15:04",
	"02.01.2006",
}

// ParseTimestamp interprets a page timestamp. It understands absolute layouts,
// a bare "HH:MM" for today, day words with an optional clock such as
// "Сегодня, 14:30" or "yesterday at 9:05", and relative phrases such as
// "3 часа назад". Anything else resolves to now.
func ParseTimestamp(text string, now time.Time) time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return now
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t
		}
	}
	if m := clockPattern.FindStringSubmatch(text); m != nil {
		return atClock(now, m[1], m[2])
	}

	lower := strings.ToLower(text)
	if m := dayPattern.FindStringSubmatch(lower); m != nil {
		day := now
		if m[1] == "вчера" || m[1] == "yesterday" {
			day = now.AddDate(0, 0, -1)
		}
		if m[2] == "" {
			return day
		}
		return atClock(day, m[2], m[3])
	}
	var unit time.Duration
	switch {
	case strings.Contains(lower, "hour") || strings.Contains(lower, "час"):
		unit = time.Hour
	case strings.Contains(lower, "minute") || strings.Contains(lower, "минут"):
		unit = time.Minute
	case strings.Contains(lower, "day") || strings.Contains(lower, "день") || strings.Contains(lower, "дн"):
		unit = 24 * time.Hour
	default:
		return now
	}
	m := numberPattern.FindStringSubmatch(lower)
	if m == nil {
		return now
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return now
	}
	return now.Add(-time.Duration(n) * unit)
}

// atClock sets the wall clock of day, or returns day unchanged when the
// clock is out of range.
func atClock(day time.Time, hh, mm string) time.Time {
	hour, _ := strconv.Atoi(hh)
	minute, _ := strconv.Atoi(mm)
	if hour >= 24 || minute >= 60 {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}
