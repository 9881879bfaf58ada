// Package classify implements the heuristic finance classifier and importance scorer.
package classify

import (
	"math"
	"strings"
	"unicode"

	"github.com/JakeFAU/newspulse/internal/news"
)

// Score bounds and defaults.
const (
	BaseImportance = 0.3
	MinImportance  = 0.1
	MaxImportance  = 1.0
	MaxTags        = 5

	CategoryGeneral = "general"
)

// Language codes.
const (
	LangRussian = "ru"
	LangEnglish = "en"
	LangUnknown = "unknown"
)

// Country labels.
const (
	CountryUSA           = "usa"
	CountryRussia        = "russia"
	CountryInternational = "international"
)

// DetectLanguage compares Cyrillic and Latin letter counts.
func DetectLanguage(text string) string {
	var cyrillic, latin int
	for _, r := range text {
		switch {
		case (r >= 'а' && r <= 'я') || (r >= 'А' && r <= 'Я'):
			cyrillic++
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			latin++
		}
	}
	switch {
	case cyrillic > latin:
		return LangRussian
	case latin > cyrillic:
		return LangEnglish
	default:
		return LangUnknown
	}
}

// DetectCountry prefers known outlets, then falls back to language.
func DetectCountry(sourceName, language string) string {
	name := strings.ToLower(sourceName)
	switch {
	case containsAny(name, usaSources):
		return CountryUSA
	case containsAny(name, russiaSources):
		return CountryRussia
	case language == LangRussian:
		return CountryRussia
	case language == LangEnglish:
		return CountryUSA
	default:
		return CountryInternational
	}
}

// IsFinance reports whether the text matches at least one finance term or market token.
func IsFinance(title, content string) bool {
	text := joinLower(title, content)
	return containsAny(text, financeTerms) || containsAny(text, marketTokens)
}

// Importance scores an article in [MinImportance, MaxImportance].
func Importance(title, content, sourceName string) float64 {
	score := BaseImportance
	name := strings.ToLower(sourceName)
	for _, w := range sourceWeights {
		if strings.Contains(name, w.term) {
			score = w.weight
			break
		}
	}
	score += UrgencyBoost(title, content)
	return Clamp(score)
}

// UrgencyBoost returns the boost of the first urgency term found, or zero.
func UrgencyBoost(title, content string) float64 {
	text := joinLower(title, content)
	for _, w := range urgencyBoosts {
		if strings.Contains(text, w.term) {
			return w.weight
		}
	}
	return 0
}

// Clamp bounds a score to [MinImportance, MaxImportance]. NaN maps to the base score.
func Clamp(score float64) float64 {
	if math.IsNaN(score) {
		return BaseImportance
	}
	return math.Min(MaxImportance, math.Max(MinImportance, score))
}

// Category returns the first matching bucket, else CategoryGeneral.
func Category(title, content string) string {
	text := joinLower(title, content)
	for _, b := range categories {
		if containsAny(text, b.terms) {
			return b.name
		}
	}
	return CategoryGeneral
}

// Tags returns up to MaxTags distinct entity and theme keywords found in the text.
func Tags(title, content string) []string {
	text := joinLower(title, content)
	tags := make([]string, 0, MaxTags)
	seen := make(map[string]struct{}, MaxTags)
	for _, group := range [][]string{tagEntities, tagThemes} {
		for _, term := range group {
			if len(tags) == MaxTags {
				return tags
			}
			if _, ok := seen[term]; ok {
				continue
			}
			if strings.Contains(text, term) {
				seen[term] = struct{}{}
				tags = append(tags, term)
			}
		}
	}
	return tags
}

// Classify fills the derived fields of a collected article in place.
// An existing language is kept; a missing one is detected from the title.
func Classify(a *news.Article) {
	if a.Language == "" {
		a.Language = DetectLanguage(a.Title)
	}
	a.Country = DetectCountry(a.SourceName, a.Language)
	a.Finance = IsFinance(a.Title, a.Content)
	a.Importance = Importance(a.Title, a.Content, a.SourceName)
	a.Category = Category(a.Title, a.Content)
	a.Tags = Tags(a.Title, a.Content)
}

func joinLower(title, content string) string {
	return strings.ToLower(title + " " + content)
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

// TitleCase upper-cases the first letter of every word, where a word starts
// after any non-letter: "альфа-банк" becomes "Альфа-Банк".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		prevLetter = false
		b.WriteRune(r)
	}
	return b.String()
}
