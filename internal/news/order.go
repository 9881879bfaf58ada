package news

import (
	"sort"
	"time"
)

// SortArticles orders articles in place by key. Ties fall back to newest first.
func SortArticles(articles []Article, key SortKey) {
	newer := func(a, b Article) bool { return a.PublishedAt.After(b.PublishedAt) }
	var less func(a, b Article) bool
	switch key {
	case SortDateNew:
		less = newer
	case SortDateOld:
		less = func(a, b Article) bool { return a.PublishedAt.Before(b.PublishedAt) }
	case SortSource:
		less = func(a, b Article) bool {
			if a.SourceName != b.SourceName {
				return a.SourceName < b.SourceName
			}
			return newer(a, b)
		}
	default:
		less = func(a, b Article) bool {
			if a.Importance != b.Importance {
				return a.Importance > b.Importance
			}
			return newer(a, b)
		}
	}
	sort.SliceStable(articles, func(i, j int) bool { return less(articles[i], articles[j]) })
}

// NewStats returns Stats with its maps allocated.
func NewStats() Stats {
	return Stats{
		BySource:   map[string]int{},
		ByCountry:  map[string]int{},
		ByLanguage: map[string]int{},
	}
}

// Add counts one article. Band and breakdown counters only track finance articles.
func (s *Stats) Add(a Article, enriched bool, since time.Time) {
	s.Total++
	if !a.CollectedAt.Before(since) {
		s.CollectedSince++
	}
	if !a.Finance {
		return
	}
	s.Finance++
	switch BandOf(a.Importance) {
	case BandHigh:
		s.HighPriority++
	case BandMedium:
		s.MediumPriority++
	default:
		s.LowPriority++
	}
	if enriched {
		s.Enriched++
	}
	s.BySource[a.SourceName]++
	s.ByCountry[a.Country]++
	s.ByLanguage[a.Language]++
}
