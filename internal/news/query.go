package news

import (
	"fmt"
	"time"
)

// Band is a coarse importance bucket used for filtering.
type Band string

// Priority bands.
const (
	BandAll    Band = "all"
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

// Band thresholds. Medium is inclusive on both ends.
const (
	HighThreshold = 0.7
	LowThreshold  = 0.4
)

// ParseBand validates a band name; the empty string means all.
func ParseBand(raw string) (Band, error) {
	switch Band(raw) {
	case "", BandAll:
		return BandAll, nil
	case BandHigh, BandMedium, BandLow:
		return Band(raw), nil
	default:
		return "", fmt.Errorf("unknown priority %q", raw)
	}
}

// BandOf buckets an importance score.
func BandOf(score float64) Band {
	switch {
	case score > HighThreshold:
		return BandHigh
	case score >= LowThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// Contains reports whether score falls inside the band.
func (b Band) Contains(score float64) bool {
	if b == BandAll || b == "" {
		return true
	}
	return BandOf(score) == b
}

// SortKey orders query results.
type SortKey string

// Supported sort keys.
const (
	SortHotness SortKey = "hotness"
	SortDateNew SortKey = "date_new"
	SortDateOld SortKey = "date_old"
	SortSource  SortKey = "source"
)

// ParseSortKey validates a sort key; the empty string means hotness.
func ParseSortKey(raw string) (SortKey, error) {
	switch SortKey(raw) {
	case "", SortHotness:
		return SortHotness, nil
	case SortDateNew, SortDateOld, SortSource:
		return SortKey(raw), nil
	default:
		return "", fmt.Errorf("unknown sort %q", raw)
	}
}

// Query selects finance articles for the read path.
type Query struct {
	Since time.Time
	Limit int
	Sort  SortKey
	Band  Band
}
