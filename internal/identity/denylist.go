package identity

import "strings"

// DefaultDenyPatterns filters social, login, and advertising links.
var DefaultDenyPatterns = []string{
	"facebook", "twitter", "instagram", "vk.com", "telegram",
	"youtube", "login", "signin", "advertisement", "ads",
}

// Denylist rejects links containing any configured pattern.
type Denylist struct {
	patterns []string
}

// NewDenylist normalizes patterns; blanks and duplicates are dropped.
func NewDenylist(patterns []string) *Denylist {
	d := &Denylist{}
	for _, raw := range patterns {
		value := strings.TrimSpace(strings.ToLower(raw))
		if value == "" {
			continue
		}
		d.add(value)
	}
	return d
}

// DefaultDenylist returns a denylist built from DefaultDenyPatterns.
func DefaultDenylist() *Denylist {
	return NewDenylist(DefaultDenyPatterns)
}

func (d *Denylist) add(pattern string) {
	for _, existing := range d.patterns {
		if existing == pattern {
			return
		}
	}
	d.patterns = append(d.patterns, pattern)
}

// Blocked reports whether link matches any pattern, case-insensitively.
func (d *Denylist) Blocked(link string) bool {
	if d == nil {
		return false
	}
	lower := strings.ToLower(link)
	for _, pattern := range d.patterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
