// Package source loads and validates the registry of news sources.
package source

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed sources.yaml
var defaultRegistry []byte

// Kind is the fetch strategy of a source. The set of kinds is closed:
// HTML and Feed are the only implementations.
type Kind interface {
	kind() string
}

// Selectors are the CSS rules used to extract candidates from an HTML page.
type Selectors struct {
	Container string `yaml:"container"`
	Title     string `yaml:"title"`
	Link      string `yaml:"link"`
	Summary   string `yaml:"summary"`
	Time      string `yaml:"time"`
}

// HTML scrapes a structured page with selectors.
type HTML struct {
	Selectors Selectors
}

func (HTML) kind() string { return KindHTML }

// Feed parses an RSS or Atom document.
type Feed struct{}

func (Feed) kind() string { return KindFeed }

// Kind names used in registry files.
const (
	KindHTML = "html"
	KindFeed = "rss"
)

// Source is a validated registry entry.
type Source struct {
	Name     string
	URL      string
	Language string
	Kind     Kind
}

// KindName returns the registry name of the source kind.
func (s Source) KindName() string {
	if s.Kind == nil {
		return ""
	}
	return s.Kind.kind()
}

// Registry is the validated list of sources.
type Registry struct {
	Sources []Source
}

// HTML returns the page sources in registry order.
func (r Registry) HTML() []Source {
	return r.filter(KindHTML)
}

// Feeds returns the feed sources in registry order.
func (r Registry) Feeds() []Source {
	return r.filter(KindFeed)
}

func (r Registry) filter(kind string) []Source {
	var out []Source
	for _, s := range r.Sources {
		if s.KindName() == kind {
			out = append(out, s)
		}
	}
	return out
}

type registryFile struct {
	Sources []descriptor `yaml:"sources"`
}

type descriptor struct {
	Name      string     `yaml:"name"`
	Kind      string     `yaml:"kind"`
	URL       string     `yaml:"url"`
	Language  string     `yaml:"language"`
	Selectors *Selectors `yaml:"selectors"`
}

// Default returns the embedded registry.
func Default() (Registry, error) {
	return Parse(defaultRegistry)
}

// Load reads a registry file; an empty path yields the embedded registry.
func Load(path string) (Registry, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Registry{}, fmt.Errorf("read sources: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates registry YAML.
func Parse(data []byte) (Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Registry{}, fmt.Errorf("decode sources: %w", err)
	}
	reg := Registry{Sources: make([]Source, 0, len(file.Sources))}
	seen := make(map[string]struct{}, len(file.Sources))
	var errs []error
	for i, d := range file.Sources {
		src, err := d.validate()
		if err != nil {
			errs = append(errs, fmt.Errorf("sources[%d]: %w", i, err))
			continue
		}
		key := strings.ToLower(src.Name)
		if _, dup := seen[key]; dup {
			errs = append(errs, fmt.Errorf("sources[%d]: duplicate name %q", i, src.Name))
			continue
		}
		seen[key] = struct{}{}
		reg.Sources = append(reg.Sources, src)
	}
	if len(errs) > 0 {
		return Registry{}, errors.Join(errs...)
	}
	return reg, nil
}

func (d descriptor) validate() (Source, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Source{}, errors.New("name is required")
	}
	u, err := url.Parse(strings.TrimSpace(d.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Source{}, fmt.Errorf("%s: url must be an absolute http(s) address", name)
	}
	src := Source{Name: name, URL: u.String(), Language: strings.TrimSpace(d.Language)}
	switch strings.ToLower(strings.TrimSpace(d.Kind)) {
	case KindHTML:
		if d.Selectors == nil || strings.TrimSpace(d.Selectors.Container) == "" {
			return Source{}, fmt.Errorf("%s: html sources require selectors.container", name)
		}
		src.Kind = HTML{Selectors: *d.Selectors}
	case KindFeed, "feed":
		if d.Selectors != nil {
			return Source{}, fmt.Errorf("%s: rss sources do not take selectors", name)
		}
		src.Kind = Feed{}
	default:
		return Source{}, fmt.Errorf("%s: unknown kind %q", name, d.Kind)
	}
	return src, nil
}
