// Package feed extracts candidate articles from RSS and Atom documents.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/JakeFAU/newspulse/internal/adapter"
	"github.com/JakeFAU/newspulse/internal/identity"
	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/source"
)

// DefaultLimit caps candidates per feed.
const DefaultLimit = 20

// Adapter parses one feed source per call.
type Adapter struct {
	fetcher  news.Fetcher
	clock    news.Clock
	denylist *identity.Denylist
	limit    int
}

// New builds an Adapter. A non-positive limit uses DefaultLimit.
func New(fetcher news.Fetcher, clock news.Clock, denylist *identity.Denylist, limit int) *Adapter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if denylist == nil {
		denylist = identity.DefaultDenylist()
	}
	return &Adapter{fetcher: fetcher, clock: clock, denylist: denylist, limit: limit}
}

type parseResult struct {
	feed *gofeed.Feed
	err  error
}

// Collect fetches and parses src. Parsing runs off the calling goroutine so a
// canceled context releases the caller immediately.
func (a *Adapter) Collect(ctx context.Context, src source.Source) ([]news.Article, error) {
	if _, ok := src.Kind.(source.Feed); !ok {
		return nil, fmt.Errorf("%s: not a feed source", src.Name)
	}
	resp, err := a.fetcher.Fetch(ctx, news.FetchRequest{URL: src.URL})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
	}

	done := make(chan parseResult, 1)
	go func() {
		parsed, perr := gofeed.NewParser().Parse(bytes.NewReader(resp.Body))
		done <- parseResult{feed: parsed, err: perr}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("parse %s: %w", src.Name, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("parse %s: %w", src.Name, res.err)
		}
		return a.extract(res.feed, src), nil
	}
}

func (a *Adapter) extract(parsed *gofeed.Feed, src source.Source) []news.Article {
	now := a.clock.Now()
	items := parsed.Items
	if len(items) > a.limit {
		items = items[:a.limit]
	}
	out := make([]news.Article, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		title := adapter.CollapseSpace(item.Title)
		if title == "" || utf8.RuneCountInString(title) < adapter.MinTitleRunes {
			continue
		}
		link := identity.ResolveLink(item.Link, src.URL)
		if link == "" || a.denylist.Blocked(link) {
			continue
		}

		article := adapter.NewCandidate(src, title, link, summary(item))
		article.PublishedAt = published(item, now)
		article.CollectedAt = now
		out = append(out, article)
	}
	return out
}

func summary(item *gofeed.Item) string {
	raw := item.Description
	if strings.TrimSpace(raw) == "" {
		raw = item.Content
	}
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return adapter.Excerpt(stripMarkup(raw))
}

// stripMarkup returns the text content of an HTML fragment.
func stripMarkup(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return doc.Text()
}

func published(item *gofeed.Item, now time.Time) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		return item.UpdatedParsed.UTC()
	default:
		return now
	}
}
