// Package html extracts candidate articles from structured news pages.
package html

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/newspulse/internal/adapter"
	"github.com/JakeFAU/newspulse/internal/identity"
	"github.com/JakeFAU/newspulse/internal/news"
	"github.com/JakeFAU/newspulse/internal/source"
)

// DefaultLimit caps candidates per page.
const DefaultLimit = 15

// Adapter scrapes one HTML source per call.
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

// Collect fetches src and returns candidates in document order.
func (a *Adapter) Collect(ctx context.Context, src source.Source) ([]news.Article, error) {
	kind, ok := src.Kind.(source.HTML)
	if !ok {
		return nil, fmt.Errorf("%s: not an html source", src.Name)
	}
	resp, err := a.fetcher.Fetch(ctx, news.FetchRequest{URL: src.URL})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Name, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Name, err)
	}
	return a.extract(doc, src, kind.Selectors), nil
}

func (a *Adapter) extract(doc *goquery.Document, src source.Source, sel source.Selectors) []news.Article {
	now := a.clock.Now()
	var out []news.Article
	doc.Find(sel.Container).EachWithBreak(func(_ int, elem *goquery.Selection) bool {
		if len(out) >= a.limit {
			return false
		}
		article, err := a.candidate(elem, src, sel)
		if err != nil {
			return true
		}
		article.PublishedAt = adapter.ParseTimestamp(timeText(elem, sel.Time), now)
		article.CollectedAt = now
		out = append(out, article)
		return true
	})
	return out
}

var (
	errShortTitle = errors.New("title too short")
	errNoLink     = errors.New("no resolvable link")
	errDenied     = errors.New("link denied")
)

func (a *Adapter) candidate(elem *goquery.Selection, src source.Source, sel source.Selectors) (news.Article, error) {
	titleSel := elem
	if sel.Title != "" {
		titleSel = elem.Find(sel.Title).First()
	}
	title := adapter.CollapseSpace(titleSel.Text())
	if utf8.RuneCountInString(title) < adapter.MinTitleRunes {
		return news.Article{}, errShortTitle
	}

	href := linkHref(elem, sel.Link)
	link := identity.ResolveLink(href, src.URL)
	if link == "" {
		return news.Article{}, errNoLink
	}
	if a.denylist.Blocked(link) {
		return news.Article{}, errDenied
	}

	var content string
	if sel.Summary != "" {
		content = adapter.Excerpt(elem.Find(sel.Summary).First().Text())
	}
	return adapter.NewCandidate(src, title, link, content), nil
}

// linkHref prefers the configured selector and falls back to the first anchor,
// including the container itself when it is an anchor.
func linkHref(elem *goquery.Selection, selector string) string {
	if selector != "" {
		if href, ok := elem.Find(selector).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
			return href
		}
	}
	if goquery.NodeName(elem) == "a" {
		if href, ok := elem.Attr("href"); ok {
			return href
		}
	}
	href, _ := elem.Find("a[href]").First().Attr("href")
	return href
}

func timeText(elem *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	node := elem.Find(selector).First()
	if dt, ok := node.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
		return dt
	}
	return adapter.CollapseSpace(node.Text())
}
