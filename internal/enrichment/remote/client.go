// Package remote calls an external enrichment service over HTTP JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JakeFAU/newspulse/internal/enrichment"
	"github.com/JakeFAU/newspulse/internal/news"
)

// DefaultTimeout bounds each call when the caller supplies no client.
const DefaultTimeout = 20 * time.Second

// Client implements enrichment.Service against a remote endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a Client for baseURL. A nil httpClient uses DefaultTimeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("enrichment remote url is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: baseURL, http: httpClient}, nil
}

// Loader returns an enrichment.Loader that succeeds once /health answers.
func Loader(baseURL string, httpClient *http.Client) enrichment.Loader {
	return func(ctx context.Context) (enrichment.Service, error) {
		c, err := New(baseURL, httpClient)
		if err != nil {
			return nil, err
		}
		if err := c.Health(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}
}

type importanceRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source_name"`
}

type importanceResponse struct {
	Score float64 `json:"score"`
}

type textRequest struct {
	Text string `json:"text"`
}

type draftRequest struct {
	Article  news.Article  `json:"article"`
	Entities news.Entities `json:"entities"`
	Score    float64       `json:"importance"`
}

// Health checks the service readiness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	return c.do(req, nil)
}

// ClassifyImportance posts to /importance.
func (c *Client) ClassifyImportance(ctx context.Context, title, content, source string) (float64, error) {
	var out importanceResponse
	if err := c.post(ctx, "/importance", importanceRequest{Title: title, Content: content, Source: source}, &out); err != nil {
		return 0, err
	}
	return out.Score, nil
}

// ExtractEntities posts to /entities.
func (c *Client) ExtractEntities(ctx context.Context, text string) (news.Entities, error) {
	var out news.Entities
	if err := c.post(ctx, "/entities", textRequest{Text: text}, &out); err != nil {
		return news.Entities{}, err
	}
	return out, nil
}

// AnalyzeSentiment posts to /sentiment.
func (c *Client) AnalyzeSentiment(ctx context.Context, text string) (news.Sentiment, error) {
	var out news.Sentiment
	if err := c.post(ctx, "/sentiment", textRequest{Text: text}, &out); err != nil {
		return news.Sentiment{}, err
	}
	return out, nil
}

// GenerateDraft posts to /draft.
func (c *Client) GenerateDraft(ctx context.Context, article news.Article, entities news.Entities, score float64) (news.Draft, error) {
	var out news.Draft
	if err := c.post(ctx, "/draft", draftRequest{Article: article, Entities: entities, Score: score}, &out); err != nil {
		return news.Draft{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("call %s: status %d: %s", req.URL.Path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
