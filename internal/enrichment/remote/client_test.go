package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/newspulse/internal/enrichment"
	"github.com/JakeFAU/newspulse/internal/news"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /importance", func(w http.ResponseWriter, r *http.Request) {
		var req importanceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Bloomberg", req.Source)
		_ = json.NewEncoder(w).Encode(importanceResponse{Score: 0.82})
	})
	mux.HandleFunc("POST /entities", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(news.Entities{Organizations: []string{"Газпром"}, Money: []string{"5%"}})
	})
	mux.HandleFunc("POST /sentiment", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"sentiment":"negative","confidence":0.91}`))
	})
	mux.HandleFunc("POST /draft", func(w http.ResponseWriter, r *http.Request) {
		var req draftRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_ = json.NewEncoder(w).Encode(news.Draft{
			Title:         "Анализ: " + req.Article.Title,
			Bullets:       []string{req.Entities.Leading()},
			GeneratedByAI: true,
			AIConfidence:  0.8,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientCallsEndpoints(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	ctx := context.Background()
	c, err := New(srv.URL+"/", nil)
	require.NoError(t, err)

	score, err := c.ClassifyImportance(ctx, "Нефть дорожает", "", "Bloomberg")
	require.NoError(t, err)
	require.InDelta(t, 0.82, score, 1e-9)

	entities, err := c.ExtractEntities(ctx, "Газпром")
	require.NoError(t, err)
	require.Equal(t, []string{"Газпром"}, entities.Organizations)

	sentiment, err := c.AnalyzeSentiment(ctx, "падение")
	require.NoError(t, err)
	require.Equal(t, "negative", sentiment.Label)
	require.InDelta(t, 0.91, sentiment.Confidence, 1e-9)

	draft, err := c.GenerateDraft(ctx, news.Article{Title: "Нефть дорожает"}, entities, score)
	require.NoError(t, err)
	require.Equal(t, "Анализ: Нефть дорожает", draft.Title)
	require.Equal(t, []string{"Газпром"}, draft.Bullets)
	require.True(t, draft.GeneratedByAI)
}

func TestClientSurfacesStatusErrors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model warming up", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, nil)
	require.NoError(t, err)
	_, err = c.AnalyzeSentiment(context.Background(), "x")
	require.ErrorContains(t, err, "status 503")
	require.ErrorContains(t, err, "model warming up")
}

func TestLoaderProbesHealth(t *testing.T) {
	t.Parallel()

	srv := newServer(t)
	h := enrichment.NewHandle(Loader(srv.URL, &http.Client{Timeout: time.Second}), nil)
	h.Start(context.Background())
	require.Eventually(t, h.Ready, time.Second, 5*time.Millisecond)

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(down.Close)
	failed := enrichment.NewHandle(Loader(down.URL, nil), nil)
	failed.Start(context.Background())
	require.Eventually(t, func() bool { return failed.Status() == enrichment.StatusFailed }, time.Second, 5*time.Millisecond)
}

func TestNewRequiresURL(t *testing.T) {
	t.Parallel()

	_, err := New("  ", nil)
	require.Error(t, err)
}

func TestClientHonorsContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c, err := New(srv.URL, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = c.ExtractEntities(ctx, "x")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
