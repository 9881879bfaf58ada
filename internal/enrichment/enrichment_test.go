package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/newspulse/internal/news"
)

type stubService struct{}

func (stubService) ClassifyImportance(context.Context, string, string, string) (float64, error) {
	return 0.5, nil
}

func (stubService) ExtractEntities(context.Context, string) (news.Entities, error) {
	return news.Entities{}, nil
}

func (stubService) AnalyzeSentiment(context.Context, string) (news.Sentiment, error) {
	return news.Sentiment{Label: "neutral"}, nil
}

func (stubService) GenerateDraft(context.Context, news.Article, news.Entities, float64) (news.Draft, error) {
	return news.Draft{}, nil
}

func TestNilHandleIsNeverReady(t *testing.T) {
	t.Parallel()

	var h *Handle
	h.Start(context.Background())
	require.False(t, h.Ready())
	require.Equal(t, StatusDisabled, h.Status())
	_, err := h.Service()
	require.ErrorIs(t, err, ErrNotReady)
	require.NoError(t, h.Err())
}

func TestDisabledHandle(t *testing.T) {
	t.Parallel()

	h := NewHandle(nil, nil)
	h.Start(context.Background())
	require.Equal(t, StatusDisabled, h.Status())
	require.False(t, h.Ready())
}

func TestHandleBecomesReady(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	h := NewHandle(func(context.Context) (Service, error) {
		<-release
		return stubService{}, nil
	}, nil)
	h.Start(context.Background())
	h.Start(context.Background())

	require.Equal(t, StatusLoading, h.Status())
	_, err := h.Service()
	require.ErrorIs(t, err, ErrNotReady)

	close(release)
	require.Eventually(t, h.Ready, time.Second, 5*time.Millisecond)
	require.Equal(t, StatusReady, h.Status())
	svc, err := h.Service()
	require.NoError(t, err)
	require.NotNil(t, svc)
}

func TestHandleLoadFailure(t *testing.T) {
	t.Parallel()

	h := NewHandle(func(context.Context) (Service, error) {
		return nil, errors.New("model download failed")
	}, nil)
	h.Start(context.Background())

	require.Eventually(t, func() bool { return h.Status() == StatusFailed }, time.Second, 5*time.Millisecond)
	require.False(t, h.Ready())
	require.ErrorContains(t, h.Err(), "model download failed")
}

func TestStaticLoader(t *testing.T) {
	t.Parallel()

	svc, err := Static(stubService{})(context.Background())
	require.NoError(t, err)
	require.Equal(t, stubService{}, svc)
}
