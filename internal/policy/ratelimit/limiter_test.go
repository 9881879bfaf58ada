package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiter_WaitSpacesRequestsPerHost(t *testing.T) {
	t.Parallel()

	// 10 RPS with burst 1: the second request waits ~100ms.
	l := New(Config{RatePerHost: 10, Burst: 1})
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "https://rbc.ru/economics"))

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://rbc.ru/finances"))
	require.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestLimiter_DifferentHostsAreIndependent(t *testing.T) {
	t.Parallel()

	l := New(Config{RatePerHost: 1, Burst: 1})
	ctx := context.Background()

	require.NoError(t, l.Wait(ctx, "https://a.example/1"))

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://b.example/1"))
	require.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	t.Parallel()

	l := New(Config{RatePerHost: 0.1, Burst: 1})
	require.NoError(t, l.Wait(context.Background(), "https://slow.example"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx, "https://slow.example")
	require.Error(t, err)
	require.Contains(t, err.Error(), "rate limit wait")
}

func TestLimiter_ZeroRateIsUnlimited(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	start := time.Now()
	for i := 0; i < 20; i++ {
		require.NoError(t, l.Wait(context.Background(), "https://example.com"))
	}
	require.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiter_KeysBucketsBySanitizedHost(t *testing.T) {
	t.Parallel()

	l := New(Config{RatePerHost: 100, Burst: 10})
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "https://RBC.ru/economics"))
	require.NoError(t, l.Wait(ctx, "rbc.ru/finances"))
	require.NoError(t, l.Wait(ctx, "http://%"))

	l.mu.Lock()
	defer l.mu.Unlock()
	require.Len(t, l.limiters, 2)
	require.Contains(t, l.limiters, "rbc.ru")
	require.Contains(t, l.limiters, "unknown")
}
