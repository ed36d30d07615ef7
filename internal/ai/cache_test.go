package ai

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func (m *memoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value
	return nil
}

func TestCachedCompleterServesRepeatPrompts(t *testing.T) {
	next := &MockCompleter{Responses: []string{"first"}}
	c := CachedCompleter{Next: next, Cache: &memoryCache{}, TTL: time.Minute, Logger: zerolog.Nop()}
	req := CompletionRequest{Operation: "summary", Prompt: "p", Temperature: 0.3}

	out, err := c.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "first", out)

	out, err = c.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "first", out)
	require.Len(t, next.Calls(), 1)
}

func TestCachedCompleterBypassesCacheWhenAsked(t *testing.T) {
	up := true
	next := FuncCompleter(func(ctx context.Context, req CompletionRequest) (string, error) {
		if !up {
			return "", errors.New("connection refused")
		}
		return "连接正常", nil
	})
	cache := &memoryCache{}
	c := CachedCompleter{Next: next, Cache: cache, TTL: time.Minute, Logger: zerolog.Nop()}
	req := CompletionRequest{Operation: "connectivity", Prompt: "ping", NoCache: true}

	_, err := c.Complete(context.Background(), req)
	require.NoError(t, err)
	require.Empty(t, cache.values)

	up = false
	_, err = c.Complete(context.Background(), req)
	require.Error(t, err)
}

func TestCachedCompleterDoesNotCacheErrors(t *testing.T) {
	boom := errors.New("boom")
	next := &MockCompleter{Err: boom}
	cache := &memoryCache{}
	c := CachedCompleter{Next: next, Cache: cache, TTL: time.Minute, Logger: zerolog.Nop()}

	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	require.ErrorIs(t, err, boom)
	require.Empty(t, cache.values)
}

func TestCachedCompleterIgnoresCacheFailures(t *testing.T) {
	next := &MockCompleter{Responses: []string{"live"}}
	c := CachedCompleter{Next: next, Cache: &memoryCache{getErr: errors.New("redis down")}, Logger: zerolog.Nop()}

	out, err := c.Complete(context.Background(), CompletionRequest{Prompt: "p"})
	require.NoError(t, err)
	require.Equal(t, "live", out)
}

func TestCacheKeyDependsOnSamplingParameters(t *testing.T) {
	a := cacheKey(CompletionRequest{Operation: "x", Prompt: "p", Temperature: 0.2})
	b := cacheKey(CompletionRequest{Operation: "x", Prompt: "p", Temperature: 0.5})
	require.NotEqual(t, a, b)
}

func TestRedisCacheIntegration(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	cache, err := NewRedisCache(ctx, url)
	require.NoError(t, err)
	defer cache.Close()

	key := "hotline:test:" + time.Now().Format("150405.000000")
	_, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.Set(ctx, key, "v", time.Minute))
	v, ok, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
}
