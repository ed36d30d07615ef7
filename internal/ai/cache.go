package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/govhotline/backend/internal/metrics"
	"github.com/govhotline/backend/internal/utils"
)

// Cache stores successful completions keyed by prompt.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// CachedCompleter serves repeated prompts from Cache. Cache errors are logged
// and never turn a good upstream answer into a failure; errors from Next are
// never cached.
type CachedCompleter struct {
	Next   Completer
	Cache  Cache
	TTL    time.Duration
	Logger zerolog.Logger
}

func (c CachedCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.NoCache {
		metrics.AICache.WithLabelValues("bypass").Inc()
		return c.Next.Complete(ctx, req)
	}
	key := cacheKey(req)
	if v, ok, err := c.Cache.Get(ctx, key); err != nil {
		c.Logger.Warn().Err(err).Str("operation", req.Operation).Msg("completion cache read failed")
	} else if ok {
		metrics.AICache.WithLabelValues("hit").Inc()
		return v, nil
	}
	metrics.AICache.WithLabelValues("miss").Inc()

	v, err := c.Next.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if v != "" {
		if err := c.Cache.Set(ctx, key, v, c.TTL); err != nil {
			c.Logger.Warn().Err(err).Str("operation", req.Operation).Msg("completion cache write failed")
		}
	}
	return v, nil
}

func cacheKey(req CompletionRequest) string {
	return "hotline:completion:" + utils.HashKey(
		req.Operation,
		fmt.Sprintf("%.2f", req.Temperature),
		fmt.Sprintf("%.2f", req.TopP),
		req.Prompt,
	)
}
