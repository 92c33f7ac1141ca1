package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	TicketStatsKey = "ticket-sales:stats:tickets"
	SaleStatsKey   = "ticket-sales:stats:sales"
)

// StatsCache stores computed statistics between mutations.
type StatsCache interface {
	// Get decodes the cached value into dst and reports whether it was found.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, keys ...string) error
}

type redisStatsCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisStatsCache(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) StatsCache {
	return &redisStatsCache{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("cache", "stats")),
	}
}

func (c *redisStatsCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}

	c.log.Debug("Stats cache hit", zap.String("key", key))
	return true, nil
}

func (c *redisStatsCache) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *redisStatsCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

type noopStatsCache struct{}

// NewNoop returns a cache that never stores anything.
func NewNoop() StatsCache {
	return noopStatsCache{}
}

func (noopStatsCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (noopStatsCache) Set(context.Context, string, any) error         { return nil }
func (noopStatsCache) Invalidate(context.Context, ...string) error    { return nil }

// Connect dials redis and verifies it with a ping.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis failed: %w", err)
	}
	return client, nil
}
