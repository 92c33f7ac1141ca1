package usecase

import (
	"context"

	"ticket-sales/internal/data/cache"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// usageRate is used/total as a percentage rounded to two places, or 0 when
// there are no tickets.
func usageRate(used, total int64) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(used).
		Div(decimal.NewFromInt(total)).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// cachedStats serves key from the cache or computes and stores it. Cache
// failures are logged and never fail the call.
func cachedStats[T any](ctx context.Context, c cache.StatsCache, log *zap.Logger, key string, compute func(context.Context) (T, error)) (T, error) {
	var cached T
	found, err := c.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("Stats cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		return cached, nil
	}

	fresh, err := compute(ctx)
	if err != nil {
		return fresh, err
	}

	if err := c.Set(ctx, key, fresh); err != nil {
		log.Warn("Stats cache write failed", zap.String("key", key), zap.Error(err))
	}
	return fresh, nil
}

func invalidateStats(ctx context.Context, c cache.StatsCache, log *zap.Logger, key string) {
	if err := c.Invalidate(ctx, key); err != nil {
		log.Warn("Stats cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}
