package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cvforge/gateway/internal/plans"
)

// RedisBacked counts requests in fixed windows backed by the shared counter
// store. The window is approximate: a counter created at the end of one
// window and another at the start of the next allow bursts of up to twice
// the configured limit across the boundary. That trade-off is accepted; do
// not replace this with a sliding window.
type RedisBacked struct {
	store  CounterStore
	logger *zap.Logger
}

func NewRedisBacked(store CounterStore, logger *zap.Logger) *RedisBacked {
	return &RedisBacked{
		store:  store,
		logger: logger,
	}
}

func counterKey(userID string, window plans.Window) string {
	return fmt.Sprintf("rate:%s:%s", userID, window)
}

func (s *RedisBacked) CheckLimit(ctx context.Context, userID string, tier plans.Tier, window plans.Window) (bool, error) {
	key := counterKey(userID, window)

	count, err := s.store.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	// First increment in this window: attach the TTL that ends it.
	if count == 1 {
		if err := s.store.Expire(ctx, key, window.Duration()); err != nil {
			s.logger.Warn("failed to set window expiry on rate counter",
				zap.String("key", key),
				zap.Error(err),
			)
		}
	}

	limit := plans.RateLimit(tier, window)
	if limit == plans.Unlimited {
		return true, nil
	}

	return count <= int64(limit), nil
}

func (s *RedisBacked) Info(ctx context.Context, userID string, tier plans.Tier, window plans.Window) (Info, error) {
	key := counterKey(userID, window)
	limit := plans.RateLimit(tier, window)
	now := time.Now()

	val, err := s.store.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		return Info{Limit: limit, Remaining: limit, ResetAt: now.UnixMilli()}, nil
	}
	if err != nil {
		return Info{}, err
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return Info{}, fmt.Errorf("malformed rate counter %s: %w", key, err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	resetAt := now.UnixMilli()
	ttl, err := s.store.TTL(ctx, key)
	if err != nil {
		return Info{}, err
	}
	if ttl > 0 {
		resetAt = now.Add(ttl).UnixMilli()
	}

	return Info{Limit: limit, Remaining: remaining, ResetAt: resetAt}, nil
}

func (s *RedisBacked) Name() string {
	return "store-backed"
}

func (s *RedisBacked) Health(ctx context.Context) string {
	if err := s.store.Ping(ctx); err != nil {
		return HealthUnhealthy
	}
	return HealthHealthy
}
