package ratelimit

import (
	"context"
	"time"

	"github.com/cvforge/gateway/internal/plans"
)

// Health states reported by the status endpoint.
const (
	HealthUnknown   = "unknown"
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
	HealthError     = "error"
	HealthDisabled  = "disabled"
)

// Info describes the state of one user's request window. ResetAt is epoch
// milliseconds; a Limit or Remaining of plans.Unlimited means no ceiling.
type Info struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetAt   int64 `json:"reset_at"`
}

// Strategy decides whether a request is admitted for a user's plan and
// window. Exactly one implementation is selected at boot and shared across
// all requests; implementations hold no per-request state.
type Strategy interface {
	// CheckLimit counts the request against the window and reports whether
	// it is within the plan's ceiling. Errors mean the backing store could
	// not be reached; the caller decides what that implies.
	CheckLimit(ctx context.Context, userID string, tier plans.Tier, window plans.Window) (bool, error)

	// Info re-reads the counter to expose limit/remaining/reset metadata.
	// It is a separate round-trip from CheckLimit and may observe a counter
	// already advanced by a concurrent request.
	Info(ctx context.Context, userID string, tier plans.Tier, window plans.Window) (Info, error)

	Name() string

	Health(ctx context.Context) string
}

// CounterStore is the slice of the shared key-value service the strategies
// need: atomic counters with TTLs. storage.RedisClient satisfies it.
type CounterStore interface {
	Get(ctx context.Context, key string) (string, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Del(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
