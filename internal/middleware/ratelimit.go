package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cvforge/gateway/internal/metrics"
	"github.com/cvforge/gateway/internal/plans"
	"github.com/cvforge/gateway/internal/ratelimit"
)

// RatePolicy is attached to a route at registration time. Routes without a
// policy simply do not get this middleware, so they carry no rate-limit
// headers and make no store calls. Limits themselves come from the per-plan
// tables; the policy only selects the window the route is measured over.
type RatePolicy struct {
	Window plans.Window
}

// decision is the tri-state outcome of a guard check. unknown means the
// backing store could not answer; policy maps it to allowed.
type decision int

const (
	decisionAllowed decision = iota
	decisionDenied
	decisionUnknown
)

// RateLimit enforces the per-plan request ceiling for one window. The two
// strategy calls are independent round-trips, so the remaining value in the
// headers can lag the decision under concurrency; that is accepted.
func RateLimit(strategy ratelimit.Strategy, policy RatePolicy, m *metrics.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			// Anonymous traffic is governed upstream, not here.
			c.Next()
			return
		}

		ctx := c.Request.Context()

		state := decisionAllowed
		var info ratelimit.Info

		allowed, err := strategy.CheckLimit(ctx, identity.UserID, identity.Plan, policy.Window)
		if err == nil {
			info, err = strategy.Info(ctx, identity.UserID, identity.Plan, policy.Window)
		}

		switch {
		case err != nil:
			state = decisionUnknown
		case !allowed:
			state = decisionDenied
		}

		if state != decisionUnknown {
			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
			c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetAt))
		}

		switch state {
		case decisionUnknown:
			// Fail-open: a store outage must never become a 5xx here.
			logger.Error("rate limit check failed, admitting request",
				zap.String("user_id", identity.UserID),
				zap.String("window", string(policy.Window)),
				zap.Error(err),
			)
			m.IncrementFailOpen("rate_limit")
			c.Next()

		case decisionDenied:
			retryAfter := retryAfterSeconds(info.ResetAt, time.Now())
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			m.IncrementDenied("rate_limit")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ThrottledResponse{
				StatusCode: http.StatusTooManyRequests,
				Message:    "Too many requests",
				Error:      "ThrottlerException",
				RetryAfter: retryAfter,
				Limit:      info.Limit,
				Remaining:  0,
			})

		default:
			m.IncrementAllowed("rate_limit")
			c.Next()
		}
	}
}

// retryAfterSeconds rounds up so a client that waits the advertised time
// always lands past the window reset.
func retryAfterSeconds(resetAt int64, now time.Time) int {
	delta := resetAt - now.UnixMilli()
	if delta <= 0 {
		return 0
	}
	return int((delta + 999) / 1000)
}
