package ratelimit

import (
	"context"

	"go.uber.org/zap"

	"github.com/cvforge/gateway/internal/plans"
)

// Delegated defers enforcement to an edge or gateway provider that throttles
// traffic before it reaches this process. It is the extension point for a
// provider integration; without one wired in, every request is admitted and
// the full plan limit is reported as available.
type Delegated struct {
	provider string
}

func NewDelegated(provider string, logger *zap.Logger) *Delegated {
	if provider == "" {
		logger.Warn("delegated rate limiting selected without a provider; no enforcement happens in-process")
	}
	return &Delegated{provider: provider}
}

func (s *Delegated) CheckLimit(ctx context.Context, userID string, tier plans.Tier, window plans.Window) (bool, error) {
	return true, nil
}

func (s *Delegated) Info(ctx context.Context, userID string, tier plans.Tier, window plans.Window) (Info, error) {
	limit := plans.RateLimit(tier, window)
	return Info{Limit: limit, Remaining: limit, ResetAt: 0}, nil
}

func (s *Delegated) Name() string {
	return "delegated"
}

func (s *Delegated) Provider() string {
	return s.provider
}

func (s *Delegated) Health(ctx context.Context) string {
	// Enforcement happens at the edge; this process cannot observe it.
	return HealthUnknown
}
