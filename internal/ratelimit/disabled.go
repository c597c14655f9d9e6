package ratelimit

import (
	"context"

	"github.com/cvforge/gateway/internal/plans"
)

// Disabled admits everything. It is the safe fallback for unrecognized
// configuration as well as the explicit off switch.
type Disabled struct{}

func NewDisabled() *Disabled {
	return &Disabled{}
}

func (s *Disabled) CheckLimit(ctx context.Context, userID string, tier plans.Tier, window plans.Window) (bool, error) {
	return true, nil
}

func (s *Disabled) Info(ctx context.Context, userID string, tier plans.Tier, window plans.Window) (Info, error) {
	return Info{Limit: plans.Unlimited, Remaining: plans.Unlimited, ResetAt: 0}, nil
}

func (s *Disabled) Name() string {
	return "disabled"
}

func (s *Disabled) Health(ctx context.Context) string {
	return HealthDisabled
}
