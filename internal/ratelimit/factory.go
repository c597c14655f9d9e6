package ratelimit

import (
	"go.uber.org/zap"

	"github.com/cvforge/gateway/internal/config"
)

const (
	BackendRedis     = "redis"
	BackendDelegated = "delegated"
	BackendDisabled  = "disabled"
)

// NewStrategy resolves the single strategy instance for the process. A bad
// backend selector is a configuration mistake, not an outage: it logs a
// warning and falls back to the disabled strategy rather than crashing.
func NewStrategy(cfg config.RateLimitConfig, store CounterStore, logger *zap.Logger) Strategy {
	if !cfg.Enabled {
		return NewDisabled()
	}

	switch cfg.Backend {
	case BackendRedis:
		return NewRedisBacked(store, logger)
	case BackendDelegated:
		return NewDelegated(cfg.Provider, logger)
	case BackendDisabled:
		return NewDisabled()
	default:
		logger.Warn("unrecognized rate limit backend, falling back to disabled",
			zap.String("backend", cfg.Backend),
		)
		return NewDisabled()
	}
}
