package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cvforge/gateway/internal/middleware"
	"github.com/cvforge/gateway/internal/quota"
	"github.com/cvforge/gateway/internal/ratelimit"
)

// LimitsHandler exposes the admission layer itself: which strategy is
// active, whether its store is reachable, and what the caller has consumed.
type LimitsHandler struct {
	strategy ratelimit.Strategy
	enabled  bool
	quota    *quota.Service
}

func NewLimitsHandler(strategy ratelimit.Strategy, enabled bool, quotaService *quota.Service) *LimitsHandler {
	return &LimitsHandler{
		strategy: strategy,
		enabled:  enabled,
		quota:    quotaService,
	}
}

func (h *LimitsHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"strategy":  h.strategy.Name(),
		"enabled":   h.enabled,
		"health":    h.strategy.Health(c.Request.Context()),
		"timestamp": time.Now().Unix(),
	})
}

func (h *LimitsHandler) Usage(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	record, err := h.quota.GetUserUsage(c.Request.Context(), identity.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load usage"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plan":      identity.Plan,
		"usage":     record.Counters,
		"limits":    h.quota.GetLimits(identity.Plan).Quota,
		"resets_at": quota.NextReset(record.ResetDate),
	})
}
