package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cvforge/gateway/internal/metrics"
	"github.com/cvforge/gateway/internal/models"
	"github.com/cvforge/gateway/internal/plans"
	"github.com/cvforge/gateway/internal/quota"
)

// QuotaService is the slice of the usage service this guard consumes.
type QuotaService interface {
	CheckUserLimit(ctx context.Context, userID string, tier plans.Tier, feature plans.Feature) (bool, error)
	GetUserUsage(ctx context.Context, userID string) (*models.UsageRecord, error)
}

// Quota gates entry to a feature against the caller's monthly allowance.
// It never increments anything: the protected operation records its own
// usage once it has actually succeeded.
func Quota(svc QuotaService, feature plans.Feature, m *metrics.Metrics, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		state := decisionAllowed
		allowed, err := svc.CheckUserLimit(ctx, identity.UserID, identity.Plan, feature)

		var record *models.UsageRecord
		switch {
		case err != nil:
			state = decisionUnknown
		case !allowed:
			state = decisionDenied
			record, err = svc.GetUserUsage(ctx, identity.UserID)
			if err != nil || record == nil {
				state = decisionUnknown
			}
		}

		switch state {
		case decisionUnknown:
			logger.Error("quota check failed, admitting request",
				zap.String("user_id", identity.UserID),
				zap.String("feature", string(feature)),
				zap.Error(err),
			)
			m.IncrementFailOpen("quota")
			c.Next()

		case decisionDenied:
			m.IncrementDenied("quota")
			c.AbortWithStatusJSON(http.StatusForbidden, QuotaExceededResponse{
				StatusCode: http.StatusForbidden,
				Message:    fmt.Sprintf("Monthly %s limit reached", feature),
				Error:      "ForbiddenException",
				Usage: UsageInfo{
					Feature:  string(feature),
					Used:     record.Used(string(feature)),
					Limit:    plans.QuotaLimit(identity.Plan, feature),
					ResetsAt: quota.NextReset(record.ResetDate),
				},
				Upgrade: plans.UpgradeFor(identity.Plan),
			})

		default:
			m.IncrementAllowed("quota")
			c.Next()
		}
	}
}
