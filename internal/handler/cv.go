package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cvforge/gateway/internal/middleware"
	"github.com/cvforge/gateway/internal/plans"
	"github.com/cvforge/gateway/internal/quota"
)

// CVHandler fronts the protected business operations. The real document
// parsing, tailoring and rendering live in the business services; these
// handlers own the one admission-relevant responsibility: incrementing the
// feature counter only after the operation has succeeded.
type CVHandler struct {
	quota  *quota.Service
	logger *zap.Logger
}

func NewCVHandler(quotaService *quota.Service, logger *zap.Logger) *CVHandler {
	return &CVHandler{
		quota:  quotaService,
		logger: logger,
	}
}

func (h *CVHandler) Upload(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	cvID := uuid.New()

	h.recordUsage(c, identity.UserID, plans.FeatureCVUploads)

	c.JSON(http.StatusCreated, gin.H{
		"id":     cvID,
		"status": "uploaded",
	})
}

func (h *CVHandler) Export(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	h.recordUsage(c, identity.UserID, plans.FeatureExports)

	c.JSON(http.StatusOK, gin.H{
		"id":     c.Param("id"),
		"format": c.DefaultQuery("format", "pdf"),
		"status": "exported",
	})
}

func (h *CVHandler) Tailor(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	h.recordUsage(c, identity.UserID, plans.FeatureTailoring)

	c.JSON(http.StatusOK, gin.H{
		"id":     c.Param("id"),
		"status": "tailored",
	})
}

func (h *CVHandler) PublishPortfolio(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	h.recordUsage(c, identity.UserID, plans.FeaturePortfolios)

	c.JSON(http.StatusOK, gin.H{
		"status": "published",
	})
}

// recordUsage runs after the operation succeeded. A failed write here is an
// accounting loss, not a reason to fail the response the user already earned.
func (h *CVHandler) recordUsage(c *gin.Context, userID string, feature plans.Feature) {
	if err := h.quota.IncrementUsage(c.Request.Context(), userID, feature); err != nil {
		h.logger.Error("failed to record feature usage",
			zap.String("user_id", userID),
			zap.String("feature", string(feature)),
			zap.Error(err),
		)
	}
}
