package plans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowDuration(t *testing.T) {
	assert.Equal(t, time.Minute, WindowMinute.Duration())
	assert.Equal(t, time.Hour, WindowHour.Duration())
	assert.Equal(t, int64(60), WindowMinute.Seconds())
	assert.Equal(t, int64(3600), WindowHour.Seconds())
}

func TestRateLimitPerTier(t *testing.T) {
	assert.Equal(t, 10, RateLimit(TierFree, WindowMinute))
	assert.Equal(t, 100, RateLimit(TierFree, WindowHour))
	assert.Equal(t, 60, RateLimit(TierPro, WindowMinute))
	assert.Equal(t, 300, RateLimit(TierEnterprise, WindowMinute))
}

func TestQuotaLimitPerTier(t *testing.T) {
	assert.Equal(t, 1, QuotaLimit(TierFree, FeatureCVUploads))
	assert.Equal(t, 3, QuotaLimit(TierFree, FeatureExports))
	assert.Equal(t, 10, QuotaLimit(TierPro, FeatureCVUploads))
	assert.Equal(t, Unlimited, QuotaLimit(TierEnterprise, FeatureCVUploads))
	assert.Equal(t, Unlimited, QuotaLimit(TierEnterprise, FeaturePortfolios))
}

func TestUnknownTierFallsBackToFree(t *testing.T) {
	assert.Equal(t, GetLimits(TierFree), GetLimits(Tier("mystery")))
	assert.Equal(t, 10, RateLimit(Tier("mystery"), WindowMinute))
}

func TestUnknownFeatureHasNoAllowance(t *testing.T) {
	assert.Equal(t, 0, QuotaLimit(TierFree, Feature("time_travel")))
}

func TestUpgradePath(t *testing.T) {
	free := UpgradeFor(TierFree)
	assert.True(t, free.Available)
	assert.Equal(t, "pro", free.Plan)
	assert.NotEmpty(t, free.Price)

	pro := UpgradeFor(TierPro)
	assert.True(t, pro.Available)
	assert.Equal(t, "enterprise", pro.Plan)

	enterprise := UpgradeFor(TierEnterprise)
	assert.False(t, enterprise.Available)
	assert.Empty(t, enterprise.Plan)
}
