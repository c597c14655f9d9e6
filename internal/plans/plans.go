package plans

import "time"

// Unlimited marks a limit with no ceiling.
const Unlimited = -1

type Window string

const (
	WindowMinute Window = "minute"
	WindowHour   Window = "hour"
)

func (w Window) Duration() time.Duration {
	switch w {
	case WindowHour:
		return time.Hour
	default:
		return time.Minute
	}
}

func (w Window) Seconds() int64 {
	return int64(w.Duration().Seconds())
}

type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

type Feature string

const (
	FeatureCVUploads  Feature = "cv_uploads"
	FeatureExports    Feature = "exports"
	FeatureTailoring  Feature = "tailoring"
	FeaturePortfolios Feature = "portfolios"
)

// Limits holds the compiled limit tables for one plan tier: request rate
// per window and monthly quota per feature.
type Limits struct {
	Rate  map[Window]int  `json:"rate"`
	Quota map[Feature]int `json:"quota"`
}

var tierLimits = map[Tier]Limits{
	TierFree: {
		Rate: map[Window]int{
			WindowMinute: 10,
			WindowHour:   100,
		},
		Quota: map[Feature]int{
			FeatureCVUploads:  1,
			FeatureExports:    3,
			FeatureTailoring:  3,
			FeaturePortfolios: 1,
		},
	},
	TierPro: {
		Rate: map[Window]int{
			WindowMinute: 60,
			WindowHour:   1000,
		},
		Quota: map[Feature]int{
			FeatureCVUploads:  10,
			FeatureExports:    50,
			FeatureTailoring:  30,
			FeaturePortfolios: 5,
		},
	},
	TierEnterprise: {
		Rate: map[Window]int{
			WindowMinute: 300,
			WindowHour:   10000,
		},
		Quota: map[Feature]int{
			FeatureCVUploads:  Unlimited,
			FeatureExports:    Unlimited,
			FeatureTailoring:  Unlimited,
			FeaturePortfolios: Unlimited,
		},
	},
}

// GetLimits returns the limit tables for a tier. Unknown tiers fall back
// to the free tier.
func GetLimits(tier Tier) Limits {
	if limits, ok := tierLimits[tier]; ok {
		return limits
	}
	return tierLimits[TierFree]
}

// RateLimit returns the request ceiling for a tier and window.
func RateLimit(tier Tier, window Window) int {
	return GetLimits(tier).Rate[window]
}

// QuotaLimit returns the monthly ceiling for a tier and feature.
// Unlimited means no ceiling.
func QuotaLimit(tier Tier, feature Feature) int {
	limit, ok := GetLimits(tier).Quota[feature]
	if !ok {
		return 0
	}
	return limit
}

// Upgrade describes the next plan a user can move to when they hit a quota.
type Upgrade struct {
	Available bool   `json:"available"`
	Plan      string `json:"plan,omitempty"`
	Price     string `json:"price,omitempty"`
}

// UpgradeFor returns the upgrade suggestion for a tier.
func UpgradeFor(tier Tier) Upgrade {
	switch tier {
	case TierFree:
		return Upgrade{Available: true, Plan: string(TierPro), Price: "$12/month"}
	case TierPro:
		return Upgrade{Available: true, Plan: string(TierEnterprise), Price: "$49/month"}
	default:
		return Upgrade{Available: false}
	}
}
