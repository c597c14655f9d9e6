package quota

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cvforge/gateway/internal/models"
	"github.com/cvforge/gateway/internal/plans"
)

// Service tracks monthly per-feature usage. It gates entry through
// CheckUserLimit; the protected operation itself calls IncrementUsage after
// it succeeds, so a failed upload or export never consumes quota.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// GetLimits returns the compiled limit tables for a plan.
func (s *Service) GetLimits(tier plans.Tier) plans.Limits {
	return plans.GetLimits(tier)
}

// GetUserUsage loads the user's usage record, creating it on first access.
// If the stored reset date belongs to an earlier calendar month, counters
// are zeroed before the record is returned. Nothing resets mid-month.
func (s *Service) GetUserUsage(ctx context.Context, userID string) (*models.UsageRecord, error) {
	record, err := s.repo.Find(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if record == nil {
		record = &models.UsageRecord{
			UserID:    userID,
			Counters:  map[string]int{},
			ResetDate: now,
		}
		if err := s.repo.Create(ctx, record); err != nil {
			return nil, err
		}
		return record, nil
	}

	if record.StaleFor(now) {
		record.Counters = map[string]int{}
		record.ResetDate = now
		if err := s.repo.Save(ctx, record); err != nil {
			return nil, err
		}
	}

	return record, nil
}

// CheckUserLimit reports whether the user may perform one more use of the
// feature this month. A plan limit of plans.Unlimited always passes.
func (s *Service) CheckUserLimit(ctx context.Context, userID string, tier plans.Tier, feature plans.Feature) (bool, error) {
	limit := plans.QuotaLimit(tier, feature)
	if limit == plans.Unlimited {
		return true, nil
	}

	record, err := s.GetUserUsage(ctx, userID)
	if err != nil {
		return false, err
	}

	return record.Used(string(feature)) < limit, nil
}

// IncrementUsage records one successful use of a feature. Callers invoke it
// after the business operation completes, never before.
func (s *Service) IncrementUsage(ctx context.Context, userID string, feature plans.Feature) error {
	record, err := s.GetUserUsage(ctx, userID)
	if err != nil {
		return err
	}

	if record.Counters == nil {
		record.Counters = map[string]int{}
	}
	record.Counters[string(feature)]++

	return s.repo.Save(ctx, record)
}

// NextReset returns the instant the given record's counters become due for
// a reset: midnight UTC on the first day of the following month.
func NextReset(resetDate time.Time) time.Time {
	return time.Date(resetDate.Year(), resetDate.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}
