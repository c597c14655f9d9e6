package models

import (
	"time"
)

// UsageRecord tracks monthly per-feature consumption for one user. It is
// created lazily on first access and its counters are zeroed the first time
// it is read in a new calendar month; there is no background scheduler.
type UsageRecord struct {
	UserID    string         `gorm:"primaryKey" json:"user_id"`
	Counters  map[string]int `gorm:"serializer:json" json:"counters"`
	ResetDate time.Time      `gorm:"not null" json:"reset_date"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}

// Used returns the counter for a feature, zero when never incremented.
func (u *UsageRecord) Used(feature string) int {
	if u.Counters == nil {
		return 0
	}
	return u.Counters[feature]
}

// StaleFor reports whether the record belongs to an earlier calendar month
// than now and is due for a lazy reset.
func (u *UsageRecord) StaleFor(now time.Time) bool {
	return u.ResetDate.Year() != now.Year() || u.ResetDate.Month() != now.Month()
}
