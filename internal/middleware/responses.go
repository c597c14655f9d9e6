package middleware

import (
	"time"

	"github.com/cvforge/gateway/internal/plans"
)

// ThrottledResponse is the 429 body. It reaches clients verbatim; nothing
// upstream rewraps it.
type ThrottledResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
	Limit      int    `json:"limit"`
	Remaining  int    `json:"remaining"`
}

// UsageInfo summarizes how much of a monthly feature quota is consumed.
type UsageInfo struct {
	Feature  string    `json:"feature"`
	Used     int       `json:"used"`
	Limit    int       `json:"limit"`
	ResetsAt time.Time `json:"resetsAt"`
}

// QuotaExceededResponse is the 403 body, including the upgrade path the
// client can surface to the user.
type QuotaExceededResponse struct {
	StatusCode int           `json:"statusCode"`
	Message    string        `json:"message"`
	Error      string        `json:"error"`
	Usage      UsageInfo     `json:"usage"`
	Upgrade    plans.Upgrade `json:"upgrade"`
}
