package domain

import "time"

// UpgradeStatus enumerates upgrade request states.
type UpgradeStatus string

const (
	UpgradeStatusPending  UpgradeStatus = "pending"
	UpgradeStatusApproved UpgradeStatus = "approved"
	UpgradeStatusDenied   UpgradeStatus = "denied"
)

// DefaultRequestedPlan is used when a submission carries no plan.
const DefaultRequestedPlan = "premium"

// UpgradeRequest represents one request to change plan tier. Terminal
// states are written by an external reviewer; this service only creates
// pending rows and reads whatever state the reviewer left behind.
type UpgradeRequest struct {
	ID            string
	AuthUserID    string
	BusinessID    *string
	UserEmail     string
	UserName      string
	RequestedPlan string
	Status        UpgradeStatus
	AdminNotes    *string
	ReviewedBy    *string
	CreatedAt     time.Time
}

// IsPending reports whether the request still awaits review.
func (r UpgradeRequest) IsPending() bool {
	return r.Status == UpgradeStatusPending
}
