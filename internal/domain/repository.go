package domain

import "context"

// IdentityStore abstracts the external identity store's admin surface.
type IdentityStore interface {
	ListUsers(ctx context.Context) ([]AuthRecord, error)
	DeleteUser(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id, password string) error
}

// ProfileRepository looks up internal profiles.
type ProfileRepository interface {
	GetByAuthUserID(ctx context.Context, authUserID string) (*Profile, error)
}

// MembershipRepository resolves business membership for a profile.
type MembershipRepository interface {
	// FirstByProfileID returns one membership when the profile belongs to
	// several businesses; which one is unspecified.
	FirstByProfileID(ctx context.Context, profileID string) (*BusinessMembership, error)
}

// UpgradeRequestRepository persists upgrade requests.
type UpgradeRequestRepository interface {
	CreatePending(ctx context.Context, req *UpgradeRequest) error
	PendingByAuthUserID(ctx context.Context, authUserID string) (*UpgradeRequest, error)
	LatestByAuthUserID(ctx context.Context, authUserID string) (*UpgradeRequest, error)
	DeleteByReviewer(ctx context.Context, authUserID string) (int64, error)
}
