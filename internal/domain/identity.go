package domain

import "time"

// AuthRecord is one credential set in the external identity store.
// Emails are not unique at the store level: federated sign-ups can leave
// several records behind for the same address.
type AuthRecord struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// Profile is the internal application identity. AuthUserID is a weak
// back-reference to exactly one AuthRecord; an auth record no profile
// points at is orphaned.
type Profile struct {
	ID         string
	AuthUserID string
	CreatedAt  time.Time
}

// BusinessMembership relates a profile to a business. A profile may
// belong to any number of businesses.
type BusinessMembership struct {
	ID         string
	ProfileID  string
	BusinessID string
	CreatedAt  time.Time
}
