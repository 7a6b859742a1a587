// Package reconcile removes authentication records that no internal
// profile references.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
	"github.com/talgurevich/hitquote-accounts/internal/infra"
	"github.com/talgurevich/hitquote-accounts/internal/obs"
)

// Result reports what one reconciliation pass did.
type Result struct {
	// Matched counts auth records whose email equals the input.
	Matched int
	// Orphans counts matched records with no profile reference.
	Orphans int
	// DeletedIDs lists the records actually removed; a failed deletion
	// keeps its id out of this list but never aborts the pass.
	DeletedIDs []string
}

// Service classifies and deletes orphaned auth records.
type Service struct {
	ids      domain.IdentityStore
	profiles domain.ProfileRepository
	requests domain.UpgradeRequestRepository
	logger   infra.Logger
}

// NewService creates a reconciler.
func NewService(ids domain.IdentityStore, profiles domain.ProfileRepository, requests domain.UpgradeRequestRepository, logger infra.Logger) *Service {
	return &Service{ids: ids, profiles: profiles, requests: requests, logger: logger}
}

// Reconcile finds every auth record for the email (case-sensitive exact
// match; the store has no email lookup), classifies each as orphaned or
// linked, and deletes the orphans. Safe to re-run: a clean email is a
// no-op.
func (s *Service) Reconcile(ctx context.Context, email string) (*Result, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required: %w", domain.ErrInvalidArgument)
	}

	records, err := s.ids.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list auth records: %w", err)
	}

	var matched []domain.AuthRecord
	for _, rec := range records {
		if rec.Email == email {
			matched = append(matched, rec)
		}
	}

	result := &Result{Matched: len(matched)}
	if len(matched) == 0 {
		return result, nil
	}

	var orphans []domain.AuthRecord
	for _, rec := range matched {
		_, err := s.profiles.GetByAuthUserID(ctx, rec.ID)
		switch {
		case err == nil:
			// Linked; never touched.
		case errors.Is(err, domain.ErrNotFound):
			orphans = append(orphans, rec)
		default:
			// A failed lookup must not become a false orphan. Err toward
			// keeping the record.
			s.logger.Warn().Err(err).Str("auth_user_id", rec.ID).Msg("profile lookup failed, keeping record")
		}
	}

	result.Orphans = len(orphans)
	if len(orphans) == 0 {
		return result, nil
	}

	for _, rec := range orphans {
		// Requests this record reviewed block its deletion; clean them
		// first. On failure the parent delete is still attempted.
		if _, err := s.requests.DeleteByReviewer(ctx, rec.ID); err != nil {
			s.logger.Error().Err(err).Str("auth_user_id", rec.ID).Msg("dependent request cleanup failed")
		}

		if err := s.ids.DeleteUser(ctx, rec.ID); err != nil {
			s.logger.Error().Err(err).Str("auth_user_id", rec.ID).Msg("orphan deletion failed")
			continue
		}
		result.DeletedIDs = append(result.DeletedIDs, rec.ID)
	}

	if n := len(result.DeletedIDs); n > 0 {
		obs.OrphansDeleted(n)
		s.logger.Info().Int("deleted", n).Int("orphans", result.Orphans).Msg("orphan reconciliation finished")
	}

	return result, nil
}
