// Package upgrade implements the plan upgrade request workflow: at most
// one pending request per auth user, with a fire-and-forget notification.
package upgrade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
	"github.com/talgurevich/hitquote-accounts/internal/infra"
	"github.com/talgurevich/hitquote-accounts/internal/notify"
)

// Dispatcher is the non-blocking notification entry point.
type Dispatcher interface {
	Enqueue(ev notify.Event)
}

// SubmitInput carries one submission.
type SubmitInput struct {
	AuthUserID    string
	Email         string
	DisplayName   string
	RequestedPlan string
}

// Service is the upgrade workflow engine.
type Service struct {
	profiles    domain.ProfileRepository
	memberships domain.MembershipRepository
	requests    domain.UpgradeRequestRepository
	dispatcher  Dispatcher
	logger      infra.Logger
}

// NewService creates the engine.
func NewService(
	profiles domain.ProfileRepository,
	memberships domain.MembershipRepository,
	requests domain.UpgradeRequestRepository,
	dispatcher Dispatcher,
	logger infra.Logger,
) *Service {
	return &Service{
		profiles:    profiles,
		memberships: memberships,
		requests:    requests,
		dispatcher:  dispatcher,
		logger:      logger,
	}
}

// Submit creates a pending upgrade request. When one is already pending
// for the user it returns *domain.ConflictError with the existing id and
// creates nothing. The pending-row uniqueness constraint in the store is
// the authoritative close of the check-then-insert race; a constraint
// violation on insert is treated as the same conflict.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*domain.UpgradeRequest, error) {
	if in.AuthUserID == "" {
		return nil, fmt.Errorf("authUserId is required: %w", domain.ErrInvalidArgument)
	}
	if in.Email == "" {
		return nil, fmt.Errorf("email is required: %w", domain.ErrInvalidArgument)
	}

	businessID := s.resolveBusiness(ctx, in.AuthUserID)

	existing, err := s.requests.PendingByAuthUserID(ctx, in.AuthUserID)
	switch {
	case err == nil:
		return nil, &domain.ConflictError{ExistingID: existing.ID}
	case errors.Is(err, domain.ErrNotFound):
		// No pending request; proceed.
	default:
		return nil, fmt.Errorf("find pending request: %w", err)
	}

	req := &domain.UpgradeRequest{
		ID:            uuid.NewString(),
		AuthUserID:    in.AuthUserID,
		BusinessID:    businessID,
		UserEmail:     in.Email,
		UserName:      in.DisplayName,
		RequestedPlan: in.RequestedPlan,
		Status:        domain.UpgradeStatusPending,
	}
	if req.UserName == "" {
		req.UserName = in.Email
	}
	if req.RequestedPlan == "" {
		req.RequestedPlan = domain.DefaultRequestedPlan
	}

	if err := s.requests.CreatePending(ctx, req); err != nil {
		if errors.Is(err, domain.ErrDuplicatePending) {
			// Lost the race to a concurrent submission; report its id.
			if existing, lookupErr := s.requests.PendingByAuthUserID(ctx, in.AuthUserID); lookupErr == nil {
				return nil, &domain.ConflictError{ExistingID: existing.ID}
			}
			return nil, &domain.ConflictError{}
		}
		return nil, fmt.Errorf("create upgrade request: %w", err)
	}

	if s.dispatcher != nil {
		s.dispatcher.Enqueue(notify.Event{
			Email:         req.UserEmail,
			DisplayName:   req.UserName,
			RequestedPlan: req.RequestedPlan,
		})
	}

	s.logger.Info().
		Str("request_id", req.ID).
		Str("auth_user_id", req.AuthUserID).
		Str("plan", req.RequestedPlan).
		Msg("upgrade request submitted")

	return req, nil
}

// Status returns the most recently created request for the user, or nil
// when none exists. Terminal states written by the external reviewer show
// up here unchanged.
func (s *Service) Status(ctx context.Context, authUserID string) (*domain.UpgradeRequest, error) {
	if authUserID == "" {
		return nil, fmt.Errorf("authUserId is required: %w", domain.ErrInvalidArgument)
	}

	req, err := s.requests.LatestByAuthUserID(ctx, authUserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest request: %w", err)
	}
	return req, nil
}

// resolveBusiness finds the business the user belongs to via profile and
// first membership. Absence and lookup failure both resolve to nil; the
// request is valid without a business.
func (s *Service) resolveBusiness(ctx context.Context, authUserID string) *string {
	profile, err := s.profiles.GetByAuthUserID(ctx, authUserID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn().Err(err).Str("auth_user_id", authUserID).Msg("profile lookup failed, submitting without business")
		}
		return nil
	}

	membership, err := s.memberships.FirstByProfileID(ctx, profile.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("membership lookup failed, submitting without business")
		}
		return nil
	}
	return &membership.BusinessID
}
