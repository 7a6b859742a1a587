// Package link bridges federated logins to the password auth record.
package link

import (
	"context"
	"fmt"
	"strings"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
	"github.com/talgurevich/hitquote-accounts/internal/infra"
)

// Service installs a deterministic derived secret as the auth record's
// password so a federated account can later sign in via the password flow.
type Service struct {
	ids    domain.IdentityStore
	logger infra.Logger
}

// NewService creates a linker.
func NewService(ids domain.IdentityStore, logger infra.Logger) *Service {
	return &Service{ids: ids, logger: logger}
}

// Link finds the auth record for the email and sets its password to the
// derived secret. Idempotent: the same inputs always derive the same
// secret, so repeated calls leave the record unchanged. Returns the auth
// record id; the secret itself is never returned or logged.
func (s *Service) Link(ctx context.Context, email, providerSubjectID string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("email is required: %w", domain.ErrInvalidArgument)
	}
	if providerSubjectID == "" {
		return "", fmt.Errorf("provider subject id is required: %w", domain.ErrInvalidArgument)
	}

	records, err := s.ids.ListUsers(ctx)
	if err != nil {
		return "", fmt.Errorf("list auth records: %w", err)
	}

	var record *domain.AuthRecord
	for i := range records {
		if records[i].Email == email {
			record = &records[i]
			break
		}
	}
	if record == nil {
		return "", fmt.Errorf("no auth record for email: %w", domain.ErrNotFound)
	}

	secret := DeriveSecret(providerSubjectID, email)
	if err := s.ids.UpdatePassword(ctx, record.ID, secret); err != nil {
		return "", fmt.Errorf("install derived password: %w", err)
	}

	s.logger.Info().Str("auth_user_id", record.ID).Msg("federated identity linked")
	return record.ID, nil
}

// DeriveSecret composes the password-equivalent credential from the
// federated subject id and the email stripped of everything outside
// [A-Za-z0-9]. The subject id is only known to whoever controls the
// federated account, which is what keeps the result unguessable; treat
// the output with the same secrecy as any password.
func DeriveSecret(providerSubjectID, email string) string {
	var b strings.Builder
	b.Grow(len(providerSubjectID) + len(email))
	b.WriteString(providerSubjectID)
	for _, r := range email {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
