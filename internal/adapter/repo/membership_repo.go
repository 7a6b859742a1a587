package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
)

// MembershipRepositoryPG implements domain.MembershipRepository backed by PostgreSQL.
type MembershipRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepositoryPG.
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepositoryPG {
	return &MembershipRepositoryPG{pool: pool}
}

// FirstByProfileID returns one membership for the profile. Which row wins
// for multi-business profiles is unspecified; no ORDER BY on purpose.
func (r *MembershipRepositoryPG) FirstByProfileID(ctx context.Context, profileID string) (*domain.BusinessMembership, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, profile_id, business_id, created_at FROM business_members WHERE profile_id = $1 LIMIT 1`, profileID)

	var m domain.BusinessMembership
	if err := row.Scan(&m.ID, &m.ProfileID, &m.BusinessID, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
