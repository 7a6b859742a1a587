package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
)

// ProfileRepositoryPG implements domain.ProfileRepository backed by PostgreSQL.
type ProfileRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepositoryPG.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepositoryPG {
	return &ProfileRepositoryPG{pool: pool}
}

// GetByAuthUserID fetches the profile referencing an auth record.
func (r *ProfileRepositoryPG) GetByAuthUserID(ctx context.Context, authUserID string) (*domain.Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, auth_user_id, created_at FROM profiles WHERE auth_user_id = $1`, authUserID)

	var p domain.Profile
	if err := row.Scan(&p.ID, &p.AuthUserID, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
