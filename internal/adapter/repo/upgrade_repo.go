package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talgurevich/hitquote-accounts/internal/domain"
)

const uniqueViolation = "23505"

const upgradeColumns = `id, auth_user_id, business_id, user_email, user_name, requested_plan, status, admin_notes, reviewed_by, created_at`

// UpgradeRequestRepositoryPG implements domain.UpgradeRequestRepository backed by PostgreSQL.
type UpgradeRequestRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUpgradeRequestRepository creates a new UpgradeRequestRepositoryPG.
func NewUpgradeRequestRepository(pool *pgxpool.Pool) *UpgradeRequestRepositoryPG {
	return &UpgradeRequestRepositoryPG{pool: pool}
}

// CreatePending inserts a new pending request. The partial unique index
// on (auth_user_id) WHERE status='pending' rejects concurrent duplicates;
// that rejection surfaces as domain.ErrDuplicatePending.
func (r *UpgradeRequestRepositoryPG) CreatePending(ctx context.Context, req *domain.UpgradeRequest) error {
	query := `
INSERT INTO upgrade_requests (id, auth_user_id, business_id, user_email, user_name, requested_plan, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at;
`

	row := r.pool.QueryRow(ctx, query,
		req.ID,
		req.AuthUserID,
		req.BusinessID,
		req.UserEmail,
		req.UserName,
		req.RequestedPlan,
		req.Status,
	)

	if err := row.Scan(&req.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicatePending
		}
		return err
	}
	return nil
}

// PendingByAuthUserID fetches the pending request for a user, if any.
func (r *UpgradeRequestRepositoryPG) PendingByAuthUserID(ctx context.Context, authUserID string) (*domain.UpgradeRequest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+upgradeColumns+` FROM upgrade_requests WHERE auth_user_id = $1 AND status = 'pending' LIMIT 1`, authUserID)
	return scanUpgradeRequest(row)
}

// LatestByAuthUserID fetches the most recently created request for a user,
// whatever state the reviewer left it in.
func (r *UpgradeRequestRepositoryPG) LatestByAuthUserID(ctx context.Context, authUserID string) (*domain.UpgradeRequest, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+upgradeColumns+` FROM upgrade_requests WHERE auth_user_id = $1 ORDER BY created_at DESC LIMIT 1`, authUserID)
	return scanUpgradeRequest(row)
}

// DeleteByReviewer removes requests reviewed by the given auth record.
// Used during orphan cleanup to satisfy the reviewed_by reference before
// the auth record itself is deleted.
func (r *UpgradeRequestRepositoryPG) DeleteByReviewer(ctx context.Context, authUserID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM upgrade_requests WHERE reviewed_by = $1`, authUserID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanUpgradeRequest(row pgx.Row) (*domain.UpgradeRequest, error) {
	var req domain.UpgradeRequest
	if err := row.Scan(
		&req.ID,
		&req.AuthUserID,
		&req.BusinessID,
		&req.UserEmail,
		&req.UserName,
		&req.RequestedPlan,
		&req.Status,
		&req.AdminNotes,
		&req.ReviewedBy,
		&req.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &req, nil
}
