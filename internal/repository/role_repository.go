package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolsite/portal-backend/internal/model"
)

// RoleRepository handles user_roles data access.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

const roleColumns = `id, user_id, role, approved, pending_approval, email, created_at`

func scanAssignments(rows pgx.Rows) ([]model.RoleAssignment, error) {
	var out []model.RoleAssignment
	for rows.Next() {
		var a model.RoleAssignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Role, &a.Approved, &a.PendingApproval, &a.Email, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ApprovedRoles returns the raw role strings of approved rows for a user.
// Unknown values are returned as-is for the caller to validate.
func (r *RoleRepository) ApprovedRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1 AND approved = TRUE ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// ListByUser returns every role row of a user.
func (r *RoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RoleAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM user_roles WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// ListAll returns every role row.
func (r *RoleRepository) ListAll(ctx context.Context) ([]model.RoleAssignment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM user_roles ORDER BY user_id, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// ListPending returns every unapproved role row.
func (r *RoleRepository) ListPending(ctx context.Context) ([]model.RoleAssignment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+roleColumns+` FROM user_roles WHERE approved = FALSE ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssignments(rows)
}

// PendingUserIDs returns the distinct principals holding at least one unapproved row.
func (r *RoleRepository) PendingUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM user_roles WHERE approved = FALSE
		 GROUP BY user_id ORDER BY MIN(created_at)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ApproveUser approves every pending row of one principal.
func (r *RoleRepository) ApproveUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_roles SET approved = TRUE, pending_approval = FALSE
		 WHERE user_id = $1 AND approved = FALSE`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Insert adds a role row and fills its ID and timestamp.
// The pending flag is always the complement of approved.
func (r *RoleRepository) Insert(ctx context.Context, a *model.RoleAssignment) error {
	a.PendingApproval = !a.Approved
	return r.pool.QueryRow(ctx,
		`INSERT INTO user_roles (user_id, role, approved, pending_approval, email)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		a.UserID, string(a.Role), a.Approved, a.PendingApproval, a.Email,
	).Scan(&a.ID, &a.CreatedAt)
}

// DeleteByUser removes every role row of a principal in a single statement.
func (r *RoleRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
