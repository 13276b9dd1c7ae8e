package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolsite/portal-backend/internal/database"
	"github.com/schoolsite/portal-backend/internal/model"
)

// PermissionRepository handles user_permissions data access.
type PermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository creates a new PermissionRepository.
func NewPermissionRepository(pool *pgxpool.Pool) *PermissionRepository {
	return &PermissionRepository{pool: pool}
}

// GrantedNames returns the raw permission names granted to a user.
func (r *PermissionRepository) GrantedNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT permission_name FROM user_permissions
		 WHERE user_id = $1 AND granted = TRUE ORDER BY permission_name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListAll returns every stored grant row whose name is a known permission.
func (r *PermissionRepository) ListAll(ctx context.Context) ([]model.PermissionGrant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, permission_name, granted, updated_at FROM user_permissions
		 WHERE permission_name = ANY($1)
		 ORDER BY user_id, permission_name`, knownPermissionNames())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grants []model.PermissionGrant
	for rows.Next() {
		var g model.PermissionGrant
		if err := rows.Scan(&g.UserID, &g.Permission, &g.Granted, &g.UpdatedAt); err != nil {
			return nil, err
		}
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

// UpsertMany writes every grant keyed on (user_id, permission_name) inside one
// transaction. Any failure rolls back the whole set.
func (r *PermissionRepository) UpsertMany(ctx context.Context, grants []model.PermissionGrant) error {
	if len(grants) == 0 {
		return nil
	}
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, g := range grants {
			batch.Queue(
				`INSERT INTO user_permissions (user_id, permission_name, granted)
				 VALUES ($1, $2, $3)
				 ON CONFLICT (user_id, permission_name) DO UPDATE
				 SET granted = EXCLUDED.granted, updated_at = NOW()`,
				g.UserID, string(g.Permission), g.Granted,
			)
		}

		br := tx.SendBatch(ctx, batch)
		for i := range grants {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("upsert %s/%s: %w", grants[i].UserID, grants[i].Permission, err)
			}
		}
		return br.Close()
	})
}

func knownPermissionNames() []string {
	names := make([]string, len(model.AllPermissions))
	for i, p := range model.AllPermissions {
		names[i] = string(p)
	}
	return names
}
