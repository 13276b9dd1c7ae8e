package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolsite/portal-backend/internal/model"
)

// AuditRepository handles audit_logs.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// InsertBatch bulk-loads entries with COPY.
func (r *AuditRepository) InsertBatch(ctx context.Context, entries []model.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([][]interface{}, len(entries))
	for i, e := range entries {
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		var detail []byte
		if len(e.Detail) > 0 {
			detail = e.Detail
		}
		rows[i] = []interface{}{e.ActorID, string(e.Action), e.Target, detail, createdAt}
	}
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"audit_logs"},
		[]string{"actor_id", "action", "target", "detail", "created_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// List returns a page of entries, newest first.
func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]model.AuditEntry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, actor_id, action, target, detail, created_at
		 FROM audit_logs ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []model.AuditEntry
	for rows.Next() {
		var (
			e      model.AuditEntry
			action string
			detail []byte
		)
		if err := rows.Scan(&e.ID, &e.ActorID, &action, &e.Target, &detail, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.Action = model.AuditAction(action)
		e.Detail = detail
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}
