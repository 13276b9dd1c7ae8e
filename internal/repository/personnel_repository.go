package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolsite/portal-backend/internal/model"
)

// PersonnelRepository handles the staff directory.
type PersonnelRepository struct {
	pool *pgxpool.Pool
}

// NewPersonnelRepository creates a new PersonnelRepository.
func NewPersonnelRepository(pool *pgxpool.Pool) *PersonnelRepository {
	return &PersonnelRepository{pool: pool}
}

const personnelColumns = `id, full_name, position, department, subject_group, phone, email, photo_url, sort_order, created_at, updated_at`

func scanPersonnel(row interface{ Scan(dest ...any) error }) (*model.Personnel, error) {
	p := &model.Personnel{}
	err := row.Scan(&p.ID, &p.FullName, &p.Position, &p.Department, &p.SubjectGroup,
		&p.Phone, &p.Email, &p.PhotoURL, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List returns the directory grouped by department, then sort order.
func (r *PersonnelRepository) List(ctx context.Context, department string) ([]model.Personnel, error) {
	query := `SELECT ` + personnelColumns + ` FROM personnel`
	var args []interface{}
	if department != "" {
		query += ` WHERE department = $1`
		args = append(args, department)
	}
	query += ` ORDER BY department, sort_order, full_name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Personnel
	for rows.Next() {
		p, err := scanPersonnel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// GetByID retrieves one entry.
func (r *PersonnelRepository) GetByID(ctx context.Context, id int64) (*model.Personnel, error) {
	p, err := scanPersonnel(r.pool.QueryRow(ctx, `SELECT `+personnelColumns+` FROM personnel WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// Create inserts an entry.
func (r *PersonnelRepository) Create(ctx context.Context, req *model.PersonnelRequest) (*model.Personnel, error) {
	return scanPersonnel(r.pool.QueryRow(ctx,
		`INSERT INTO personnel (full_name, position, department, subject_group, phone, email, photo_url, sort_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+personnelColumns,
		req.FullName, req.Position, req.Department, req.SubjectGroup, req.Phone, req.Email, req.PhotoURL, req.SortOrder,
	))
}

// Update replaces an entry.
func (r *PersonnelRepository) Update(ctx context.Context, id int64, req *model.PersonnelRequest) (*model.Personnel, error) {
	p, err := scanPersonnel(r.pool.QueryRow(ctx,
		`UPDATE personnel
		 SET full_name = $2, position = $3, department = $4, subject_group = $5,
		     phone = $6, email = $7, photo_url = $8, sort_order = $9, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+personnelColumns,
		id, req.FullName, req.Position, req.Department, req.SubjectGroup, req.Phone, req.Email, req.PhotoURL, req.SortOrder,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// Delete removes an entry.
func (r *PersonnelRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM personnel WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
