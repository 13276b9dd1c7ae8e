package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolsite/portal-backend/internal/model"
)

// AdmissionRepository handles admission_applications.
type AdmissionRepository struct {
	pool *pgxpool.Pool
}

// NewAdmissionRepository creates a new AdmissionRepository.
func NewAdmissionRepository(pool *pgxpool.Pool) *AdmissionRepository {
	return &AdmissionRepository{pool: pool}
}

const admissionColumns = `id, student_name, grade_applied, guardian_name, phone, email, note, status, reviewed_by::text, created_at, updated_at`

func scanAdmission(row interface{ Scan(dest ...any) error }) (*model.AdmissionApplication, error) {
	a := &model.AdmissionApplication{}
	var status string
	err := row.Scan(&a.ID, &a.StudentName, &a.GradeApplied, &a.GuardianName, &a.Phone,
		&a.Email, &a.Note, &status, &a.ReviewedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = model.AdmissionStatus(status)
	return a, nil
}

// Create inserts a pending application.
func (r *AdmissionRepository) Create(ctx context.Context, req *model.SubmitAdmissionRequest) (*model.AdmissionApplication, error) {
	return scanAdmission(r.pool.QueryRow(ctx,
		`INSERT INTO admission_applications (student_name, grade_applied, guardian_name, phone, email, note)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+admissionColumns,
		req.StudentName, req.GradeApplied, req.GuardianName, req.Phone, req.Email, req.Note,
	))
}

// List returns a page of applications, newest first, optionally by status.
func (r *AdmissionRepository) List(ctx context.Context, status string, limit, offset int) ([]model.AdmissionApplication, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM admission_applications WHERE ($1 = '' OR status = $1)`, status,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+admissionColumns+` FROM admission_applications
		 WHERE ($1 = '' OR status = $1)
		 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
		status, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []model.AdmissionApplication
	for rows.Next() {
		a, err := scanAdmission(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *a)
	}
	return list, total, rows.Err()
}

// UpdateStatus records a review decision.
func (r *AdmissionRepository) UpdateStatus(ctx context.Context, id int64, status model.AdmissionStatus, reviewer uuid.UUID) (*model.AdmissionApplication, error) {
	a, err := scanAdmission(r.pool.QueryRow(ctx,
		`UPDATE admission_applications
		 SET status = $2, reviewed_by = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+admissionColumns,
		id, string(status), reviewer,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}
