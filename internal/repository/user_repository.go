package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolsite/portal-backend/internal/database"
	"github.com/schoolsite/portal-backend/internal/model"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("user with this email already exists")
)

// isUniqueViolation reports a PostgreSQL unique constraint failure.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// notFound maps pgx.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// UserRepository handles accounts and profiles.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// NewAccount is everything written when a principal registers.
type NewAccount struct {
	Email        string
	PasswordHash string
	FullName     string
	Role         model.Role
	Approved     bool
}

// CreateAccount inserts the user, its profile, and its first role row in one transaction.
func (r *UserRepository) CreateAccount(ctx context.Context, acc NewAccount) (*model.User, error) {
	u := &model.User{Email: acc.Email}
	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO users (email, password_hash) VALUES ($1, $2)
			 RETURNING id, created_at, updated_at`,
			acc.Email, acc.PasswordHash,
		).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateEmail
			}
			return fmt.Errorf("insert user: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO profiles (user_id, full_name) VALUES ($1, $2)`,
			u.ID, acc.FullName,
		); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO user_roles (user_id, role, approved, pending_approval, email)
			 VALUES ($1, $2, $3, $4, $5)`,
			u.ID, string(acc.Role), acc.Approved, !acc.Approved, acc.Email,
		); err != nil {
			return fmt.Errorf("insert role: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at
		 FROM users WHERE LOWER(email) = LOWER($1)`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u := &model.User{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

// EmailsByIDs resolves user ids to emails. Ids without an account are omitted.
func (r *UserRepository) EmailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, email FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    uuid.UUID
			email string
		)
		if err := rows.Scan(&id, &email); err != nil {
			return nil, err
		}
		out[id] = email
	}
	return out, rows.Err()
}

// ─── Profiles ──────────────────────────────────────────────────────────

// GetProfile retrieves a profile by user ID.
func (r *UserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	p := &model.Profile{UserID: userID}
	err := r.pool.QueryRow(ctx,
		`SELECT full_name, avatar_url, updated_at FROM profiles WHERE user_id = $1`, userID,
	).Scan(&p.FullName, &p.AvatarURL, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// UpsertProfile creates or replaces a profile.
func (r *UserRepository) UpsertProfile(ctx context.Context, p *model.Profile) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO profiles (user_id, full_name, avatar_url) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE
		 SET full_name = EXCLUDED.full_name, avatar_url = EXCLUDED.avatar_url, updated_at = NOW()
		 RETURNING updated_at`,
		p.UserID, p.FullName, p.AvatarURL,
	).Scan(&p.UpdatedAt)
}

// ─── Principals ────────────────────────────────────────────────────────

// ListPrincipals returns every known principal: accounts plus role-only ids
// created by imports. Roles and permissions are left empty for the caller to fill.
func (r *UserRepository) ListPrincipals(ctx context.Context) ([]model.Principal, error) {
	rows, err := r.pool.Query(ctx,
		`WITH ids AS (
		     SELECT id AS user_id FROM users
		     UNION
		     SELECT user_id FROM user_roles
		 )
		 SELECT ids.user_id,
		        COALESCE(u.email, (SELECT ur.email FROM user_roles ur WHERE ur.user_id = ids.user_id ORDER BY ur.id LIMIT 1), ''),
		        COALESCE(p.full_name, ''),
		        u.id IS NOT NULL
		 FROM ids
		 LEFT JOIN users u ON u.id = ids.user_id
		 LEFT JOIN profiles p ON p.user_id = ids.user_id
		 ORDER BY 2`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var principals []model.Principal
	for rows.Next() {
		var p model.Principal
		if err := rows.Scan(&p.UserID, &p.Email, &p.FullName, &p.HasAccount); err != nil {
			return nil, err
		}
		principals = append(principals, p)
	}
	return principals, rows.Err()
}
