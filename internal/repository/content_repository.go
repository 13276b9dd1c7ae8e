package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/schoolsite/portal-backend/internal/model"
)

// ContentRepository handles news, activities, and media_resources.
// Table names come from model.ContentKind, never from user input.
type ContentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository creates a new ContentRepository.
func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

const contentColumns = `id, title, content, author_name, category, cover_image_url, link_url, created_by, created_at, updated_at`

func scanContent(kind model.ContentKind, row interface{ Scan(dest ...any) error }) (*model.ContentItem, error) {
	item := &model.ContentItem{Kind: kind}
	err := row.Scan(&item.ID, &item.Title, &item.Content, &item.AuthorName, &item.Category,
		&item.CoverImageURL, &item.LinkURL, &item.CreatedBy, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List returns a page of items, newest first, with the total count.
func (r *ContentRepository) List(ctx context.Context, kind model.ContentKind, f model.ContentFilter) ([]model.ContentItem, int, error) {
	table := kind.Table()
	if table == "" {
		return nil, 0, model.ErrUnknownContentKind
	}

	where := ""
	var args []interface{}
	if f.Category != "" {
		where = ` WHERE category = $1`
		args = append(args, f.Category)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argIdx := len(args) + 1
	query := `SELECT ` + contentColumns + ` FROM ` + table + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(argIdx) + ` OFFSET $` + strconv.Itoa(argIdx+1)
	args = append(args, f.PerPage, f.Offset())

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []model.ContentItem
	for rows.Next() {
		item, err := scanContent(kind, rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

// GetByID retrieves one item.
func (r *ContentRepository) GetByID(ctx context.Context, kind model.ContentKind, id int64) (*model.ContentItem, error) {
	table := kind.Table()
	if table == "" {
		return nil, model.ErrUnknownContentKind
	}
	item, err := scanContent(kind, r.pool.QueryRow(ctx,
		`SELECT `+contentColumns+` FROM `+table+` WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

// Create inserts an item and returns it.
func (r *ContentRepository) Create(ctx context.Context, kind model.ContentKind, req *model.ContentRequest, createdBy uuid.UUID) (*model.ContentItem, error) {
	table := kind.Table()
	if table == "" {
		return nil, model.ErrUnknownContentKind
	}
	item, err := scanContent(kind, r.pool.QueryRow(ctx,
		`INSERT INTO `+table+` (title, content, author_name, category, cover_image_url, link_url, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+contentColumns,
		req.Title, req.Content, req.AuthorName, req.Category, req.CoverImageURL, req.LinkURL, createdBy,
	))
	if err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return item, nil
}

// Update replaces the editable fields of an item.
func (r *ContentRepository) Update(ctx context.Context, kind model.ContentKind, id int64, req *model.ContentRequest) (*model.ContentItem, error) {
	table := kind.Table()
	if table == "" {
		return nil, model.ErrUnknownContentKind
	}
	item, err := scanContent(kind, r.pool.QueryRow(ctx,
		`UPDATE `+table+`
		 SET title = $2, content = $3, author_name = $4, category = $5,
		     cover_image_url = $6, link_url = $7, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+contentColumns,
		id, req.Title, req.Content, req.AuthorName, req.Category, req.CoverImageURL, req.LinkURL,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

// Delete removes an item.
func (r *ContentRepository) Delete(ctx context.Context, kind model.ContentKind, id int64) error {
	table := kind.Table()
	if table == "" {
		return model.ErrUnknownContentKind
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
