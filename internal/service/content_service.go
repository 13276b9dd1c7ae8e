package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/access"
	"github.com/schoolsite/portal-backend/internal/model"
)

type contentStore interface {
	List(ctx context.Context, kind model.ContentKind, f model.ContentFilter) ([]model.ContentItem, int, error)
	GetByID(ctx context.Context, kind model.ContentKind, id int64) (*model.ContentItem, error)
	Create(ctx context.Context, kind model.ContentKind, req *model.ContentRequest, createdBy uuid.UUID) (*model.ContentItem, error)
	Update(ctx context.Context, kind model.ContentKind, id int64, req *model.ContentRequest) (*model.ContentItem, error)
	Delete(ctx context.Context, kind model.ContentKind, id int64) error
}

// ContentService handles news, activities, and media resources.
type ContentService struct {
	repo  contentStore
	audit auditRecorder
	log   zerolog.Logger
}

// NewContentService creates a new ContentService.
func NewContentService(repo contentStore, audit auditRecorder, log zerolog.Logger) *ContentService {
	return &ContentService{
		repo:  repo,
		audit: audit,
		log:   log.With().Str("component", "content_service").Logger(),
	}
}

// List returns a page of items of one kind.
func (s *ContentService) List(ctx context.Context, kind model.ContentKind, f model.ContentFilter) ([]model.ContentItem, int, error) {
	f.Normalize()
	items, total, err := s.repo.List(ctx, kind, f)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []model.ContentItem{}
	}
	return items, total, nil
}

// GetByID returns one item.
func (s *ContentService) GetByID(ctx context.Context, kind model.ContentKind, id int64) (*model.ContentItem, error) {
	return s.repo.GetByID(ctx, kind, id)
}

// ResolveDeepLink opens the item named by a fragment such as "#news-detail-12".
func (s *ContentService) ResolveDeepLink(ctx context.Context, hash string) (*model.ContentItem, error) {
	kind, id, err := access.ParseDeepLink(hash)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, kind, id)
}

// Create stores a new item authored by the caller.
func (s *ContentService) Create(ctx context.Context, kind model.ContentKind, req *model.ContentRequest, author uuid.UUID) (*model.ContentItem, error) {
	item, err := s.repo.Create(ctx, kind, req, author)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("kind", string(kind)).Int64("id", item.ID).Msg("Content created")
	return item, nil
}

// Update replaces an item's fields.
func (s *ContentService) Update(ctx context.Context, kind model.ContentKind, id int64, req *model.ContentRequest) (*model.ContentItem, error) {
	return s.repo.Update(ctx, kind, id, req)
}

// Delete removes an item and records who did it.
func (s *ContentService) Delete(ctx context.Context, actor uuid.UUID, kind model.ContentKind, id int64) error {
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, model.AuditContentDeleted, string(kind)+":"+strconv.FormatInt(id, 10), nil)
	return nil
}
