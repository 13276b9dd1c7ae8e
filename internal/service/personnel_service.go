package service

import (
	"context"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/model"
)

type personnelStore interface {
	List(ctx context.Context, department string) ([]model.Personnel, error)
	GetByID(ctx context.Context, id int64) (*model.Personnel, error)
	Create(ctx context.Context, req *model.PersonnelRequest) (*model.Personnel, error)
	Update(ctx context.Context, id int64, req *model.PersonnelRequest) (*model.Personnel, error)
	Delete(ctx context.Context, id int64) error
}

// PersonnelService handles the staff directory.
type PersonnelService struct {
	repo  personnelStore
	audit auditRecorder
	log   zerolog.Logger
}

// NewPersonnelService creates a new PersonnelService.
func NewPersonnelService(repo personnelStore, audit auditRecorder, log zerolog.Logger) *PersonnelService {
	return &PersonnelService{
		repo:  repo,
		audit: audit,
		log:   log.With().Str("component", "personnel_service").Logger(),
	}
}

// List returns the directory grouped by department, then by sort order,
// optionally narrowed to one department.
func (s *PersonnelService) List(ctx context.Context, department string) ([]model.Personnel, error) {
	list, err := s.repo.List(ctx, department)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return []model.Personnel{}, nil
	}
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Department != b.Department {
			return a.Department < b.Department
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.FullName < b.FullName
	})
	return list, nil
}

// GetByID returns one entry.
func (s *PersonnelService) GetByID(ctx context.Context, id int64) (*model.Personnel, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds an entry.
func (s *PersonnelService) Create(ctx context.Context, req *model.PersonnelRequest) (*model.Personnel, error) {
	return s.repo.Create(ctx, req)
}

// Update replaces an entry.
func (s *PersonnelService) Update(ctx context.Context, id int64, req *model.PersonnelRequest) (*model.Personnel, error) {
	return s.repo.Update(ctx, id, req)
}

// Delete removes an entry.
func (s *PersonnelService) Delete(ctx context.Context, actor uuid.UUID, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Record(ctx, actor, model.AuditPersonnelDeleted, strconv.FormatInt(id, 10), nil)
	return nil
}
