package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/model"
)

type admissionStore interface {
	Create(ctx context.Context, req *model.SubmitAdmissionRequest) (*model.AdmissionApplication, error)
	List(ctx context.Context, status string, limit, offset int) ([]model.AdmissionApplication, int, error)
	UpdateStatus(ctx context.Context, id int64, status model.AdmissionStatus, reviewer uuid.UUID) (*model.AdmissionApplication, error)
}

// AdmissionService handles admission applications.
type AdmissionService struct {
	repo  admissionStore
	audit auditRecorder
	log   zerolog.Logger
}

// NewAdmissionService creates a new AdmissionService.
func NewAdmissionService(repo admissionStore, audit auditRecorder, log zerolog.Logger) *AdmissionService {
	return &AdmissionService{
		repo:  repo,
		audit: audit,
		log:   log.With().Str("component", "admission_service").Logger(),
	}
}

// Submit stores a public application as pending.
func (s *AdmissionService) Submit(ctx context.Context, req *model.SubmitAdmissionRequest) (*model.AdmissionApplication, error) {
	app, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("id", app.ID).Str("grade", app.GradeApplied).Msg("Admission application submitted")
	return app, nil
}

// List returns a page of applications, optionally filtered by status.
// An empty status lists every application.
func (s *AdmissionService) List(ctx context.Context, status string, page, perPage int) ([]model.AdmissionApplication, int, error) {
	if status != "" {
		if _, err := model.ParseAdmissionStatus(status); err != nil {
			return nil, 0, err
		}
	}
	list, total, err := s.repo.List(ctx, status, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	if list == nil {
		list = []model.AdmissionApplication{}
	}
	return list, total, nil
}

// UpdateStatus records a review decision.
func (s *AdmissionService) UpdateStatus(ctx context.Context, reviewer uuid.UUID, id int64, status model.AdmissionStatus) (*model.AdmissionApplication, error) {
	if _, err := model.ParseAdmissionStatus(string(status)); err != nil {
		return nil, err
	}
	app, err := s.repo.UpdateStatus(ctx, id, status, reviewer)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, reviewer, model.AuditAdmissionUpdated, strconv.FormatInt(id, 10), map[string]model.AdmissionStatus{"status": status})
	return app, nil
}
