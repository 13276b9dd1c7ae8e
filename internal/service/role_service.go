package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/metrics"
	"github.com/schoolsite/portal-backend/internal/model"
)

// ErrNoPendingRole is returned when approving a principal with nothing pending.
var ErrNoPendingRole = errors.New("principal has no pending role")

type roleStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.RoleAssignment, error)
	ListPending(ctx context.Context) ([]model.RoleAssignment, error)
	PendingUserIDs(ctx context.Context) ([]uuid.UUID, error)
	ApproveUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Insert(ctx context.Context, a *model.RoleAssignment) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type emailResolver interface {
	EmailsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// RoleService handles role approval and assignment.
type RoleService struct {
	roles   roleStore
	emails  emailResolver
	access  accessInvalidator
	audit   auditRecorder
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewRoleService creates a new RoleService.
func NewRoleService(roles roleStore, emails emailResolver, accessSvc accessInvalidator, audit auditRecorder, m *metrics.Metrics, log zerolog.Logger) *RoleService {
	return &RoleService{
		roles:   roles,
		emails:  emails,
		access:  accessSvc,
		audit:   audit,
		metrics: m,
		log:     log.With().Str("component", "role_service").Logger(),
	}
}

// ListPending returns every role row awaiting approval.
func (s *RoleService) ListPending(ctx context.Context) ([]model.RoleAssignment, error) {
	rows, err := s.roles.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.RoleAssignment{}
	}
	return rows, nil
}

// ApproveAll approves every principal holding an unapproved row, one principal
// at a time. A failure for one principal is recorded and the loop continues.
func (s *RoleService) ApproveAll(ctx context.Context, actor uuid.UUID) (*model.BulkApprovalResult, error) {
	ids, err := s.roles.PendingUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending principals: %w", err)
	}

	result := &model.BulkApprovalResult{
		Approved: []uuid.UUID{},
		Failed:   []model.ApprovalFailure{},
	}
	for _, id := range ids {
		if _, err := s.roles.ApproveUser(ctx, id); err != nil {
			s.log.Error().Err(err).Str("user_id", id.String()).Msg("Approve principal failed")
			result.Failed = append(result.Failed, model.ApprovalFailure{UserID: id, Error: err.Error()})
			continue
		}
		result.Approved = append(result.Approved, id)
	}

	if err := s.access.Invalidate(ctx, result.Approved...); err != nil {
		s.log.Warn().Err(err).Msg("Access cache invalidation failed")
	}
	s.metrics.AddApprovals(len(result.Approved), len(result.Failed))
	if len(result.Approved) > 0 {
		s.audit.Record(ctx, actor, model.AuditRolesApproved, "user_roles", result)
	}

	s.log.Info().
		Int("approved", len(result.Approved)).
		Int("failed", len(result.Failed)).
		Msg("Bulk approval finished")
	return result, nil
}

// Approve approves every pending row of one principal.
func (s *RoleService) Approve(ctx context.Context, actor, userID uuid.UUID) error {
	n, err := s.roles.ApproveUser(ctx, userID)
	if err != nil {
		s.metrics.AddApprovals(0, 1)
		return err
	}
	if n == 0 {
		return ErrNoPendingRole
	}
	s.metrics.AddApprovals(1, 0)
	if err := s.access.Invalidate(ctx, userID); err != nil {
		s.log.Warn().Err(err).Msg("Access cache invalidation failed")
	}
	s.audit.Record(ctx, actor, model.AuditRolesApproved, userID.String(), map[string]int64{"rows": n})
	return nil
}

// AddRole grants an approved role to a principal.
func (s *RoleService) AddRole(ctx context.Context, actor, userID uuid.UUID, role model.Role) (*model.RoleAssignment, error) {
	if !role.Valid() {
		return nil, model.ErrUnknownRole
	}

	email, err := s.emailFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	a := &model.RoleAssignment{UserID: userID, Role: role, Approved: true, Email: email}
	if err := s.roles.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("insert role: %w", err)
	}
	if err := s.access.Invalidate(ctx, userID); err != nil {
		s.log.Warn().Err(err).Msg("Access cache invalidation failed")
	}
	s.audit.Record(ctx, actor, model.AuditRoleAdded, userID.String(), map[string]model.Role{"role": role})
	return a, nil
}

// DeleteRoles removes every role row of a principal atomically.
func (s *RoleService) DeleteRoles(ctx context.Context, actor, userID uuid.UUID) (int64, error) {
	n, err := s.roles.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.access.Invalidate(ctx, userID); err != nil {
		s.log.Warn().Err(err).Msg("Access cache invalidation failed")
	}
	s.audit.Record(ctx, actor, model.AuditRolesDeleted, userID.String(), map[string]int64{"rows": n})
	return n, nil
}

// emailFor finds the email to denormalize onto a new role row: the account
// email when one exists, otherwise the email on an earlier role row.
func (s *RoleService) emailFor(ctx context.Context, userID uuid.UUID) (string, error) {
	emails, err := s.emails.EmailsByIDs(ctx, []uuid.UUID{userID})
	if err != nil {
		return "", fmt.Errorf("resolve email: %w", err)
	}
	if email, ok := emails[userID]; ok {
		return email, nil
	}
	rows, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("list roles: %w", err)
	}
	for _, r := range rows {
		if r.Email != "" {
			return r.Email, nil
		}
	}
	return "", nil
}
