package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/access"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/metrics"
	"github.com/schoolsite/portal-backend/internal/model"
)

// Messages returned by a permission save.
const (
	MsgNothingToSave = "ไม่มีการเปลี่ยนแปลงที่ต้องบันทึก"
	MsgSaved         = "บันทึกสิทธิ์เรียบร้อยแล้ว"
)

// ErrSaveFailed is returned when a permission save is rolled back.
var ErrSaveFailed = errors.New("permission save failed")

// clearSavedDraft removes draft fields whose value still equals the saved one.
// KEYS[1] is the draft hash; ARGV holds field, value pairs.
var clearSavedDraft = redis.NewScript(`
local n = 0
for i = 1, #ARGV, 2 do
	if redis.call('HGET', KEYS[1], ARGV[i]) == ARGV[i + 1] then
		n = n + redis.call('HDEL', KEYS[1], ARGV[i])
	end
end
return n
`)

type principalSource interface {
	ListPrincipals(ctx context.Context) ([]model.Principal, error)
}

type roleLister interface {
	ListAll(ctx context.Context) ([]model.RoleAssignment, error)
}

type permissionStore interface {
	ListAll(ctx context.Context) ([]model.PermissionGrant, error)
	UpsertMany(ctx context.Context, grants []model.PermissionGrant) error
}

// accessInvalidator drops cached access contexts.
type accessInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...uuid.UUID) error
}

// PermissionService backs the admin permission editor.
type PermissionService struct {
	principals principalSource
	roles      roleLister
	perms      permissionStore
	rdb        *redis.Client
	access     accessInvalidator
	audit      auditRecorder
	cfg        *config.Config
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(
	principals principalSource,
	roles roleLister,
	perms permissionStore,
	rdb *redis.Client,
	accessSvc accessInvalidator,
	audit auditRecorder,
	cfg *config.Config,
	m *metrics.Metrics,
	log zerolog.Logger,
) *PermissionService {
	return &PermissionService{
		principals: principals,
		roles:      roles,
		perms:      perms,
		rdb:        rdb,
		access:     accessSvc,
		audit:      audit,
		cfg:        cfg,
		metrics:    m,
		log:        log.With().Str("component", "permission_service").Logger(),
	}
}

// ListPrincipals returns every principal with role rows and granted permissions.
func (s *PermissionService) ListPrincipals(ctx context.Context) ([]model.Principal, error) {
	principals, err := s.principals.ListPrincipals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list principals: %w", err)
	}
	roles, err := s.roles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	grants, err := s.perms.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	rolesByUser := make(map[uuid.UUID][]model.RoleAssignment)
	for _, r := range roles {
		rolesByUser[r.UserID] = append(rolesByUser[r.UserID], r)
	}
	permsByUser := make(map[uuid.UUID][]model.Permission)
	for _, g := range grants {
		if g.Granted {
			permsByUser[g.UserID] = append(permsByUser[g.UserID], g.Permission)
		}
	}

	for i := range principals {
		id := principals[i].UserID
		principals[i].Roles = rolesByUser[id]
		if principals[i].Roles == nil {
			principals[i].Roles = []model.RoleAssignment{}
		}
		principals[i].Permissions = permsByUser[id]
		if principals[i].Permissions == nil {
			principals[i].Permissions = []model.Permission{}
		}
	}
	return principals, nil
}

// Matrix returns every principal's checkbox values, pending edits first.
func (s *PermissionService) Matrix(ctx context.Context, adminID uuid.UUID) ([]model.PermissionMatrixRow, error) {
	principals, err := s.principals.ListPrincipals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list principals: %w", err)
	}
	grants, err := s.perms.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	draft, err := s.LoadDraft(ctx, adminID)
	if err != nil {
		return nil, err
	}

	persisted := make(map[uuid.UUID]map[model.Permission]bool)
	for _, g := range grants {
		if persisted[g.UserID] == nil {
			persisted[g.UserID] = make(map[model.Permission]bool)
		}
		persisted[g.UserID][g.Permission] = g.Granted
	}

	rows := make([]model.PermissionMatrixRow, 0, len(principals))
	for _, p := range principals {
		row := model.PermissionMatrixRow{
			UserID:      p.UserID,
			Email:       p.Email,
			FullName:    p.FullName,
			Permissions: make(map[model.Permission]bool, len(model.AllPermissions)),
			Pending:     []model.Permission{},
		}
		for _, perm := range model.AllPermissions {
			row.Permissions[perm] = draft.Value(p.UserID, perm, persisted[p.UserID][perm])
			if _, ok := draft.Pending(p.UserID, perm); ok {
				row.Pending = append(row.Pending, perm)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadDraft reads an admin's edit buffer. Malformed entries are skipped.
func (s *PermissionService) LoadDraft(ctx context.Context, adminID uuid.UUID) (*access.Draft, error) {
	fields, err := s.rdb.HGetAll(ctx, config.CacheKey.PermissionDraftKey(adminID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	draft := access.NewDraft()
	for field, value := range fields {
		c, err := access.ParseChange(field, value)
		if err != nil {
			s.log.Warn().Err(err).Str("admin_id", adminID.String()).Msg("Skipping malformed draft entry")
			continue
		}
		draft.Stage(c)
	}
	return draft, nil
}

// Stage adds one edit to the admin's buffer, replacing any earlier edit of the same cell.
func (s *PermissionService) Stage(ctx context.Context, adminID uuid.UUID, c access.Change) error {
	if _, err := model.ParsePermission(string(c.Permission)); err != nil {
		return err
	}
	key := config.CacheKey.PermissionDraftKey(adminID.String())

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, c.Field(), access.EncodeGranted(c.Granted))
	pipe.Expire(ctx, key, s.cfg.DraftTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("stage change: %w", err)
	}
	return nil
}

// Discard empties the admin's buffer.
func (s *PermissionService) Discard(ctx context.Context, adminID uuid.UUID) error {
	return s.rdb.Del(ctx, config.CacheKey.PermissionDraftKey(adminID.String())).Err()
}

// Save persists the admin's buffer in one transaction.
// An empty buffer writes nothing. On failure the buffer is kept.
func (s *PermissionService) Save(ctx context.Context, adminID uuid.UUID) (*model.SaveResult, error) {
	draft, err := s.LoadDraft(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if draft.Empty() {
		s.metrics.ObservePermissionSave("empty")
		return &model.SaveResult{Saved: 0, Message: MsgNothingToSave}, nil
	}

	changes := draft.Changes()
	grants := make([]model.PermissionGrant, len(changes))
	saved := make([]any, 0, 2*len(changes))
	affected := make(map[uuid.UUID]struct{})
	for i, c := range changes {
		grants[i] = model.PermissionGrant{UserID: c.UserID, Permission: c.Permission, Granted: c.Granted}
		saved = append(saved, c.Field(), access.EncodeGranted(c.Granted))
		affected[c.UserID] = struct{}{}
	}

	if err := s.perms.UpsertMany(ctx, grants); err != nil {
		s.metrics.ObservePermissionSave("failed")
		s.log.Error().Err(err).Str("admin_id", adminID.String()).Int("changes", len(grants)).Msg("Permission save rolled back")
		return nil, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	s.metrics.ObservePermissionSave("saved")

	// Cells edited again while the save ran keep their newer value.
	key := config.CacheKey.PermissionDraftKey(adminID.String())
	if err := clearSavedDraft.Run(ctx, s.rdb, []string{key}, saved...).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Clear draft after save failed")
	}

	ids := make([]uuid.UUID, 0, len(affected))
	for id := range affected {
		ids = append(ids, id)
	}
	if err := s.access.Invalidate(ctx, ids...); err != nil {
		s.log.Warn().Err(err).Msg("Access cache invalidation failed")
	}

	s.audit.Record(ctx, adminID, model.AuditPermissionsSaved, "user_permissions", changes)
	s.log.Info().Str("admin_id", adminID.String()).Int("changes", len(grants)).Msg("Permissions saved")

	return &model.SaveResult{Saved: len(grants), Message: MsgSaved}, nil
}
