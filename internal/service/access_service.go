package service

import (
	"context"
	"encoding/json"
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

// roleLookup reads approved role rows.
type roleLookup interface {
	ApprovedRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// permissionLookup reads granted permission rows.
type permissionLookup interface {
	GrantedNames(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// cachedAccess is the Redis form of a resolved AuthContext.
type cachedAccess struct {
	Role        model.Role         `json:"role"`
	Permissions []model.Permission `json:"permissions"`
}

// AccessService resolves a principal's role and permissions.
type AccessService struct {
	roles   roleLookup
	perms   permissionLookup
	rdb     *redis.Client
	cfg     *config.Config
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewAccessService creates a new AccessService.
func NewAccessService(roles roleLookup, perms permissionLookup, rdb *redis.Client, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) *AccessService {
	return &AccessService{
		roles:   roles,
		perms:   perms,
		rdb:     rdb,
		cfg:     cfg,
		metrics: m,
		log:     log.With().Str("component", "access_service").Logger(),
	}
}

// GetRole returns the principal's effective role from approved rows only.
// With several approved roles the highest by precedence wins; none yields RoleNone.
func (s *AccessService) GetRole(ctx context.Context, userID uuid.UUID) (model.Role, error) {
	raw, err := s.roles.ApprovedRoles(ctx, userID)
	if err != nil {
		return model.RoleNone, fmt.Errorf("lookup roles: %w", err)
	}

	best := model.RoleNone
	for _, r := range raw {
		role, err := model.ParseRole(r)
		if err != nil {
			s.log.Warn().Str("user_id", userID.String()).Str("role", r).Msg("Ignoring unknown role value")
			continue
		}
		if role.Outranks(best) {
			best = role
		}
	}
	return best, nil
}

// GetPermissions returns the principal's granted permissions.
// Unknown permission names are dropped.
func (s *AccessService) GetPermissions(ctx context.Context, userID uuid.UUID) (model.PermissionSet, error) {
	raw, err := s.perms.GrantedNames(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup permissions: %w", err)
	}

	set := make(model.PermissionSet, len(raw))
	for _, name := range raw {
		p, err := model.ParsePermission(name)
		if err != nil {
			s.log.Warn().Str("user_id", userID.String()).Str("permission", name).Msg("Ignoring unknown permission")
			continue
		}
		set[p] = struct{}{}
	}
	return set, nil
}

// Resolve builds the AuthContext of a principal, served from cache when fresh.
func (s *AccessService) Resolve(ctx context.Context, userID uuid.UUID, email string) (*access.AuthContext, error) {
	key := config.CacheKey.AccessContextKey(userID.String())

	if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var cached cachedAccess
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.metrics.ObserveAccessCache(metrics.CacheHit)
			return access.NewAuthContext(userID, email, cached.Role, model.NewPermissionSet(cached.Permissions...)), nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Access cache read failed")
	}
	s.metrics.ObserveAccessCache(metrics.CacheMiss)

	role, err := s.GetRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	perms, err := s.GetPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	ac := access.NewAuthContext(userID, email, role, perms)

	payload, _ := json.Marshal(cachedAccess{Role: role, Permissions: perms.Sorted()})
	if err := s.rdb.Set(ctx, key, payload, s.cfg.AccessCacheTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Access cache write failed")
	}
	return ac, nil
}

// Invalidate drops cached access contexts so the next request re-reads the tables.
func (s *AccessService) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = config.CacheKey.AccessContextKey(id.String())
	}
	return s.rdb.Del(ctx, keys...).Err()
}
