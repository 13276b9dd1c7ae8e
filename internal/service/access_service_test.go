package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/schoolsite/portal-backend/internal/metrics"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	roles map[uuid.UUID][]string
	perms map[uuid.UUID][]string
	calls int
}

func (s *stubLookup) ApprovedRoles(_ context.Context, id uuid.UUID) ([]string, error) {
	s.calls++
	return s.roles[id], nil
}

func (s *stubLookup) GrantedNames(_ context.Context, id uuid.UUID) ([]string, error) {
	return s.perms[id], nil
}

func TestGetRolePrecedence(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	lookup := &stubLookup{roles: map[uuid.UUID][]string{
		a: {"student", "teacher"},
		b: {"guardian", "admin", "teacher"},
		c: {"principal", "student"},
	}}
	svc := NewAccessService(lookup, lookup, nil, testConfig(), nil, nopLog)
	ctx := context.Background()

	tests := []struct {
		id   uuid.UUID
		want model.Role
	}{
		{a, model.RoleTeacher},
		{b, model.RoleAdmin},
		{c, model.RoleStudent},
		{d, model.RoleNone},
	}
	for _, tt := range tests {
		got, err := svc.GetRole(ctx, tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestGetPermissionsDropsUnknown(t *testing.T) {
	id := uuid.New()
	lookup := &stubLookup{perms: map[uuid.UUID][]string{id: {"manage_news", "manage_everything"}}}
	svc := NewAccessService(lookup, lookup, nil, testConfig(), nil, nopLog)

	set, err := svc.GetPermissions(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []model.Permission{model.PermissionManageNews}, set.Sorted())
}

func TestResolveCachesUntilInvalidated(t *testing.T) {
	_, rdb := newTestRedis(t)
	m := metrics.New(prometheus.NewRegistry())
	id := uuid.New()
	lookup := &stubLookup{
		roles: map[uuid.UUID][]string{id: {"teacher"}},
		perms: map[uuid.UUID][]string{id: {"manage_news"}},
	}
	svc := NewAccessService(lookup, lookup, rdb, testConfig(), m, nopLog)
	ctx := context.Background()

	ac, err := svc.Resolve(ctx, id, "t@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeacher, ac.Role)
	assert.True(t, ac.Can(model.PermissionManageNews))

	lookup.roles[id] = []string{"admin"}
	ac, err = svc.Resolve(ctx, id, "t@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeacher, ac.Role, "served from cache")
	assert.True(t, ac.Can(model.PermissionManageNews))
	assert.Equal(t, 1, lookup.calls)

	require.NoError(t, svc.Invalidate(ctx, id))
	ac, err = svc.Resolve(ctx, id, "t@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, ac.Role)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccessCache.WithLabelValues(metrics.CacheHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.AccessCache.WithLabelValues(metrics.CacheMiss)))
}
