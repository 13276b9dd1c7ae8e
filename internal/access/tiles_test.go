package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/schoolsite/portal-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tileKeys(tiles []Tile) []string {
	keys := make([]string, 0, len(tiles))
	for _, t := range tiles {
		keys = append(keys, t.Key)
	}
	return keys
}

func TestVisibleTilesAdminSeesEverything(t *testing.T) {
	ac := NewAuthContext(uuid.New(), "admin@school.ac.th", model.RoleAdmin, nil)

	visible := VisibleTiles(ac)

	require.Len(t, visible, len(Catalog))
	assert.Equal(t, tileKeys(Catalog), tileKeys(visible))
}

func TestVisibleTilesNonAdminNeedsGrant(t *testing.T) {
	for _, role := range []model.Role{model.RoleNone, model.RoleTeacher, model.RoleStudent, model.RoleGuardian} {
		t.Run(string(role), func(t *testing.T) {
			ac := NewAuthContext(uuid.New(), "t@school.ac.th", role, model.NewPermissionSet(model.PermissionManageNews))

			assert.Equal(t, []string{"news"}, tileKeys(VisibleTiles(ac)))
		})
	}
}

func TestVisibleTilesRoleListIsNotEnforced(t *testing.T) {
	// Teacher is listed for activities but holds no grant.
	teacher := NewAuthContext(uuid.New(), "t@school.ac.th", model.RoleTeacher, nil)
	assert.Empty(t, VisibleTiles(teacher))

	// Guardian is not listed for personnel but holds the grant.
	guardian := NewAuthContext(uuid.New(), "g@school.ac.th", model.RoleGuardian, model.NewPermissionSet(model.PermissionManagePersonnel))
	assert.Equal(t, []string{"personnel"}, tileKeys(VisibleTiles(guardian)))
}

func TestUsersTileIsDisplayOnlyForGrantHolders(t *testing.T) {
	teacher := NewAuthContext(uuid.New(), "t@school.ac.th", model.RoleTeacher, model.NewPermissionSet(model.PermissionManageUsers))

	assert.Equal(t, []string{"users"}, tileKeys(VisibleTiles(teacher)))
	assert.False(t, teacher.IsAdmin())
}

func TestVisibleTilesNilContext(t *testing.T) {
	assert.Empty(t, VisibleTiles(nil))
}

func TestTileForRoute(t *testing.T) {
	tile, ok := TileForRoute("/dashboard/users")
	require.True(t, ok)
	assert.Equal(t, model.PermissionManageUsers, tile.Permission)

	for _, path := range []string{"/dashboard/users/", "/dashboard/users/42/edit"} {
		tile, ok := TileForRoute(path)
		require.True(t, ok, path)
		assert.Equal(t, "users", tile.Key, path)
	}

	tile, ok = TileForRoute("/dashboard/news/new")
	require.True(t, ok)
	assert.Equal(t, model.PermissionManageNews, tile.Permission)

	_, ok = TileForRoute("/dashboard/unknown")
	assert.False(t, ok)
	_, ok = TileForRoute("/dashboard/newsletter")
	assert.False(t, ok)
	_, ok = TileForRoute("/dashboard")
	assert.False(t, ok)
}

func TestCatalogPermissionsAreKnown(t *testing.T) {
	for _, tile := range Catalog {
		_, err := model.ParsePermission(string(tile.Permission))
		assert.NoError(t, err, tile.Key)
		assert.True(t, InDashboard(tile.Route), tile.Key)
	}
}

func TestAuthContextCan(t *testing.T) {
	ac := NewAuthContext(uuid.New(), "s@school.ac.th", model.RoleStudent, model.NewPermissionSet(model.PermissionManageMedia))

	assert.True(t, ac.Can(model.PermissionManageMedia))
	assert.False(t, ac.Can(model.PermissionManageNews))
	assert.True(t, ac.CanAny(model.PermissionManageNews, model.PermissionManageMedia))
	assert.False(t, ac.IsAdmin())
	assert.Equal(t, []model.Permission{model.PermissionManageMedia}, ac.GrantedPermissions())
}
