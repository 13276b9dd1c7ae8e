package access

import (
	"strings"

	"github.com/schoolsite/portal-backend/internal/model"
)

// Tile is a dashboard entry point to a feature area.
type Tile struct {
	Key          string           `json:"key"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Route        string           `json:"route"`
	AllowedRoles []model.Role     `json:"allowed_roles"`
	Permission   model.Permission `json:"permission"`
}

// Catalog is the static list of dashboard tiles in display order.
//
// AllowedRoles is descriptive only. Non-admins see a tile when they hold its
// Permission, whatever their role.
var Catalog = []Tile{
	{
		Key:          "news",
		Name:         "ข่าวประชาสัมพันธ์",
		Description:  "เพิ่ม แก้ไข และลบข่าวประชาสัมพันธ์ของโรงเรียน",
		Route:        "/dashboard/news",
		AllowedRoles: []model.Role{model.RoleAdmin, model.RoleTeacher},
		Permission:   model.PermissionManageNews,
	},
	{
		Key:          "activities",
		Name:         "กิจกรรม",
		Description:  "จัดการกิจกรรมและภาพกิจกรรม",
		Route:        "/dashboard/activities",
		AllowedRoles: []model.Role{model.RoleAdmin, model.RoleTeacher},
		Permission:   model.PermissionManageActivities,
	},
	{
		Key:          "media",
		Name:         "สื่อการเรียนรู้",
		Description:  "อัปโหลดและจัดการสื่อการเรียนรู้",
		Route:        "/dashboard/media",
		AllowedRoles: []model.Role{model.RoleAdmin, model.RoleTeacher, model.RoleStudent},
		Permission:   model.PermissionManageMedia,
	},
	{
		Key:          "personnel",
		Name:         "บุคลากร",
		Description:  "จัดการทำเนียบบุคลากร",
		Route:        "/dashboard/personnel",
		AllowedRoles: []model.Role{model.RoleAdmin},
		Permission:   model.PermissionManagePersonnel,
	},
	{
		Key:          "admissions",
		Name:         "รับสมัครนักเรียน",
		Description:  "ตรวจสอบใบสมัครเข้าเรียน",
		Route:        "/dashboard/admissions",
		AllowedRoles: []model.Role{model.RoleAdmin, model.RoleTeacher},
		Permission:   model.PermissionManageAdmissions,
	},
	// manage_users only shows this tile. The admin API behind it requires the
	// admin role.
	{
		Key:          "users",
		Name:         "จัดการผู้ใช้",
		Description:  "อนุมัติบทบาทและกำหนดสิทธิ์ผู้ใช้",
		Route:        "/dashboard/users",
		AllowedRoles: []model.Role{model.RoleAdmin},
		Permission:   model.PermissionManageUsers,
	},
}

// VisibleTiles returns the catalog entries the principal may open.
func VisibleTiles(ac *AuthContext) []Tile {
	visible := make([]Tile, 0, len(Catalog))
	for _, t := range Catalog {
		if ac.Can(t.Permission) {
			visible = append(visible, t)
		}
	}
	return visible
}

// TileForRoute finds the tile whose area contains path: the tile route itself
// or any page below it.
func TileForRoute(path string) (Tile, bool) {
	for _, t := range Catalog {
		if path == t.Route || strings.HasPrefix(path, t.Route+"/") {
			return t, true
		}
	}
	return Tile{}, false
}
