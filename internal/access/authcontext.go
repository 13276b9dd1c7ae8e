// Package access holds the access-control model of the portal: the resolved
// principal, the dashboard tile catalog, the route guard, and the navigation
// resolver that reconciles the visible route with session presence.
package access

import (
	"github.com/google/uuid"
	"github.com/schoolsite/portal-backend/internal/model"
)

// AuthContext is the principal's access attributes, resolved once per request.
type AuthContext struct {
	UserID      uuid.UUID           `json:"user_id"`
	Email       string              `json:"email"`
	Role        model.Role          `json:"role"`
	Permissions model.PermissionSet `json:"-"`
}

// NewAuthContext builds a context from lookup results.
func NewAuthContext(userID uuid.UUID, email string, role model.Role, perms model.PermissionSet) *AuthContext {
	if perms == nil {
		perms = model.PermissionSet{}
	}
	return &AuthContext{UserID: userID, Email: email, Role: role, Permissions: perms}
}

// IsAdmin reports whether the principal holds an approved admin role.
func (a *AuthContext) IsAdmin() bool {
	return a != nil && a.Role == model.RoleAdmin
}

// Can reports whether the principal may use the capability p.
// Admin bypasses grants; everyone else needs an explicit grant.
func (a *AuthContext) Can(p model.Permission) bool {
	if a == nil {
		return false
	}
	if a.IsAdmin() {
		return true
	}
	return a.Permissions.Has(p)
}

// CanAny reports whether Can holds for at least one of perms.
func (a *AuthContext) CanAny(perms ...model.Permission) bool {
	for _, p := range perms {
		if a.Can(p) {
			return true
		}
	}
	return false
}

// GrantedPermissions lists the explicit grants in stable order.
func (a *AuthContext) GrantedPermissions() []model.Permission {
	if a == nil {
		return nil
	}
	return a.Permissions.Sorted()
}
