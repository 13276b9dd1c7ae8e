package model

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownPermission is returned when a permission key is not in AllPermissions.
var ErrUnknownPermission = errors.New("unknown permission")

// Permission represents a string key for a fine-grained capability.
type Permission string

const (
	// PermissionManageNews allows creating, editing, and deleting news.
	PermissionManageNews Permission = "manage_news"

	// PermissionManageActivities allows creating, editing, and deleting activities.
	PermissionManageActivities Permission = "manage_activities"

	// PermissionManageMedia allows creating, editing, and deleting media resources.
	PermissionManageMedia Permission = "manage_media"

	// PermissionManagePersonnel allows maintaining the personnel directory.
	PermissionManagePersonnel Permission = "manage_personnel"

	// PermissionManageAdmissions allows reviewing admission applications.
	PermissionManageAdmissions Permission = "manage_admissions"

	// PermissionManageUsers allows opening the user management area.
	PermissionManageUsers Permission = "manage_users"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionManageNews,
	PermissionManageActivities,
	PermissionManageMedia,
	PermissionManagePersonnel,
	PermissionManageAdmissions,
	PermissionManageUsers,
}

// ParsePermission validates a permission key.
func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.TrimSpace(s))
	for _, known := range AllPermissions {
		if p == known {
			return p, nil
		}
	}
	return "", ErrUnknownPermission
}

// PermissionSet is the set of permissions granted to a principal.
type PermissionSet map[Permission]struct{}

// NewPermissionSet builds a set from the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// Has reports whether p is in the set.
func (s PermissionSet) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// Sorted returns the permissions in stable order.
func (s PermissionSet) Sorted() []Permission {
	out := make([]Permission, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PermissionGrant is one row of user_permissions.
type PermissionGrant struct {
	UserID     uuid.UUID  `json:"user_id"`
	Permission Permission `json:"permission"`
	Granted    bool       `json:"granted"`
	UpdatedAt  time.Time  `json:"updated_at,omitempty"`
}

// PermissionChangeRequest is the payload for staging one permission edit.
type PermissionChangeRequest struct {
	UserID     string `json:"user_id" binding:"required,uuid"`
	Permission string `json:"permission" binding:"required,permission_key"`
	Granted    *bool  `json:"granted" binding:"required"`
}

// PermissionMatrixRow is one principal's line in the permission editor.
type PermissionMatrixRow struct {
	UserID      uuid.UUID           `json:"user_id"`
	Email       string              `json:"email"`
	FullName    string              `json:"full_name"`
	Permissions map[Permission]bool `json:"permissions"`
	Pending     []Permission        `json:"pending"`
}

// SaveResult reports a permission save.
type SaveResult struct {
	Saved   int    `json:"saved"`
	Message string `json:"message"`
}
