package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownRole is returned when a role string is not one of the known roles.
var ErrUnknownRole = errors.New("unknown role")

// Role is the coarse-grained category assigned to a principal.
type Role string

const (
	RoleNone     Role = ""
	RoleTeacher  Role = "teacher"
	RoleStudent  Role = "student"
	RoleGuardian Role = "guardian"
	RoleAdmin    Role = "admin"
)

// AllRoles lists every assignable role.
var AllRoles = []Role{RoleTeacher, RoleStudent, RoleGuardian, RoleAdmin}

// rolePrecedence decides which role wins when a principal holds several approved rows.
var rolePrecedence = map[Role]int{
	RoleAdmin:    4,
	RoleTeacher:  3,
	RoleGuardian: 2,
	RoleStudent:  1,
}

// thaiRoleLabels maps the status column of the role import sheet.
var thaiRoleLabels = map[string]Role{
	norm.NFC.String("ครู"):       RoleTeacher,
	norm.NFC.String("นักเรียน"):  RoleStudent,
	norm.NFC.String("ผู้ปกครอง"): RoleGuardian,
}

// ParseRole validates a role string at the data-access boundary.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := rolePrecedence[r]; !ok {
		return RoleNone, ErrUnknownRole
	}
	return r, nil
}

// RoleFromThaiLabel maps an import status label to a role.
// Admin is never importable.
func RoleFromThaiLabel(label string) (Role, bool) {
	r, ok := thaiRoleLabels[norm.NFC.String(strings.TrimSpace(label))]
	return r, ok
}

// Outranks reports whether r takes precedence over other.
func (r Role) Outranks(other Role) bool {
	return rolePrecedence[r] > rolePrecedence[other]
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := rolePrecedence[r]
	return ok
}

// SelfRegistrable reports whether a visitor may request r at sign-up.
func (r Role) SelfRegistrable() bool {
	return r == RoleTeacher || r == RoleStudent || r == RoleGuardian
}

// ApprovalStatus collapses the stored approval booleans into one value.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	// ApprovalInconsistent marks rows where both flags agree, which no write path produces.
	ApprovalInconsistent ApprovalStatus = "inconsistent"
)

// RoleAssignment is one row of user_roles.
type RoleAssignment struct {
	ID              int64     `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Role            Role      `json:"role"`
	Approved        bool      `json:"approved"`
	PendingApproval bool      `json:"pending_approval"`
	Email           string    `json:"email"`
	CreatedAt       time.Time `json:"created_at"`
}

// Status derives the approval status from the two stored flags.
func (a RoleAssignment) Status() ApprovalStatus {
	switch {
	case a.Approved && !a.PendingApproval:
		return ApprovalApproved
	case !a.Approved && a.PendingApproval:
		return ApprovalPending
	default:
		return ApprovalInconsistent
	}
}

// MarshalJSON adds the derived status next to the stored flags.
func (a RoleAssignment) MarshalJSON() ([]byte, error) {
	type row RoleAssignment
	return json.Marshal(struct {
		row
		Status ApprovalStatus `json:"status"`
	}{row(a), a.Status()})
}

// AddRoleRequest is the payload for granting a role to a principal.
type AddRoleRequest struct {
	Role string `json:"role" binding:"required,portal_role"`
}

// BulkApprovalResult reports the outcome of approving every pending principal.
type BulkApprovalResult struct {
	Approved []uuid.UUID      `json:"approved"`
	Failed   []ApprovalFailure `json:"failed"`
}

// ApprovalFailure describes one principal whose approval update failed.
type ApprovalFailure struct {
	UserID uuid.UUID `json:"user_id"`
	Error  string    `json:"error"`
}
