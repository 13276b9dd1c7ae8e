package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction names an audited admin mutation.
type AuditAction string

const (
	AuditPermissionsSaved AuditAction = "permissions.saved"
	AuditRolesApproved    AuditAction = "roles.approved"
	AuditRoleAdded        AuditAction = "roles.added"
	AuditRolesDeleted     AuditAction = "roles.deleted"
	AuditRolesImported    AuditAction = "roles.imported"
	AuditContentDeleted   AuditAction = "content.deleted"
	AuditPersonnelDeleted AuditAction = "personnel.deleted"
	AuditAdmissionUpdated AuditAction = "admission.updated"
)

// AuditEntry is queued by services and persisted by the audit worker.
type AuditEntry struct {
	ID        int64           `json:"id,omitempty"`
	ActorID   uuid.UUID       `json:"actor_id"`
	Action    AuditAction     `json:"action"`
	Target    string          `json:"target"`
	Detail    json.RawMessage `json:"detail,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}
