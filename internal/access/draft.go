package access

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/schoolsite/portal-backend/internal/model"
)

// Change is one staged edit of the permission matrix.
type Change struct {
	UserID     uuid.UUID        `json:"user_id"`
	Permission model.Permission `json:"permission"`
	Granted    bool             `json:"granted"`
}

// Field is the draft hash field for the change's cell.
func (c Change) Field() string {
	return c.UserID.String() + ":" + string(c.Permission)
}

// ParseChange decodes a draft hash entry.
func ParseChange(field, value string) (Change, error) {
	id, perm, ok := strings.Cut(field, ":")
	if !ok {
		return Change{}, fmt.Errorf("malformed draft field %q", field)
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return Change{}, fmt.Errorf("draft field user id: %w", err)
	}
	p, err := model.ParsePermission(perm)
	if err != nil {
		return Change{}, fmt.Errorf("draft field %q: %w", field, err)
	}
	switch value {
	case "1":
		return Change{UserID: uid, Permission: p, Granted: true}, nil
	case "0":
		return Change{UserID: uid, Permission: p, Granted: false}, nil
	default:
		return Change{}, fmt.Errorf("draft value %q is not 0 or 1", value)
	}
}

// EncodeGranted is the draft hash value of a change.
func EncodeGranted(granted bool) string {
	if granted {
		return "1"
	}
	return "0"
}

// Draft is the buffer of unsaved permission edits of one admin.
// A later edit of the same cell replaces the earlier one.
type Draft struct {
	changes map[string]Change
}

// NewDraft builds a draft from changes applied in order.
func NewDraft(changes ...Change) *Draft {
	d := &Draft{changes: make(map[string]Change, len(changes))}
	for _, c := range changes {
		d.Stage(c)
	}
	return d
}

// Stage records c, replacing any pending edit of the same cell.
func (d *Draft) Stage(c Change) {
	d.changes[c.Field()] = c
}

// Len returns the number of pending cells.
func (d *Draft) Len() int { return len(d.changes) }

// Empty reports whether nothing is pending.
func (d *Draft) Empty() bool { return len(d.changes) == 0 }

// Pending returns the pending edit of a cell, if any.
func (d *Draft) Pending(userID uuid.UUID, p model.Permission) (Change, bool) {
	c, ok := d.changes[Change{UserID: userID, Permission: p}.Field()]
	return c, ok
}

// Value returns the checkbox value of a cell: the pending edit when one
// exists, the persisted value otherwise.
func (d *Draft) Value(userID uuid.UUID, p model.Permission, persisted bool) bool {
	if c, ok := d.Pending(userID, p); ok {
		return c.Granted
	}
	return persisted
}

// Changes returns the pending edits ordered by user then permission.
func (d *Draft) Changes() []Change {
	out := make([]Change, 0, len(d.changes))
	for _, c := range d.changes {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Field() < out[j].Field()
	})
	return out
}
