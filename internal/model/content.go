package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownContentKind is returned when a kind is not one of news, activities, media.
var ErrUnknownContentKind = errors.New("unknown content kind")

// ContentKind identifies one of the public content tables.
type ContentKind string

const (
	ContentNews       ContentKind = "news"
	ContentActivities ContentKind = "activities"
	ContentMedia      ContentKind = "media"
)

// contentTables whitelists the table behind each kind.
var contentTables = map[ContentKind]string{
	ContentNews:       "news",
	ContentActivities: "activities",
	ContentMedia:      "media_resources",
}

// contentPermissions maps each kind to the permission guarding its writes.
var contentPermissions = map[ContentKind]Permission{
	ContentNews:       PermissionManageNews,
	ContentActivities: PermissionManageActivities,
	ContentMedia:      PermissionManageMedia,
}

// ParseContentKind validates a kind taken from a URL segment.
func ParseContentKind(s string) (ContentKind, error) {
	k := ContentKind(s)
	if _, ok := contentTables[k]; !ok {
		return "", ErrUnknownContentKind
	}
	return k, nil
}

// Table returns the backing table name.
func (k ContentKind) Table() string { return contentTables[k] }

// Permission returns the permission that gates writes to this kind.
func (k ContentKind) Permission() Permission { return contentPermissions[k] }

// ContentItem is a news article, activity, or media resource.
type ContentItem struct {
	ID            int64       `json:"id"`
	Kind          ContentKind `json:"kind"`
	Title         string      `json:"title"`
	Content       string      `json:"content"`
	AuthorName    string      `json:"author_name"`
	Category      string      `json:"category"`
	CoverImageURL *string     `json:"cover_image_url,omitempty"`
	LinkURL       *string     `json:"link_url,omitempty"`
	CreatedBy     *uuid.UUID  `json:"created_by,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// ContentRequest is the payload for creating or updating a content item.
type ContentRequest struct {
	Title         string  `json:"title" binding:"required,min=1,max=255"`
	Content       string  `json:"content" binding:"required"`
	AuthorName    string  `json:"author_name" binding:"required,max=150"`
	Category      string  `json:"category" binding:"required,max=100"`
	CoverImageURL *string `json:"cover_image_url" binding:"omitempty,url"`
	LinkURL       *string `json:"link_url" binding:"omitempty,url"`
}

// ContentFilter narrows a public listing.
type ContentFilter struct {
	Category string
	Page     int
	PerPage  int
}

// Normalize clamps paging to sane bounds.
func (f *ContentFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > 100 {
		f.PerPage = 20
	}
}

// Offset returns the row offset of the current page.
func (f ContentFilter) Offset() int {
	return (f.Page - 1) * f.PerPage
}
