package model

import "time"

// Personnel is an entry in the public staff directory.
type Personnel struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Position     string    `json:"position"`
	Department   string    `json:"department"`
	SubjectGroup *string   `json:"subject_group,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Email        *string   `json:"email,omitempty"`
	PhotoURL     *string   `json:"photo_url,omitempty"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PersonnelRequest is the payload for creating or updating a directory entry.
type PersonnelRequest struct {
	FullName     string  `json:"full_name" binding:"required,min=2,max=150"`
	Position     string  `json:"position" binding:"required,max=150"`
	Department   string  `json:"department" binding:"required,max=150"`
	SubjectGroup *string `json:"subject_group" binding:"omitempty,max=150"`
	Phone        *string `json:"phone" binding:"omitempty,max=30"`
	Email        *string `json:"email" binding:"omitempty,email"`
	PhotoURL     *string `json:"photo_url" binding:"omitempty,url"`
	SortOrder    int     `json:"sort_order" binding:"min=0"`
}
