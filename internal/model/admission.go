package model

import (
	"errors"
	"time"
)

// AdmissionStatus is the review state of an application.
type AdmissionStatus string

const (
	AdmissionPending  AdmissionStatus = "pending"
	AdmissionAccepted AdmissionStatus = "accepted"
	AdmissionRejected AdmissionStatus = "rejected"
)

// ErrUnknownAdmissionStatus is returned for a status outside pending, accepted, rejected.
var ErrUnknownAdmissionStatus = errors.New("unknown admission status")

// ParseAdmissionStatus validates a status taken from a query or payload.
func ParseAdmissionStatus(s string) (AdmissionStatus, error) {
	switch st := AdmissionStatus(s); st {
	case AdmissionPending, AdmissionAccepted, AdmissionRejected:
		return st, nil
	}
	return "", ErrUnknownAdmissionStatus
}

// AdmissionApplication is a public admission submission.
type AdmissionApplication struct {
	ID           int64           `json:"id"`
	StudentName  string          `json:"student_name"`
	GradeApplied string          `json:"grade_applied"`
	GuardianName string          `json:"guardian_name"`
	Phone        string          `json:"phone"`
	Email        *string         `json:"email,omitempty"`
	Note         *string         `json:"note,omitempty"`
	Status       AdmissionStatus `json:"status"`
	ReviewedBy   *string         `json:"reviewed_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// SubmitAdmissionRequest is the public submission payload.
type SubmitAdmissionRequest struct {
	StudentName  string  `json:"student_name" binding:"required,min=2,max=150"`
	GradeApplied string  `json:"grade_applied" binding:"required,max=50"`
	GuardianName string  `json:"guardian_name" binding:"required,min=2,max=150"`
	Phone        string  `json:"phone" binding:"required,min=9,max=30"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Note         *string `json:"note" binding:"omitempty,max=2000"`
}

// UpdateAdmissionStatusRequest is the staff review payload.
type UpdateAdmissionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending accepted rejected"`
}
