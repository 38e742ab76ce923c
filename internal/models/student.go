package models

import "strings"

// RegistrationStatus is the lifecycle of a hostel registration.
type RegistrationStatus string

const (
	RegistrationDraft     RegistrationStatus = "draft"
	RegistrationSubmitted RegistrationStatus = "submitted"
	RegistrationApproved  RegistrationStatus = "approved"
	RegistrationRejected  RegistrationStatus = "rejected"
)

// DocumentStatus is the verification state of an uploaded document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

// EligibleStudent is the solver's immutable snapshot of a student awaiting a room.
type EligibleStudent struct {
	ID             string  `db:"id" json:"id" validate:"required"`
	FirstName      string  `db:"firstname" json:"firstname"`
	LastName       string  `db:"lastname" json:"lastname"`
	MatricNumber   string  `db:"matric_number" json:"matricNumber" validate:"required"`
	Level          int     `db:"level" json:"level" validate:"gte=0"`
	PreferredBlock *string `db:"preferred_block" json:"preferredBlock,omitempty"`
}

// Name joins first and last name the way reports display it.
func (s EligibleStudent) Name() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Prefers reports whether block is the student's preferred block.
func (s EligibleStudent) Prefers(block string) bool {
	return s.PreferredBlock != nil && *s.PreferredBlock == block
}

// StudentDisplay holds the fields re-read for the result view.
type StudentDisplay struct {
	ID           string `db:"id"`
	FirstName    string `db:"firstname"`
	LastName     string `db:"lastname"`
	MatricNumber string `db:"matric_number"`
}

// Name joins first and last name.
func (s StudentDisplay) Name() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}
