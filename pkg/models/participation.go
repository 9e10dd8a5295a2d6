package models

import "github.com/Ramsey-B/sorrel/pkg/database"

// Participation links a person to a business entity (meeting attendee,
// audit auditor, training instructor, ...). At most one active row may
// exist per (tenant_id, entity_kind, entity_id, person_id, role).
type Participation struct {
	Envelope
	PersonID             string  `json:"person_id" db:"person_id"`
	Role                 string  `json:"role" db:"role"`
	Attended             *bool   `json:"attended,omitempty" db:"attended"`
	AbsenceJustification *string `json:"absence_justification,omitempty" db:"absence_justification"`
	Notes                string  `json:"notes,omitempty" db:"notes"`
}

// ConflictMode controls what Add does when an active participation already
// exists for the same key.
type ConflictMode string

const (
	// ConflictModeReject fails the add with a duplicate error
	ConflictModeReject ConflictMode = "reject"
	// ConflictModeUpdate updates the existing active row instead
	ConflictModeUpdate ConflictMode = "update"
)

// CreateParticipationRequest is the request body for attaching a person to an entity
type CreateParticipationRequest struct {
	PersonID             string             `json:"person_id" validate:"required"`
	Role                 string             `json:"role" validate:"required,max=64"`
	Attended             *bool              `json:"attended,omitempty"`
	AbsenceJustification *string            `json:"absence_justification,omitempty"`
	Notes                string             `json:"notes,omitempty"`
	ExtraData            database.ExtraData `json:"extra_data,omitempty"`
	// OnConflict selects reject (default) or update semantics for an
	// existing active participation with the same key.
	OnConflict ConflictMode `json:"on_conflict,omitempty" validate:"omitempty,oneof=reject update"`
}

// UpdateParticipationRequest is the request body for updating a participation
type UpdateParticipationRequest struct {
	Role                 *string            `json:"role,omitempty" validate:"omitempty,max=64"`
	Attended             *bool              `json:"attended,omitempty"`
	AbsenceJustification *string            `json:"absence_justification,omitempty"`
	Notes                *string            `json:"notes,omitempty"`
	ExtraData            database.ExtraData `json:"extra_data,omitempty"`
}

// ParticipationListResponse is the API response for listing participations
type ParticipationListResponse struct {
	Items      []Participation `json:"items"`
	TotalCount int             `json:"total_count"`
}
