package models

import (
	"time"

	"github.com/Ramsey-B/sorrel/pkg/database"
)

// EntityKind identifies which business object type a relation targets. The
// set is closed; the registry rejects anything else.
type EntityKind string

const (
	EntityKindMeeting    EntityKind = "meeting"
	EntityKindAudit      EntityKind = "audit"
	EntityKindProcess    EntityKind = "process"
	EntityKindTraining   EntityKind = "training"
	EntityKindFinding    EntityKind = "finding"
	EntityKindEvaluation EntityKind = "evaluation"
)

// Envelope is the shared shape of every relation record. All three relation
// tables carry these columns; kind-specific payloads extend it.
type Envelope struct {
	ID         string             `json:"id" db:"id"`
	TenantID   string             `json:"tenant_id" db:"tenant_id"`
	EntityKind EntityKind         `json:"entity_kind" db:"entity_kind"`
	EntityID   string             `json:"entity_id" db:"entity_id"`
	CreatedAt  time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" db:"updated_at"`
	CreatedBy  *string            `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy  *string            `json:"updated_by,omitempty" db:"updated_by"`
	IsActive   bool               `json:"is_active" db:"is_active"`
	ExtraData  database.ExtraData `json:"extra_data,omitempty" db:"extra_data"`
}
