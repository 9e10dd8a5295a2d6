package models

import "time"

// RowFailure records a legacy row that could not be migrated, with enough
// context for an operator to fix it by hand.
type RowFailure struct {
	LegacyID string `json:"legacy_id"`
	Reason   string `json:"reason"`
}

// BackfillSummary is the observable outcome of one backfill run. Re-running
// a completed job yields migrated=0 with everything counted as skipped.
type BackfillSummary struct {
	LegacyTable string       `json:"legacy_table"`
	EntityKind  EntityKind   `json:"entity_kind"`
	Migrated    int          `json:"migrated"`
	Skipped     int          `json:"skipped"`
	Failed      int          `json:"failed"`
	Failures    []RowFailure `json:"failures,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at"`
}
