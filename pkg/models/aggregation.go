package models

// ParticipantCounts is the rollup of active participations for one entity
type ParticipantCounts struct {
	Total  int            `json:"total"`
	ByRole map[string]int `json:"by_role"`
}

// DocumentCounts is the rollup of active document links for one entity
type DocumentCounts struct {
	Total          int                          `json:"total"`
	ByRelationType map[DocumentRelationType]int `json:"by_relation_type"`
}

// ClauseCounts is the rollup of active clause links for one entity
type ClauseCounts struct {
	Total             int                     `json:"total"`
	ByComplianceLevel map[ComplianceLevel]int `json:"by_compliance_level"`
}

// EntityRollup combines all three rollups for one entity
type EntityRollup struct {
	EntityKind   EntityKind        `json:"entity_kind"`
	EntityID     string            `json:"entity_id"`
	Participants ParticipantCounts `json:"participants"`
	Documents    DocumentCounts    `json:"documents"`
	Clauses      ClauseCounts      `json:"clauses"`
}

// BatchCountsRequest asks for rollups over many entities of one kind in a
// single query, instead of per-entity calls in a loop.
type BatchCountsRequest struct {
	EntityKind EntityKind `json:"entity_kind" validate:"required"`
	EntityIDs  []string   `json:"entity_ids" validate:"required,min=1,max=500,dive,required"`
}

// BatchParticipantCountsResponse maps entity id to its participant rollup
type BatchParticipantCountsResponse struct {
	Counts map[string]ParticipantCounts `json:"counts"`
}

// BatchDocumentCountsResponse maps entity id to its document rollup
type BatchDocumentCountsResponse struct {
	Counts map[string]DocumentCounts `json:"counts"`
}

// BatchClauseCountsResponse maps entity id to its clause rollup
type BatchClauseCountsResponse struct {
	Counts map[string]ClauseCounts `json:"counts"`
}
