package models

import "github.com/Ramsey-B/sorrel/pkg/database"

// ClauseRelationType describes why a standard clause is linked to an entity
type ClauseRelationType string

const (
	ClauseRelationApplies       ClauseRelationType = "applies"
	ClauseRelationNotApplicable ClauseRelationType = "not_applicable"
	ClauseRelationCompetency    ClauseRelationType = "competency"
	ClauseRelationRequirement   ClauseRelationType = "requirement"
)

// ComplianceLevel records how well the entity satisfies the clause
type ComplianceLevel string

const (
	ComplianceCompliant     ComplianceLevel = "compliant"
	ComplianceNonCompliant  ComplianceLevel = "non_compliant"
	CompliancePartial       ComplianceLevel = "partial"
	CompliancePending       ComplianceLevel = "pending"
	ComplianceNotApplicable ComplianceLevel = "not_applicable"
)

// ClauseLink links a point of an external quality standard to a business
// entity together with its compliance assessment.
type ClauseLink struct {
	Envelope
	StandardID        string             `json:"standard_id" db:"standard_id"`
	ClauseReference   string             `json:"clause_reference" db:"clause_reference"`
	ClauseDescription string             `json:"clause_description,omitempty" db:"clause_description"`
	RelationType      ClauseRelationType `json:"relation_type" db:"relation_type"`
	ComplianceLevel   ComplianceLevel    `json:"compliance_level" db:"compliance_level"`
	Observations      string             `json:"observations,omitempty" db:"observations"`
	EvidenceReference string             `json:"evidence_reference,omitempty" db:"evidence_reference"`
	RequiredActions   string             `json:"required_actions,omitempty" db:"required_actions"`
}

// CreateClauseLinkRequest is the request body for attaching a standard clause to an entity
type CreateClauseLinkRequest struct {
	StandardID        string             `json:"standard_id" validate:"required"`
	ClauseReference   string             `json:"clause_reference" validate:"required,max=32"`
	ClauseDescription string             `json:"clause_description,omitempty"`
	RelationType      ClauseRelationType `json:"relation_type" validate:"required,oneof=applies not_applicable competency requirement"`
	ComplianceLevel   ComplianceLevel    `json:"compliance_level" validate:"required,oneof=compliant non_compliant partial pending not_applicable"`
	Observations      string             `json:"observations,omitempty"`
	EvidenceReference string             `json:"evidence_reference,omitempty"`
	RequiredActions   string             `json:"required_actions,omitempty"`
	ExtraData         database.ExtraData `json:"extra_data,omitempty"`
}

// UpdateClauseLinkRequest is the request body for updating a clause link
type UpdateClauseLinkRequest struct {
	ClauseDescription *string             `json:"clause_description,omitempty"`
	RelationType      *ClauseRelationType `json:"relation_type,omitempty" validate:"omitempty,oneof=applies not_applicable competency requirement"`
	ComplianceLevel   *ComplianceLevel    `json:"compliance_level,omitempty" validate:"omitempty,oneof=compliant non_compliant partial pending not_applicable"`
	Observations      *string             `json:"observations,omitempty"`
	EvidenceReference *string             `json:"evidence_reference,omitempty"`
	RequiredActions   *string             `json:"required_actions,omitempty"`
	ExtraData         database.ExtraData  `json:"extra_data,omitempty"`
}

// ClauseLinkListResponse is the API response for listing clause links
type ClauseLinkListResponse struct {
	Items      []ClauseLink `json:"items"`
	TotalCount int          `json:"total_count"`
}
