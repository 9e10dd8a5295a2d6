package models

import "github.com/Ramsey-B/sorrel/pkg/database"

// DocumentRelationType describes how a document relates to its entity
type DocumentRelationType string

const (
	DocumentRelationAttachment DocumentRelationType = "attachment"
	DocumentRelationEvidence   DocumentRelationType = "evidence"
	DocumentRelationMaterial   DocumentRelationType = "material"
	DocumentRelationResult     DocumentRelationType = "result"
	DocumentRelationInput      DocumentRelationType = "input"
	DocumentRelationOutput     DocumentRelationType = "output"
)

// DocumentLink links a document to a business entity
type DocumentLink struct {
	Envelope
	DocumentID   string               `json:"document_id" db:"document_id"`
	RelationType DocumentRelationType `json:"relation_type" db:"relation_type"`
	Description  string               `json:"description,omitempty" db:"description"`
	IsRequired   bool                 `json:"is_required" db:"is_required"`
}

// CreateDocumentLinkRequest is the request body for attaching a document to an entity
type CreateDocumentLinkRequest struct {
	DocumentID   string               `json:"document_id" validate:"required"`
	RelationType DocumentRelationType `json:"relation_type" validate:"required,oneof=attachment evidence material result input output"`
	Description  string               `json:"description,omitempty"`
	IsRequired   bool                 `json:"is_required"`
	ExtraData    database.ExtraData   `json:"extra_data,omitempty"`
}

// UpdateDocumentLinkRequest is the request body for updating a document link
type UpdateDocumentLinkRequest struct {
	RelationType *DocumentRelationType `json:"relation_type,omitempty" validate:"omitempty,oneof=attachment evidence material result input output"`
	Description  *string               `json:"description,omitempty"`
	IsRequired   *bool                 `json:"is_required,omitempty"`
	ExtraData    database.ExtraData    `json:"extra_data,omitempty"`
}

// DocumentLinkListResponse is the API response for listing document links
type DocumentLinkListResponse struct {
	Items      []DocumentLink `json:"items"`
	TotalCount int            `json:"total_count"`
}
