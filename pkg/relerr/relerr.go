// Package relerr defines the error kinds surfaced by the relation store.
package relerr

import (
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

type Kind string

const (
	// KindInvalidKind is returned when entity_kind is not in the registry's closed set
	KindInvalidKind Kind = "invalid_kind"
	// KindEntityNotFound is returned when the referenced entity does not exist under the caller's tenant
	KindEntityNotFound Kind = "entity_not_found"
	// KindCrossTenantAccess is returned when a caller targets a relation row owned by another tenant
	KindCrossTenantAccess Kind = "cross_tenant_access"
	// KindDuplicateActiveRelation is returned when an add would violate active-participation uniqueness
	KindDuplicateActiveRelation Kind = "duplicate_active_relation"
	// KindNotFound is returned when the update/delete target relation row is missing
	KindNotFound Kind = "not_found"
)

// RelationError is a recoverable, caller-reportable failure of a relation
// store operation. It never indicates a storage fault; those are wrapped as
// plain httperror 500s by the repositories.
type RelationError struct {
	Kind    Kind
	Message string
	Meta    map[string]any
}

func (e *RelationError) Error() string {
	return e.Message
}

func (e *RelationError) AddMetaValue(key string, value any) *RelationError {
	if e.Meta == nil {
		e.Meta = map[string]any{}
	}
	e.Meta[key] = value
	return e
}

func newError(kind Kind, format string, args ...any) *RelationError {
	return &RelationError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewInvalidKind(entityKind string) *RelationError {
	return newError(KindInvalidKind, "unknown entity kind '%s'", entityKind).
		AddMetaValue("entity_kind", entityKind)
}

func NewEntityNotFound(entityKind, entityID string) *RelationError {
	return newError(KindEntityNotFound, "%s '%s' does not exist for this tenant", entityKind, entityID).
		AddMetaValue("entity_kind", entityKind).
		AddMetaValue("entity_id", entityID)
}

func NewCrossTenantAccess(relationID string) *RelationError {
	return newError(KindCrossTenantAccess, "relation '%s' belongs to another tenant", relationID).
		AddMetaValue("relation_id", relationID)
}

func NewDuplicateActiveRelation(entityKind, entityID, personID, role string) *RelationError {
	return newError(KindDuplicateActiveRelation, "an active participation already exists for person '%s' with role '%s'", personID, role).
		AddMetaValue("entity_kind", entityKind).
		AddMetaValue("entity_id", entityID).
		AddMetaValue("person_id", personID).
		AddMetaValue("role", role)
}

func NewNotFound(relationID string) *RelationError {
	return newError(KindNotFound, "relation '%s' not found", relationID).
		AddMetaValue("relation_id", relationID)
}

func IsRelationError(err error) bool {
	_, ok := err.(*RelationError)
	return ok
}

// IsKind reports whether err is a RelationError of the given kind.
func IsKind(err error, kind Kind) bool {
	relErr, ok := err.(*RelationError)
	return ok && relErr.Kind == kind
}

var statusByKind = map[Kind]int{
	KindInvalidKind:             http.StatusBadRequest,
	KindEntityNotFound:          http.StatusUnprocessableEntity,
	KindCrossTenantAccess:       http.StatusForbidden,
	KindDuplicateActiveRelation: http.StatusConflict,
	KindNotFound:                http.StatusNotFound,
}

// ToHTTPError maps a RelationError onto its HTTP status. Non-relation errors
// pass through unchanged.
func ToHTTPError(err error) error {
	relErr, ok := err.(*RelationError)
	if !ok {
		return err
	}

	status, ok := statusByKind[relErr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	httpErr := httperror.NewHTTPError(status, relErr.Message)
	for key, value := range relErr.Meta {
		httpErr = httpErr.AddMetaValue(key, value)
	}
	httpErr = httpErr.AddMetaValue("kind", string(relErr.Kind))
	return httpErr
}
