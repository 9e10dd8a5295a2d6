// Package registry is the single source of truth for which entity kinds can
// carry relations, and which table backs each kind. Adding a kind here is a
// deploy-time change; the relation tables themselves never need a schema
// migration for it.
package registry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

// EntityResolver is the tenant-scoped existence check the repositories
// consume. The registry implements it against the owning modules' tables.
type EntityResolver interface {
	Exists(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (bool, error)
}

// owningTables maps each entity kind to the table the owning module keeps it
// in. The map is the closed set: a kind missing here is invalid everywhere.
var owningTables = map[models.EntityKind]string{
	models.EntityKindMeeting:    "meetings",
	models.EntityKindAudit:      "audits",
	models.EntityKindProcess:    "processes",
	models.EntityKindTraining:   "trainings",
	models.EntityKindFinding:    "findings",
	models.EntityKindEvaluation: "evaluations",
}

// IsValidKind reports whether kind is a member of the closed set.
func IsValidKind(kind models.EntityKind) bool {
	_, ok := owningTables[kind]
	return ok
}

// TableFor resolves the owning table for a kind.
func TableFor(kind models.EntityKind) (string, error) {
	table, ok := owningTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown entity kind '%s'", kind)
	}
	return table, nil
}

// Kinds returns the closed set of valid entity kinds.
func Kinds() []models.EntityKind {
	kinds := make([]models.EntityKind, 0, len(owningTables))
	for kind := range owningTables {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Registry resolves entity existence against the owning modules' tables in
// the shared database.
type Registry struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRegistry(db database.DB, logger ectologger.Logger) *Registry {
	return &Registry{
		db:     db,
		logger: logger,
	}
}

// Exists checks that (tenant_id, entity_id) references a row in the kind's
// owning table. The table name comes from the closed map, never from input.
func (r *Registry) Exists(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "registry.Registry.Exists")
	defer span.End()

	table, err := TableFor(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1 AND tenant_id = $2)", table)

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, entityID, tenantID); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id":   tenantID,
			"entity_kind": kind,
			"entity_id":   entityID,
		}).Error("failed to check entity existence")
		return false, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to check entity existence: %v", err)
	}

	return exists, nil
}
