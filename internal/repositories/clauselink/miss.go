package clauselink

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/relerr"
)

// resolveMiss classifies a zero-row update or delete: the target row may be
// missing entirely, owned by another tenant, or present but inactive.
func resolveMiss(ctx context.Context, db database.DB, logger ectologger.Logger, tenantID, id string) error {
	var ownerTenant string
	err := db.GetContext(ctx, &ownerTenant, "SELECT tenant_id FROM "+tableName+" WHERE id = $1", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return relerr.NewNotFound(id)
		}
		logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id}).Error("failed to resolve relation row owner")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to resolve relation row: %v", err)
	}

	if ownerTenant != tenantID {
		return relerr.NewCrossTenantAccess(id)
	}

	return relerr.NewNotFound(id)
}
