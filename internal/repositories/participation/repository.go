package participation

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/lib/pq"

	appctx "github.com/Ramsey-B/sorrel/pkg/context"
	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/metrics"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/registry"
	"github.com/Ramsey-B/sorrel/pkg/relerr"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

// ParticipationRepository defines the person-to-entity relation operations
type ParticipationRepository interface {
	Add(ctx context.Context, tenantID string, kind models.EntityKind, entityID string, req models.CreateParticipationRequest) (*models.Participation, error)
	GetByID(ctx context.Context, tenantID string, id string) (*models.Participation, error)
	Update(ctx context.Context, tenantID string, id string, req models.UpdateParticipationRequest) (*models.Participation, error)
	SoftDelete(ctx context.Context, tenantID string, id string) error
	ListByEntity(ctx context.Context, tenantID string, kind models.EntityKind, entityID string, includeInactive bool) ([]models.Participation, error)
	FindActiveByKey(ctx context.Context, tenantID string, kind models.EntityKind, entityID, personID, role string) (*models.Participation, error)
	DeleteByTenant(ctx context.Context, tenantID string) (int64, error)
}

// Repository implements ParticipationRepository
type Repository struct {
	db       database.DB
	logger   ectologger.Logger
	entities registry.EntityResolver
}

// NewRepository creates a new participation repository
func NewRepository(db database.DB, logger ectologger.Logger, entities registry.EntityResolver) *Repository {
	return &Repository{
		db:       db,
		logger:   logger,
		entities: entities,
	}
}

const tableName = "entity_participants"

// activeKeyConstraint is the partial unique index guarding invariant: at most
// one active participation per (tenant, kind, entity, person, role). The
// index, not a check-then-insert, is what makes concurrent adds safe.
const activeKeyConstraint = "uq_entity_participants_active_key"

var columns = []string{
	"id", "tenant_id", "entity_kind", "entity_id",
	"person_id", "role", "attended", "absence_justification", "notes",
	"extra_data", "is_active", "created_at", "updated_at", "created_by", "updated_by",
}

// Add attaches a person to an entity. The entity must exist under the same
// tenant. An existing active participation with the same key is rejected,
// or updated when the request asks for ConflictModeUpdate.
func (r *Repository) Add(ctx context.Context, tenantID string, kind models.EntityKind, entityID string, req models.CreateParticipationRequest) (*models.Participation, error) {
	ctx, span := tracing.StartSpan(ctx, "ParticipationRepository.Add")
	defer span.End()

	if !registry.IsValidKind(kind) {
		return nil, relerr.NewInvalidKind(string(kind))
	}

	exists, err := r.entities.Exists(ctx, tenantID, kind, entityID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, relerr.NewEntityNotFound(string(kind), entityID)
	}

	if req.OnConflict == models.ConflictModeUpdate {
		existing, err := r.FindActiveByKey(ctx, tenantID, kind, entityID, req.PersonID, req.Role)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return r.Update(ctx, tenantID, existing.ID, models.UpdateParticipationRequest{
				Attended:             req.Attended,
				AbsenceJustification: req.AbsenceJustification,
				Notes:                &req.Notes,
				ExtraData:            req.ExtraData,
			})
		}
	}

	now := time.Now()
	id := uuid.New().String()
	actor := appctx.GetActor(ctx)

	sb := database.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(columns...)
	sb.Values(
		id, tenantID, kind, entityID,
		req.PersonID, req.Role, req.Attended, req.AbsenceJustification, req.Notes,
		req.ExtraData, true, now, now, actor, actor,
	)

	query, args := sb.Build()

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == activeKeyConstraint {
			metrics.RelationConflictsTotal.WithLabelValues("participation").Inc()
			return nil, relerr.NewDuplicateActiveRelation(string(kind), entityID, req.PersonID, req.Role)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id":   tenantID,
			"entity_kind": kind,
			"entity_id":   entityID,
			"person_id":   req.PersonID,
		}).Error("failed to create participation")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to create participation: %v", err)
	}

	metrics.RelationWritesTotal.WithLabelValues("participation", "add").Inc()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":          id,
		"tenant_id":   tenantID,
		"entity_kind": kind,
		"entity_id":   entityID,
		"person_id":   req.PersonID,
		"role":        req.Role,
	}).Info("created participation")

	return r.GetByID(ctx, tenantID, id)
}

// GetByID gets a participation by ID, scoped to the tenant
func (r *Repository) GetByID(ctx context.Context, tenantID string, id string) (*models.Participation, error) {
	ctx, span := tracing.StartSpan(ctx, "ParticipationRepository.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()

	var p models.Participation
	err := r.db.GetContext(ctx, &p, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":        id,
			"tenant_id": tenantID,
		}).Error("failed to get participation by ID")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to get participation: %v", err)
	}

	return &p, nil
}

// Update updates an active participation owned by the tenant
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateParticipationRequest) (*models.Participation, error) {
	ctx, span := tracing.StartSpan(ctx, "ParticipationRepository.Update")
	defer span.End()

	sb := database.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("updated_at", time.Now()),
		sb.Assign("updated_by", appctx.GetActor(ctx)),
	)

	if req.Role != nil {
		sb.Set(sb.Assign("role", *req.Role))
	}
	if req.Attended != nil {
		sb.Set(sb.Assign("attended", *req.Attended))
	}
	if req.AbsenceJustification != nil {
		sb.Set(sb.Assign("absence_justification", *req.AbsenceJustification))
	}
	if req.Notes != nil {
		sb.Set(sb.Assign("notes", *req.Notes))
	}
	if req.ExtraData != nil {
		sb.Set(sb.Assign("extra_data", req.ExtraData))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == activeKeyConstraint {
			// The row exists and is owned by the caller; the new role
			// collides with another active participation.
			metrics.RelationConflictsTotal.WithLabelValues("participation").Inc()
			existing, getErr := r.GetByID(ctx, tenantID, id)
			if getErr == nil && existing != nil {
				role := existing.Role
				if req.Role != nil {
					role = *req.Role
				}
				return nil, relerr.NewDuplicateActiveRelation(string(existing.EntityKind), existing.EntityID, existing.PersonID, role)
			}
			return nil, relerr.NewNotFound(id)
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":        id,
			"tenant_id": tenantID,
		}).Error("failed to update participation")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update participation: %v", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, resolveMiss(ctx, r.db, r.logger, tenantID, id)
	}

	metrics.RelationWritesTotal.WithLabelValues("participation", "update").Inc()

	return r.GetByID(ctx, tenantID, id)
}

// SoftDelete marks a participation inactive. Deleting an already-inactive
// row is a no-op, never an error.
func (r *Repository) SoftDelete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "ParticipationRepository.SoftDelete")
	defer span.End()

	sb := database.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("is_active", false),
		sb.Assign("updated_at", time.Now()),
		sb.Assign("updated_by", appctx.GetActor(ctx)),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":        id,
			"tenant_id": tenantID,
		}).Error("failed to soft delete participation")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to delete participation: %v", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		missErr := resolveMiss(ctx, r.db, r.logger, tenantID, id)
		if relerr.IsKind(missErr, relerr.KindNotFound) {
			// Row exists but is already inactive: idempotent no-op.
			existing, err := r.GetByID(ctx, tenantID, id)
			if err != nil {
				return err
			}
			if existing != nil {
				return nil
			}
		}
		return missErr
	}

	metrics.RelationWritesTotal.WithLabelValues("participation", "soft_delete").Inc()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        id,
		"tenant_id": tenantID,
	}).Info("soft deleted participation")

	return nil
}

// ListByEntity returns the participations for one entity, oldest first.
// Inactive rows are excluded unless includeInactive is set.
func (r *Repository) ListByEntity(ctx context.Context, tenantID string, kind models.EntityKind, entityID string, includeInactive bool) ([]models.Participation, error) {
	ctx, span := tracing.StartSpan(ctx, "ParticipationRepository.ListByEntity")
	defer span.End()

	if !registry.IsValidKind(kind) {
		return nil, relerr.NewInvalidKind(string(kind))
	}

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	where := []string{
		sb.Equal("tenant_id", tenantID),
		sb.Equal("entity_kind", kind),
		sb.Equal("entity_id", entityID),
	}
	if !includeInactive {
		where = append(where, sb.Equal("is_active", true))
	}
	sb.Where(where...)
	sb.OrderBy("created_at ASC")

	query, args := sb.Build()

	items := []models.Participation{}
	err := r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id":   tenantID,
			"entity_kind": kind,
			"entity_id":   entityID,
		}).Error("failed to list participations")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list participations: %v", err)
	}

	return items, nil
}

// FindActiveByKey returns the single active participation for the full key,
// or nil if none exists.
func (r *Repository) FindActiveByKey(ctx context.Context, tenantID string, kind models.EntityKind, entityID, personID, role string) (*models.Participation, error) {
	ctx, span := tracing.StartSpan(ctx, "ParticipationRepository.FindActiveByKey")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("entity_kind", kind),
		sb.Equal("entity_id", entityID),
		sb.Equal("person_id", personID),
		sb.Equal("role", role),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var p models.Participation
	err := r.db.GetContext(ctx, &p, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id":   tenantID,
			"entity_kind": kind,
			"entity_id":   entityID,
			"person_id":   personID,
			"role":        role,
		}).Error("failed to find participation by key")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to find participation: %v", err)
	}

	return &p, nil
}

// DeleteByTenant hard deletes all participations for a tenant. Test cleanup
// only; the public contract never physically deletes rows.
func (r *Repository) DeleteByTenant(ctx context.Context, tenantID string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ParticipationRepository.DeleteByTenant")
	defer span.End()

	res, err := r.db.ExecContext(ctx, "DELETE FROM "+tableName+" WHERE tenant_id = $1", tenantID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id": tenantID,
		}).Error("failed to delete participations for tenant")
		return 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to delete participations: %v", err)
	}

	return res.RowsAffected()
}
