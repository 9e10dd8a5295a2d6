package documentlink

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	appctx "github.com/Ramsey-B/sorrel/pkg/context"
	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/metrics"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/registry"
	"github.com/Ramsey-B/sorrel/pkg/relerr"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

// DocumentLinkRepository defines the document-to-entity relation operations
type DocumentLinkRepository interface {
	Add(ctx context.Context, tenantID string, kind models.EntityKind, entityID string, req models.CreateDocumentLinkRequest) (*models.DocumentLink, error)
	GetByID(ctx context.Context, tenantID string, id string) (*models.DocumentLink, error)
	Update(ctx context.Context, tenantID string, id string, req models.UpdateDocumentLinkRequest) (*models.DocumentLink, error)
	SoftDelete(ctx context.Context, tenantID string, id string) error
	ListByEntity(ctx context.Context, tenantID string, kind models.EntityKind, entityID string, includeInactive bool) ([]models.DocumentLink, error)
	DeleteByTenant(ctx context.Context, tenantID string) (int64, error)
}

// Repository implements DocumentLinkRepository
type Repository struct {
	db       database.DB
	logger   ectologger.Logger
	entities registry.EntityResolver
}

// NewRepository creates a new document link repository
func NewRepository(db database.DB, logger ectologger.Logger, entities registry.EntityResolver) *Repository {
	return &Repository{
		db:       db,
		logger:   logger,
		entities: entities,
	}
}

const tableName = "entity_documents"

var columns = []string{
	"id", "tenant_id", "entity_kind", "entity_id",
	"document_id", "relation_type", "description", "is_required",
	"extra_data", "is_active", "created_at", "updated_at", "created_by", "updated_by",
}

// Add attaches a document to an entity. The entity must exist under the same tenant.
func (r *Repository) Add(ctx context.Context, tenantID string, kind models.EntityKind, entityID string, req models.CreateDocumentLinkRequest) (*models.DocumentLink, error) {
	ctx, span := tracing.StartSpan(ctx, "DocumentLinkRepository.Add")
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

	now := time.Now()
	id := uuid.New().String()
	actor := appctx.GetActor(ctx)

	sb := database.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(columns...)
	sb.Values(
		id, tenantID, kind, entityID,
		req.DocumentID, req.RelationType, req.Description, req.IsRequired,
		req.ExtraData, true, now, now, actor, actor,
	)

	query, args := sb.Build()

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id":   tenantID,
			"entity_kind": kind,
			"entity_id":   entityID,
			"document_id": req.DocumentID,
		}).Error("failed to create document link")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to create document link: %v", err)
	}

	metrics.RelationWritesTotal.WithLabelValues("document_link", "add").Inc()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":            id,
		"tenant_id":     tenantID,
		"entity_kind":   kind,
		"entity_id":     entityID,
		"document_id":   req.DocumentID,
		"relation_type": req.RelationType,
	}).Info("created document link")

	return r.GetByID(ctx, tenantID, id)
}

// GetByID gets a document link by ID, scoped to the tenant
func (r *Repository) GetByID(ctx context.Context, tenantID string, id string) (*models.DocumentLink, error) {
	ctx, span := tracing.StartSpan(ctx, "DocumentLinkRepository.GetByID")
	defer span.End()

	sb := database.NewSelectBuilder()
	sb.Select(columns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()

	var dl models.DocumentLink
	err := r.db.GetContext(ctx, &dl, query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":        id,
			"tenant_id": tenantID,
		}).Error("failed to get document link by ID")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to get document link: %v", err)
	}

	return &dl, nil
}

// Update updates an active document link owned by the tenant
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateDocumentLinkRequest) (*models.DocumentLink, error) {
	ctx, span := tracing.StartSpan(ctx, "DocumentLinkRepository.Update")
	defer span.End()

	sb := database.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("updated_at", time.Now()),
		sb.Assign("updated_by", appctx.GetActor(ctx)),
	)

	if req.RelationType != nil {
		sb.Set(sb.Assign("relation_type", *req.RelationType))
	}
	if req.Description != nil {
		sb.Set(sb.Assign("description", *req.Description))
	}
	if req.IsRequired != nil {
		sb.Set(sb.Assign("is_required", *req.IsRequired))
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
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":        id,
			"tenant_id": tenantID,
		}).Error("failed to update document link")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update document link: %v", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return nil, resolveMiss(ctx, r.db, r.logger, tenantID, id)
	}

	metrics.RelationWritesTotal.WithLabelValues("document_link", "update").Inc()

	return r.GetByID(ctx, tenantID, id)
}

// SoftDelete marks a document link inactive. Deleting an already-inactive
// row is a no-op, never an error.
func (r *Repository) SoftDelete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "DocumentLinkRepository.SoftDelete")
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
		}).Error("failed to soft delete document link")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to delete document link: %v", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		missErr := resolveMiss(ctx, r.db, r.logger, tenantID, id)
		if relerr.IsKind(missErr, relerr.KindNotFound) {
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

	metrics.RelationWritesTotal.WithLabelValues("document_link", "soft_delete").Inc()

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        id,
		"tenant_id": tenantID,
	}).Info("soft deleted document link")

	return nil
}

// ListByEntity returns the document links for one entity, oldest first.
func (r *Repository) ListByEntity(ctx context.Context, tenantID string, kind models.EntityKind, entityID string, includeInactive bool) ([]models.DocumentLink, error) {
	ctx, span := tracing.StartSpan(ctx, "DocumentLinkRepository.ListByEntity")
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

	items := []models.DocumentLink{}
	err := r.db.SelectContext(ctx, &items, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id":   tenantID,
			"entity_kind": kind,
			"entity_id":   entityID,
		}).Error("failed to list document links")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list document links: %v", err)
	}

	return items, nil
}

// DeleteByTenant hard deletes all document links for a tenant. Test cleanup
// only; the public contract never physically deletes rows.
func (r *Repository) DeleteByTenant(ctx context.Context, tenantID string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "DocumentLinkRepository.DeleteByTenant")
	defer span.End()

	res, err := r.db.ExecContext(ctx, "DELETE FROM "+tableName+" WHERE tenant_id = $1", tenantID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id": tenantID,
		}).Error("failed to delete document links for tenant")
		return 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to delete document links: %v", err)
	}

	return res.RowsAffected()
}
