package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sorrel/internal/repositories/aggregation"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/registry"
	"github.com/Ramsey-B/sorrel/pkg/relerr"
)

// AggregationHandler handles rollup requests over the relation store
type AggregationHandler struct {
	repo aggregation.AggregationRepository
}

// NewAggregationHandler creates a new aggregation handler
func NewAggregationHandler(repo aggregation.AggregationRepository) *AggregationHandler {
	return &AggregationHandler{
		repo: repo,
	}
}

// RegisterRoutes registers the aggregation routes
func (h *AggregationHandler) RegisterRoutes(g *echo.Group) {
	counts := g.Group("/relations/:entity_kind/:entity_id/counts")
	counts.GET("/participants", h.CountParticipants)
	counts.GET("/documents", h.CountDocuments)
	counts.GET("/clauses", h.CountClauses)
	g.GET("/relations/:entity_kind/:entity_id/rollup", h.Rollup)

	batch := g.Group("/relations/counts")
	batch.POST("/participants", h.BatchCountParticipants)
	batch.POST("/documents", h.BatchCountDocuments)
	batch.POST("/clauses", h.BatchCountClauses)
}

// CountParticipants handles GET /relations/:entity_kind/:entity_id/counts/participants
func (h *AggregationHandler) CountParticipants(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	kind, entityID, err := EntityRef(c)
	if err != nil {
		return err
	}

	counts, err := h.repo.CountParticipants(ctx, tenantID, kind, entityID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, counts)
}

// CountDocuments handles GET /relations/:entity_kind/:entity_id/counts/documents
func (h *AggregationHandler) CountDocuments(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	kind, entityID, err := EntityRef(c)
	if err != nil {
		return err
	}

	counts, err := h.repo.CountDocuments(ctx, tenantID, kind, entityID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, counts)
}

// CountClauses handles GET /relations/:entity_kind/:entity_id/counts/clauses
func (h *AggregationHandler) CountClauses(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	kind, entityID, err := EntityRef(c)
	if err != nil {
		return err
	}

	counts, err := h.repo.CountClauses(ctx, tenantID, kind, entityID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, counts)
}

// Rollup handles GET /relations/:entity_kind/:entity_id/rollup
func (h *AggregationHandler) Rollup(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	kind, entityID, err := EntityRef(c)
	if err != nil {
		return err
	}

	rollup, err := h.repo.Rollup(ctx, tenantID, kind, entityID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, rollup)
}

func (h *AggregationHandler) bindBatchRequest(c echo.Context) (*models.BatchCountsRequest, error) {
	var req models.BatchCountsRequest
	if err := c.Bind(&req); err != nil {
		return nil, BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return nil, BadRequest(err.Error())
	}
	if !registry.IsValidKind(req.EntityKind) {
		return nil, relerr.NewInvalidKind(string(req.EntityKind))
	}
	return &req, nil
}

// BatchCountParticipants handles POST /relations/counts/participants
func (h *AggregationHandler) BatchCountParticipants(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	req, err := h.bindBatchRequest(c)
	if err != nil {
		return err
	}

	counts, err := h.repo.CountParticipantsBatch(ctx, tenantID, req.EntityKind, req.EntityIDs)
	if err != nil {
		return err
	}

	return SuccessResponse(c, models.BatchParticipantCountsResponse{Counts: counts})
}

// BatchCountDocuments handles POST /relations/counts/documents
func (h *AggregationHandler) BatchCountDocuments(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	req, err := h.bindBatchRequest(c)
	if err != nil {
		return err
	}

	counts, err := h.repo.CountDocumentsBatch(ctx, tenantID, req.EntityKind, req.EntityIDs)
	if err != nil {
		return err
	}

	return SuccessResponse(c, models.BatchDocumentCountsResponse{Counts: counts})
}

// BatchCountClauses handles POST /relations/counts/clauses
func (h *AggregationHandler) BatchCountClauses(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	req, err := h.bindBatchRequest(c)
	if err != nil {
		return err
	}

	counts, err := h.repo.CountClausesBatch(ctx, tenantID, req.EntityKind, req.EntityIDs)
	if err != nil {
		return err
	}

	return SuccessResponse(c, models.BatchClauseCountsResponse{Counts: counts})
}
