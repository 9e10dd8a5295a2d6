package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sorrel/internal/repositories/clauselink"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/relerr"
)

// ClauseLinkHandler handles standard-clause-to-entity relation requests
type ClauseLinkHandler struct {
	repo clauselink.ClauseLinkRepository
}

// NewClauseLinkHandler creates a new clause link handler
func NewClauseLinkHandler(repo clauselink.ClauseLinkRepository) *ClauseLinkHandler {
	return &ClauseLinkHandler{
		repo: repo,
	}
}

// RegisterRoutes registers the clause link routes
func (h *ClauseLinkHandler) RegisterRoutes(g *echo.Group) {
	clauses := g.Group("/relations/:entity_kind/:entity_id/clauses")
	clauses.POST("", h.Add)
	clauses.GET("", h.List)

	byID := g.Group("/relations/clauses")
	byID.GET("/:id", h.Get)
	byID.PUT("/:id", h.Update)
	byID.DELETE("/:id", h.Delete)
}

// Add handles POST /relations/:entity_kind/:entity_id/clauses
func (h *ClauseLinkHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	kind, entityID, err := EntityRef(c)
	if err != nil {
		return err
	}

	var req models.CreateClauseLinkRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	record, err := h.repo.Add(ctx, tenantID, kind, entityID, req)
	if err != nil {
		return err
	}

	return CreatedResponse(c, record)
}

// List handles GET /relations/:entity_kind/:entity_id/clauses
func (h *ClauseLinkHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	kind, entityID, err := EntityRef(c)
	if err != nil {
		return err
	}

	records, err := h.repo.ListByEntity(ctx, tenantID, kind, entityID, IncludeInactive(c))
	if err != nil {
		return err
	}

	return SuccessResponse(c, models.ClauseLinkListResponse{
		Items:      records,
		TotalCount: len(records),
	})
}

// Get handles GET /relations/clauses/:id
func (h *ClauseLinkHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	id, err := RelationID(c)
	if err != nil {
		return err
	}

	record, err := h.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if record == nil {
		return relerr.NewNotFound(id)
	}

	return SuccessResponse(c, record)
}

// Update handles PUT /relations/clauses/:id
func (h *ClauseLinkHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	id, err := RelationID(c)
	if err != nil {
		return err
	}

	var req models.UpdateClauseLinkRequest
	if err := c.Bind(&req); err != nil {
		return BadRequest("invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return BadRequest(err.Error())
	}

	record, err := h.repo.Update(ctx, tenantID, id, req)
	if err != nil {
		return err
	}

	return SuccessResponse(c, record)
}

// Delete handles DELETE /relations/clauses/:id
func (h *ClauseLinkHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	id, err := RelationID(c)
	if err != nil {
		return err
	}

	if err := h.repo.SoftDelete(ctx, tenantID, id); err != nil {
		return err
	}

	return NoContentResponse(c)
}
