package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sorrel/internal/repositories/participation"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/relerr"
)

// ParticipationHandler handles person-to-entity relation requests
type ParticipationHandler struct {
	repo participation.ParticipationRepository
}

// NewParticipationHandler creates a new participation handler
func NewParticipationHandler(repo participation.ParticipationRepository) *ParticipationHandler {
	return &ParticipationHandler{
		repo: repo,
	}
}

// RegisterRoutes registers the participation routes
func (h *ParticipationHandler) RegisterRoutes(g *echo.Group) {
	participants := g.Group("/relations/:entity_kind/:entity_id/participants")
	participants.POST("", h.Add)
	participants.GET("", h.List)

	byID := g.Group("/relations/participants")
	byID.GET("/:id", h.Get)
	byID.PUT("/:id", h.Update)
	byID.DELETE("/:id", h.Delete)
}

// Add handles POST /relations/:entity_kind/:entity_id/participants
func (h *ParticipationHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	kind, entityID, err := EntityRef(c)
	if err != nil {
		return err
	}

	var req models.CreateParticipationRequest
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

// List handles GET /relations/:entity_kind/:entity_id/participants
func (h *ParticipationHandler) List(c echo.Context) error {
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

	return SuccessResponse(c, models.ParticipationListResponse{
		Items:      records,
		TotalCount: len(records),
	})
}

// Get handles GET /relations/participants/:id
func (h *ParticipationHandler) Get(c echo.Context) error {
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

// Update handles PUT /relations/participants/:id
func (h *ParticipationHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	id, err := RelationID(c)
	if err != nil {
		return err
	}

	var req models.UpdateParticipationRequest
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

// Delete handles DELETE /relations/participants/:id
func (h *ParticipationHandler) Delete(c echo.Context) error {
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
