package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sorrel/internal/repositories/documentlink"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/relerr"
)

// DocumentLinkHandler handles document-to-entity relation requests
type DocumentLinkHandler struct {
	repo documentlink.DocumentLinkRepository
}

// NewDocumentLinkHandler creates a new document link handler
func NewDocumentLinkHandler(repo documentlink.DocumentLinkRepository) *DocumentLinkHandler {
	return &DocumentLinkHandler{
		repo: repo,
	}
}

// RegisterRoutes registers the document link routes
func (h *DocumentLinkHandler) RegisterRoutes(g *echo.Group) {
	documents := g.Group("/relations/:entity_kind/:entity_id/documents")
	documents.POST("", h.Add)
	documents.GET("", h.List)

	byID := g.Group("/relations/documents")
	byID.GET("/:id", h.Get)
	byID.PUT("/:id", h.Update)
	byID.DELETE("/:id", h.Delete)
}

// Add handles POST /relations/:entity_kind/:entity_id/documents
func (h *DocumentLinkHandler) Add(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	kind, entityID, err := EntityRef(c)
	if err != nil {
		return err
	}

	var req models.CreateDocumentLinkRequest
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

// List handles GET /relations/:entity_kind/:entity_id/documents
func (h *DocumentLinkHandler) List(c echo.Context) error {
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

	return SuccessResponse(c, models.DocumentLinkListResponse{
		Items:      records,
		TotalCount: len(records),
	})
}

// Get handles GET /relations/documents/:id
func (h *DocumentLinkHandler) Get(c echo.Context) error {
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

// Update handles PUT /relations/documents/:id
func (h *DocumentLinkHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID, err := GetTenantID(c)
	if err != nil {
		return err
	}

	id, err := RelationID(c)
	if err != nil {
		return err
	}

	var req models.UpdateDocumentLinkRequest
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

// Delete handles DELETE /relations/documents/:id
func (h *DocumentLinkHandler) Delete(c echo.Context) error {
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
