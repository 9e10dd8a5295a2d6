package handlers

import (
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sorrel/internal/repositories/clauselink"
	"github.com/Ramsey-B/sorrel/internal/repositories/documentlink"
	"github.com/Ramsey-B/sorrel/internal/repositories/participation"
)

// TenantHandler handles tenant-level cleanup operations
type TenantHandler struct {
	participationRepo participation.ParticipationRepository
	documentLinkRepo  documentlink.DocumentLinkRepository
	clauseLinkRepo    clauselink.ClauseLinkRepository
	logger            ectologger.Logger
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(
	participationRepo participation.ParticipationRepository,
	documentLinkRepo documentlink.DocumentLinkRepository,
	clauseLinkRepo clauselink.ClauseLinkRepository,
	logger ectologger.Logger,
) *TenantHandler {
	return &TenantHandler{
		participationRepo: participationRepo,
		documentLinkRepo:  documentLinkRepo,
		clauseLinkRepo:    clauseLinkRepo,
		logger:            logger,
	}
}

// RegisterRoutes registers tenant routes
func (h *TenantHandler) RegisterRoutes(g *echo.Group) {
	g.DELETE("/admin/tenant/:tenant_id", h.DeleteTenantData)
}

// DeleteTenantData hard deletes every relation row for a tenant.
// This is intended for testing purposes to clean up test data.
func (h *TenantHandler) DeleteTenantData(c echo.Context) error {
	ctx := c.Request().Context()

	tenantID := c.Param("tenant_id")
	if tenantID == "" {
		return BadRequest("missing tenant_id")
	}

	h.logger.WithContext(ctx).WithFields(map[string]any{"tenant_id": tenantID}).Info("Deleting all relation data for tenant")

	participantCount, err := h.participationRepo.DeleteByTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	documentCount, err := h.documentLinkRepo.DeleteByTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	clauseCount, err := h.clauseLinkRepo.DeleteByTenant(ctx, tenantID)
	if err != nil {
		return err
	}

	return SuccessResponse(c, map[string]int64{
		"participants_deleted": participantCount,
		"documents_deleted":    documentCount,
		"clauses_deleted":      clauseCount,
	})
}
