package handlers

import (
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sorrel/pkg/backfill"
)

// BackfillHandler exposes the legacy table migration jobs to operators
type BackfillHandler struct {
	adapter *backfill.Adapter
}

// NewBackfillHandler creates a new backfill handler
func NewBackfillHandler(adapter *backfill.Adapter) *BackfillHandler {
	return &BackfillHandler{
		adapter: adapter,
	}
}

// RegisterRoutes registers the backfill admin routes
func (h *BackfillHandler) RegisterRoutes(g *echo.Group) {
	admin := g.Group("/admin/backfill")
	admin.GET("/tables", h.ListTables)
	admin.POST("/:legacy_table", h.Run)
}

// ListTables handles GET /admin/backfill/tables
func (h *BackfillHandler) ListTables(c echo.Context) error {
	return SuccessResponse(c, map[string][]string{
		"legacy_tables": h.adapter.Tables(),
	})
}

// Run handles POST /admin/backfill/:legacy_table. The run executes
// synchronously and the summary is the response body.
func (h *BackfillHandler) Run(c echo.Context) error {
	ctx := c.Request().Context()

	legacyTable := c.Param("legacy_table")
	if legacyTable == "" {
		return BadRequest("missing legacy_table")
	}

	summary, err := h.adapter.Run(ctx, legacyTable)
	if errors.Is(err, backfill.ErrUnknownLegacyTable) {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "no backfill job for legacy table %s", legacyTable)
	}
	if errors.Is(err, backfill.ErrRunInProgress) {
		return httperror.NewHTTPErrorf(http.StatusConflict, "backfill already running for legacy table %s", legacyTable)
	}
	if err != nil {
		return httperror.NewHTTPErrorf(http.StatusServiceUnavailable, "backfill aborted: %v", err)
	}

	return SuccessResponse(c, summary)
}
