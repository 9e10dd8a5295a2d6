// Package handlers wires the relation, aggregation, and backfill endpoints.
package handlers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	appctx "github.com/Ramsey-B/sorrel/pkg/context"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/registry"
	"github.com/Ramsey-B/sorrel/pkg/relerr"
)

var validate = validator.New()

// GetTenantID extracts the tenant ID from context
func GetTenantID(c echo.Context) (string, error) {
	tenantID := appctx.GetTenantID(c.Request().Context())
	if tenantID == "" {
		return "", httperror.NewHTTPError(http.StatusUnauthorized, "tenant context required")
	}
	return tenantID, nil
}

// EntityRef pulls and validates the entity kind and id path parameters
func EntityRef(c echo.Context) (models.EntityKind, string, error) {
	kind := models.EntityKind(c.Param("entity_kind"))
	if !registry.IsValidKind(kind) {
		return "", "", relerr.NewInvalidKind(string(kind))
	}

	entityID := c.Param("entity_id")
	if entityID == "" {
		return "", "", BadRequest("missing entity_id")
	}

	return kind, entityID, nil
}

// RelationID pulls the relation id path parameter
func RelationID(c echo.Context) (string, error) {
	id := c.Param("id")
	if id == "" {
		return "", BadRequest("missing id")
	}
	return id, nil
}

// IncludeInactive reads the include_inactive query flag
func IncludeInactive(c echo.Context) bool {
	return c.QueryParam("include_inactive") == "true"
}

// SuccessResponse returns a 200 OK with data
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// CreatedResponse returns a 201 Created with data
func CreatedResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusCreated, data)
}

// NoContentResponse returns a 204 No Content
func NoContentResponse(c echo.Context) error {
	return c.NoContent(http.StatusNoContent)
}

// BadRequest returns a 400 Bad Request error
func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}
