package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/sorrel/internal/handlers"
	"github.com/Ramsey-B/sorrel/internal/repositories/participation"
	"github.com/Ramsey-B/sorrel/pkg/middleware"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/relerr"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

// stubParticipationRepo returns canned results so handler behavior can be
// exercised without a database.
type stubParticipationRepo struct {
	addErr    error
	updateErr error
	deleteErr error
	record    *models.Participation
	list      []models.Participation
}

var _ participation.ParticipationRepository = (*stubParticipationRepo)(nil)

func (s *stubParticipationRepo) Add(ctx context.Context, tenantID string, kind models.EntityKind, entityID string, req models.CreateParticipationRequest) (*models.Participation, error) {
	if s.addErr != nil {
		return nil, s.addErr
	}
	return s.record, nil
}

func (s *stubParticipationRepo) GetByID(ctx context.Context, tenantID, id string) (*models.Participation, error) {
	return s.record, nil
}

func (s *stubParticipationRepo) Update(ctx context.Context, tenantID, id string, req models.UpdateParticipationRequest) (*models.Participation, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return s.record, nil
}

func (s *stubParticipationRepo) SoftDelete(ctx context.Context, tenantID, id string) error {
	return s.deleteErr
}

func (s *stubParticipationRepo) ListByEntity(ctx context.Context, tenantID string, kind models.EntityKind, entityID string, includeInactive bool) ([]models.Participation, error) {
	return s.list, nil
}

func (s *stubParticipationRepo) FindActiveByKey(ctx context.Context, tenantID string, kind models.EntityKind, entityID, personID, role string) (*models.Participation, error) {
	return s.record, nil
}

func (s *stubParticipationRepo) DeleteByTenant(ctx context.Context, tenantID string) (int64, error) {
	return int64(len(s.list)), nil
}

func newTestServer(repo participation.ParticipationRepository) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(getTestLogger())
	e.Use(middleware.Context())

	api := e.Group("/api/v1")
	handlers.NewParticipationHandler(repo).RegisterRoutes(api)
	return e
}

func makeRequest(t *testing.T, e *echo.Echo, method, path, tenantID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if tenantID != "" {
		req.Header.Set("X-Tenant-ID", tenantID)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestParticipationHandler_Add(t *testing.T) {
	record := &models.Participation{PersonID: "p-1", Role: "responsible"}
	record.ID = "rel-1"

	t.Run("Created", func(t *testing.T) {
		e := newTestServer(&stubParticipationRepo{record: record})
		rec := makeRequest(t, e, http.MethodPost, "/api/v1/relations/meeting/m-1/participants", "tenant-1", map[string]any{
			"person_id": "p-1",
			"role":      "responsible",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)

		var got models.Participation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "rel-1", got.ID)
	})

	t.Run("MissingTenant", func(t *testing.T) {
		e := newTestServer(&stubParticipationRepo{record: record})
		rec := makeRequest(t, e, http.MethodPost, "/api/v1/relations/meeting/m-1/participants", "", map[string]any{
			"person_id": "p-1",
			"role":      "responsible",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("InvalidKind", func(t *testing.T) {
		e := newTestServer(&stubParticipationRepo{record: record})
		rec := makeRequest(t, e, http.MethodPost, "/api/v1/relations/invoice/m-1/participants", "tenant-1", map[string]any{
			"person_id": "p-1",
			"role":      "responsible",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MissingRequiredField", func(t *testing.T) {
		e := newTestServer(&stubParticipationRepo{record: record})
		rec := makeRequest(t, e, http.MethodPost, "/api/v1/relations/meeting/m-1/participants", "tenant-1", map[string]any{
			"person_id": "p-1",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InvalidConflictMode", func(t *testing.T) {
		e := newTestServer(&stubParticipationRepo{record: record})
		rec := makeRequest(t, e, http.MethodPost, "/api/v1/relations/meeting/m-1/participants", "tenant-1", map[string]any{
			"person_id":   "p-1",
			"role":        "responsible",
			"on_conflict": "merge",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("DuplicateActive", func(t *testing.T) {
		e := newTestServer(&stubParticipationRepo{
			addErr: relerr.NewDuplicateActiveRelation("meeting", "m-1", "p-1", "responsible"),
		})
		rec := makeRequest(t, e, http.MethodPost, "/api/v1/relations/meeting/m-1/participants", "tenant-1", map[string]any{
			"person_id": "p-1",
			"role":      "responsible",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("EntityNotFound", func(t *testing.T) {
		e := newTestServer(&stubParticipationRepo{
			addErr: relerr.NewEntityNotFound("meeting", "m-1"),
		})
		rec := makeRequest(t, e, http.MethodPost, "/api/v1/relations/meeting/m-1/participants", "tenant-1", map[string]any{
			"person_id": "p-1",
			"role":      "responsible",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestParticipationHandler_Get(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		record := &models.Participation{PersonID: "p-1", Role: "auditor"}
		record.ID = "rel-2"
		e := newTestServer(&stubParticipationRepo{record: record})
		rec := makeRequest(t, e, http.MethodGet, "/api/v1/relations/participants/rel-2", "tenant-1", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		e := newTestServer(&stubParticipationRepo{})
		rec := makeRequest(t, e, http.MethodGet, "/api/v1/relations/participants/rel-x", "tenant-1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestParticipationHandler_Update(t *testing.T) {
	t.Run("CrossTenant", func(t *testing.T) {
		e := newTestServer(&stubParticipationRepo{
			updateErr: relerr.NewCrossTenantAccess("rel-3"),
		})
		rec := makeRequest(t, e, http.MethodPut, "/api/v1/relations/participants/rel-3", "tenant-2", map[string]any{
			"role": "observer",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestParticipationHandler_Delete(t *testing.T) {
	t.Run("NoContent", func(t *testing.T) {
		e := newTestServer(&stubParticipationRepo{})
		rec := makeRequest(t, e, http.MethodDelete, "/api/v1/relations/participants/rel-4", "tenant-1", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		e := newTestServer(&stubParticipationRepo{
			deleteErr: relerr.NewNotFound("rel-x"),
		})
		rec := makeRequest(t, e, http.MethodDelete, "/api/v1/relations/participants/rel-x", "tenant-1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestParticipationHandler_List(t *testing.T) {
	records := []models.Participation{
		{PersonID: "p-1", Role: "auditor"},
		{PersonID: "p-2", Role: "responsible"},
	}
	e := newTestServer(&stubParticipationRepo{list: records})

	rec := makeRequest(t, e, http.MethodGet, "/api/v1/relations/audit/a-1/participants", "tenant-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.ParticipationListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.TotalCount)
	assert.Len(t, resp.Items, 2)
}
