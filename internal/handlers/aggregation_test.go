package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sorrel/internal/handlers"
	"github.com/Ramsey-B/sorrel/internal/repositories/aggregation"
	"github.com/Ramsey-B/sorrel/pkg/middleware"
	"github.com/Ramsey-B/sorrel/pkg/models"
)

type stubAggregationRepo struct {
	participantCounts map[string]models.ParticipantCounts
}

var _ aggregation.AggregationRepository = (*stubAggregationRepo)(nil)

func (s *stubAggregationRepo) CountParticipants(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.ParticipantCounts, error) {
	counts := s.participantCounts[entityID]
	return &counts, nil
}

func (s *stubAggregationRepo) CountDocuments(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.DocumentCounts, error) {
	return &models.DocumentCounts{ByRelationType: map[models.DocumentRelationType]int{}}, nil
}

func (s *stubAggregationRepo) CountClauses(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.ClauseCounts, error) {
	return &models.ClauseCounts{ByComplianceLevel: map[models.ComplianceLevel]int{}}, nil
}

func (s *stubAggregationRepo) CountParticipantsBatch(ctx context.Context, tenantID string, kind models.EntityKind, entityIDs []string) (map[string]models.ParticipantCounts, error) {
	return s.participantCounts, nil
}

func (s *stubAggregationRepo) CountDocumentsBatch(ctx context.Context, tenantID string, kind models.EntityKind, entityIDs []string) (map[string]models.DocumentCounts, error) {
	return map[string]models.DocumentCounts{}, nil
}

func (s *stubAggregationRepo) CountClausesBatch(ctx context.Context, tenantID string, kind models.EntityKind, entityIDs []string) (map[string]models.ClauseCounts, error) {
	return map[string]models.ClauseCounts{}, nil
}

func (s *stubAggregationRepo) Rollup(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.EntityRollup, error) {
	return &models.EntityRollup{}, nil
}

func newAggregationTestServer(repo aggregation.AggregationRepository) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.Error(getTestLogger())
	e.Use(middleware.Context())

	api := e.Group("/api/v1")
	handlers.NewAggregationHandler(repo).RegisterRoutes(api)
	return e
}

func TestAggregationHandler_Counts(t *testing.T) {
	repo := &stubAggregationRepo{
		participantCounts: map[string]models.ParticipantCounts{
			"m-1": {Total: 3, ByRole: map[string]int{"auditor": 1, "participant": 2}},
		},
	}
	e := newAggregationTestServer(repo)

	t.Run("Success", func(t *testing.T) {
		rec := makeRequest(t, e, http.MethodGet, "/api/v1/relations/meeting/m-1/counts/participants", "tenant-1", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var got models.ParticipantCounts
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 3, got.Total)
		assert.Equal(t, 1, got.ByRole["auditor"])
	})

	t.Run("InvalidKind", func(t *testing.T) {
		rec := makeRequest(t, e, http.MethodGet, "/api/v1/relations/invoice/m-1/counts/participants", "tenant-1", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MissingTenant", func(t *testing.T) {
		rec := makeRequest(t, e, http.MethodGet, "/api/v1/relations/meeting/m-1/counts/participants", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAggregationHandler_BatchCounts(t *testing.T) {
	repo := &stubAggregationRepo{
		participantCounts: map[string]models.ParticipantCounts{
			"a-1": {Total: 2, ByRole: map[string]int{"auditor": 2}},
		},
	}
	e := newAggregationTestServer(repo)

	t.Run("Success", func(t *testing.T) {
		rec := makeRequest(t, e, http.MethodPost, "/api/v1/relations/counts/participants", "tenant-1", map[string]any{
			"entity_kind": "audit",
			"entity_ids":  []string{"a-1", "a-2"},
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		var got models.BatchParticipantCountsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 2, got.Counts["a-1"].Total)
	})

	t.Run("EmptyIDs", func(t *testing.T) {
		rec := makeRequest(t, e, http.MethodPost, "/api/v1/relations/counts/participants", "tenant-1", map[string]any{
			"entity_kind": "audit",
			"entity_ids":  []string{},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("TooManyIDs", func(t *testing.T) {
		ids := make([]string, 501)
		for i := range ids {
			ids[i] = "a-1"
		}
		rec := makeRequest(t, e, http.MethodPost, "/api/v1/relations/counts/participants", "tenant-1", map[string]any{
			"entity_kind": "audit",
			"entity_ids":  ids,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("InvalidKind", func(t *testing.T) {
		rec := makeRequest(t, e, http.MethodPost, "/api/v1/relations/counts/participants", "tenant-1", map[string]any{
			"entity_kind": "invoice",
			"entity_ids":  []string{"a-1"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
