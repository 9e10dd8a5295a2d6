package aggregation_test

import (
	"context"
	"os"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ramsey-B/sorrel/internal/repositories/aggregation"
	"github.com/Ramsey-B/sorrel/internal/repositories/clauselink"
	"github.com/Ramsey-B/sorrel/internal/repositories/documentlink"
	"github.com/Ramsey-B/sorrel/internal/repositories/participation"
	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/registry"
	"github.com/Ramsey-B/sorrel/pkg/relerr"
)

func getTestLogger() ectologger.Logger {
	zapLogger, _ := zap.NewDevelopment()
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func getTestDB(t *testing.T) database.DB {
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbUser := os.Getenv("DB_USER_NAME")
	if dbUser == "" {
		dbUser = "user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "password"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "sorrel"
	}

	dsn := "host=" + dbHost + " user=" + dbUser + " password=" + dbPass + " dbname=" + dbName + " sslmode=disable"
	db, err := sqlx.Connect("postgres", dsn)
	require.NoError(t, err, "Failed to connect to test database")

	return database.NewDatabaseInstance(db, getTestLogger())
}

func seedAudit(t *testing.T, db database.DB, tenantID, auditID string) {
	t.Helper()
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS audits (id TEXT PRIMARY KEY, tenant_id TEXT NOT NULL)`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO audits (id, tenant_id) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, auditID, tenantID)
	require.NoError(t, err)
}

func TestAggregationRepository_Rollup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	entities := registry.NewRegistry(db, logger)

	participationRepo := participation.NewRepository(db, logger, entities)
	documentRepo := documentlink.NewRepository(db, logger, entities)
	clauseRepo := clauselink.NewRepository(db, logger, entities)
	repo := aggregation.NewRepository(db, logger)

	ctx := context.Background()
	tenantID := uuid.New().String()
	auditID := uuid.New().String()
	seedAudit(t, db, tenantID, auditID)

	for _, p := range []struct {
		person string
		role   string
	}{
		{"person-1", "auditor"},
		{"person-2", "auditor"},
		{"person-3", "responsible"},
	} {
		_, err := participationRepo.Add(ctx, tenantID, models.EntityKindAudit, auditID, models.CreateParticipationRequest{
			PersonID: p.person,
			Role:     p.role,
		})
		require.NoError(t, err)
	}

	// A soft-deleted participation must not show up in any count
	deleted, err := participationRepo.Add(ctx, tenantID, models.EntityKindAudit, auditID, models.CreateParticipationRequest{
		PersonID: "person-4",
		Role:     "observer",
	})
	require.NoError(t, err)
	require.NoError(t, participationRepo.SoftDelete(ctx, tenantID, deleted.ID))

	_, err = documentRepo.Add(ctx, tenantID, models.EntityKindAudit, auditID, models.CreateDocumentLinkRequest{
		DocumentID:   "doc-1",
		RelationType: models.DocumentRelationEvidence,
	})
	require.NoError(t, err)

	_, err = clauseRepo.Add(ctx, tenantID, models.EntityKindAudit, auditID, models.CreateClauseLinkRequest{
		StandardID:      "iso-9001",
		ClauseReference: "7.2",
		RelationType:    models.ClauseRelationApplies,
		ComplianceLevel: models.CompliancePending,
	})
	require.NoError(t, err)

	rollup, err := repo.Rollup(ctx, tenantID, models.EntityKindAudit, auditID)
	require.NoError(t, err)

	assert.Equal(t, 3, rollup.Participants.Total)
	assert.Equal(t, 2, rollup.Participants.ByRole["auditor"])
	assert.Equal(t, 1, rollup.Participants.ByRole["responsible"])
	assert.Zero(t, rollup.Participants.ByRole["observer"])

	assert.Equal(t, 1, rollup.Documents.Total)
	assert.Equal(t, 1, rollup.Documents.ByRelationType[models.DocumentRelationEvidence])

	assert.Equal(t, 1, rollup.Clauses.Total)
	assert.Equal(t, 1, rollup.Clauses.ByComplianceLevel[models.CompliancePending])

	// Another tenant sees empty rollups for the same entity id
	other, err := repo.Rollup(ctx, uuid.New().String(), models.EntityKindAudit, auditID)
	require.NoError(t, err)
	assert.Zero(t, other.Participants.Total)
	assert.Zero(t, other.Documents.Total)
	assert.Zero(t, other.Clauses.Total)
}

func TestAggregationRepository_Batch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	logger := getTestLogger()
	entities := registry.NewRegistry(db, logger)
	participationRepo := participation.NewRepository(db, logger, entities)
	repo := aggregation.NewRepository(db, logger)

	ctx := context.Background()
	tenantID := uuid.New().String()

	auditA := uuid.New().String()
	auditB := uuid.New().String()
	seedAudit(t, db, tenantID, auditA)
	seedAudit(t, db, tenantID, auditB)

	for i, auditID := range []string{auditA, auditA, auditB} {
		_, err := participationRepo.Add(ctx, tenantID, models.EntityKindAudit, auditID, models.CreateParticipationRequest{
			PersonID: uuid.New().String(),
			Role:     map[bool]string{true: "auditor", false: "responsible"}[i%2 == 0],
		})
		require.NoError(t, err)
	}

	counts, err := repo.CountParticipantsBatch(ctx, tenantID, models.EntityKindAudit, []string{auditA, auditB, "missing"})
	require.NoError(t, err)

	assert.Equal(t, 2, counts[auditA].Total)
	assert.Equal(t, 1, counts[auditB].Total)

	// Entities with no rows are simply absent
	_, present := counts["missing"]
	assert.False(t, present)
}

func TestAggregationRepository_InvalidKind(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	repo := aggregation.NewRepository(db, getTestLogger())

	_, err := repo.CountParticipants(context.Background(), uuid.New().String(), models.EntityKind("ledger"), "x")
	require.Error(t, err)
	assert.True(t, relerr.IsKind(err, relerr.KindInvalidKind))
}
