package backfill_test

import (
	"context"
	"fmt"
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

	"github.com/Ramsey-B/sorrel/pkg/backfill"
	"github.com/Ramsey-B/sorrel/pkg/database"
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

// seedLegacyMeetingParticipants creates the legacy fixture table and fills it
// with rows for one tenant. Row ids are unique per call so re-created
// fixtures from earlier runs do not collide.
func seedLegacyMeetingParticipants(t *testing.T, db database.DB, tenantID string, count int, includeBadRow bool) []string {
	t.Helper()
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS meeting_participants (
		id TEXT PRIMARY KEY,
		organization_id TEXT,
		meeting_id TEXT,
		person_id TEXT,
		role TEXT,
		attended BOOLEAN,
		notes TEXT
	)`)
	require.NoError(t, err)

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New().String()
		ids = append(ids, id)
		_, err = db.ExecContext(ctx,
			`INSERT INTO meeting_participants (id, organization_id, meeting_id, person_id, role, attended, notes)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			id, tenantID, "m-"+tenantID, fmt.Sprintf("p-%d", i), "participant", true, "")
		require.NoError(t, err)
	}

	if includeBadRow {
		id := uuid.New().String()
		ids = append(ids, id)
		// person_id is NULL, the mapper must reject this row
		_, err = db.ExecContext(ctx,
			`INSERT INTO meeting_participants (id, organization_id, meeting_id) VALUES ($1, $2, $3)`,
			id, tenantID, "m-"+tenantID)
		require.NoError(t, err)
	}

	return ids
}

func countBackfilled(t *testing.T, db database.DB, tenantID string) int {
	t.Helper()
	var n int
	err := db.GetContext(context.Background(), &n,
		`SELECT COUNT(*) FROM entity_participants WHERE tenant_id = $1`, tenantID)
	require.NoError(t, err)
	return n
}

func TestAdapter_RunIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	adapter := backfill.NewAdapter(db, getTestLogger(), nil)

	tenantID := uuid.New().String()
	seedLegacyMeetingParticipants(t, db, tenantID, 3, false)

	ctx := context.Background()

	first, err := adapter.Run(ctx, "meeting_participants")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, first.Migrated, 3)
	assert.False(t, first.CompletedAt.Before(first.StartedAt))

	countAfterFirst := countBackfilled(t, db, tenantID)
	assert.Equal(t, 3, countAfterFirst)

	// Re-running only skips, never duplicates
	second, err := adapter.Run(ctx, "meeting_participants")
	require.NoError(t, err)
	assert.Zero(t, second.Migrated)
	assert.GreaterOrEqual(t, second.Skipped, 3)
	assert.Equal(t, countAfterFirst, countBackfilled(t, db, tenantID))
}

func TestAdapter_BadRowDoesNotAbortBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	adapter := backfill.NewAdapter(db, getTestLogger(), nil)

	tenantID := uuid.New().String()
	ids := seedLegacyMeetingParticipants(t, db, tenantID, 2, true)
	badID := ids[len(ids)-1]

	summary, err := adapter.Run(context.Background(), "meeting_participants")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, summary.Failed, 1)
	found := false
	for _, failure := range summary.Failures {
		if failure.LegacyID == badID {
			found = true
			assert.Contains(t, failure.Reason, "missing person_id")
		}
	}
	assert.True(t, found, "expected the bad row to be reported with its legacy id")

	// The two good rows still made it
	assert.Equal(t, 2, countBackfilled(t, db, tenantID))
}

func TestAdapter_UnknownTable(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := getTestDB(t)
	adapter := backfill.NewAdapter(db, getTestLogger(), nil)

	_, err := adapter.Run(context.Background(), "mystery_table")
	assert.ErrorIs(t, err, backfill.ErrUnknownLegacyTable)
}

func TestAdapter_Tables(t *testing.T) {
	adapter := backfill.NewAdapter(nil, getTestLogger(), nil)
	assert.Len(t, adapter.Tables(), 9)
}
