package backfill

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sorrel/pkg/models"
)

func TestTargetID_Deterministic(t *testing.T) {
	a := TargetID("prt", "meeting_participants", "42")
	b := TargetID("prt", "meeting_participants", "42")
	assert.Equal(t, a, b)
	assert.Equal(t, "prt_meeting_participants_42", a)

	assert.NotEqual(t, a, TargetID("prt", "meeting_participants", "43"))
	assert.NotEqual(t, a, TargetID("prt", "audit_auditors", "42"))
	assert.NotEqual(t, a, TargetID("doc", "meeting_participants", "42"))
}

func TestCatalogue_CoversKnownLegacyTables(t *testing.T) {
	jobs := Catalogue()

	expected := []string{
		"meeting_participants", "audit_auditors", "training_attendees",
		"audit_documents", "training_materials", "process_documents",
		"audit_clauses", "process_clauses", "training_clauses",
	}
	require.Len(t, jobs, len(expected))
	for _, table := range expected {
		job, ok := jobs[table]
		require.True(t, ok, "missing job for %s", table)
		assert.Equal(t, table, job.LegacyTable)
		assert.NotEmpty(t, job.TargetTable)
		assert.NotEmpty(t, job.IDPrefix)
		assert.NotNil(t, job.MapRow)
	}
}

func TestParticipationMapper(t *testing.T) {
	mapRow := participationMapper("meeting_id", "participant")

	created := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	row := map[string]any{
		"id":              int64(7),
		"organization_id": []byte("tenant-1"),
		"meeting_id":      []byte("m-1"),
		"person_id":       []byte("p-1"),
		"role":            nil,
		"attended":        true,
		"notes":           []byte("arrived late"),
		"created_at":      created,
	}

	target, err := mapRow(row)
	require.NoError(t, err)
	assert.Equal(t, "7", target.LegacyID)
	assert.Equal(t, "tenant-1", target.TenantID)
	assert.Equal(t, "m-1", target.EntityID)
	require.NotNil(t, target.CreatedAt)
	assert.Equal(t, created, *target.CreatedAt)

	require.Equal(t, len(target.Cols), len(target.Vals))
	byCol := map[string]any{}
	for i, col := range target.Cols {
		byCol[col] = target.Vals[i]
	}
	assert.Equal(t, "p-1", byCol["person_id"])
	assert.Equal(t, "participant", byCol["role"], "null role falls back to the table default")
	require.NotNil(t, byCol["attended"])
	assert.True(t, *byCol["attended"].(*bool))
	assert.Equal(t, "arrived late", byCol["notes"])
}

func TestParticipationMapper_MissingFields(t *testing.T) {
	mapRow := participationMapper("meeting_id", "participant")

	_, err := mapRow(map[string]any{
		"organization_id": "tenant-1",
		"meeting_id":      "m-1",
		"person_id":       "p-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")

	_, err = mapRow(map[string]any{
		"id":              "7",
		"organization_id": "tenant-1",
		"meeting_id":      "m-1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing person_id")
}

func TestDocumentMapper_Defaults(t *testing.T) {
	mapRow := documentMapper("process_id", models.DocumentRelationAttachment)

	target, err := mapRow(map[string]any{
		"id":              "3",
		"organization_id": "tenant-1",
		"process_id":      "proc-1",
		"document_id":     "doc-1",
	})
	require.NoError(t, err)

	byCol := map[string]any{}
	for i, col := range target.Cols {
		byCol[col] = target.Vals[i]
	}
	assert.Equal(t, "attachment", byCol["relation_type"])
	assert.Equal(t, false, byCol["is_required"])
}

func TestClauseMapper_Defaults(t *testing.T) {
	mapRow := clauseMapper("training_id", models.ClauseRelationCompetency)

	target, err := mapRow(map[string]any{
		"id":               "9",
		"organization_id":  "tenant-1",
		"training_id":      "tr-1",
		"standard_id":      "iso-9001",
		"clause_reference": "7.2",
	})
	require.NoError(t, err)

	byCol := map[string]any{}
	for i, col := range target.Cols {
		byCol[col] = target.Vals[i]
	}
	assert.Equal(t, "competency", byCol["relation_type"])
	assert.Equal(t, "pending", byCol["compliance_level"])

	_, err = mapRow(map[string]any{
		"id":              "10",
		"organization_id": "tenant-1",
		"training_id":     "tr-1",
		"standard_id":     "iso-9001",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing clause_reference")
}
