package backfill

import (
	"github.com/Ramsey-B/sorrel/pkg/models"
)

// Catalogue returns the built-in backfill jobs, one per known legacy
// junction table. Legacy tables are read-only history; the source queries
// never filter, a full scan per run is expected.
func Catalogue() map[string]Job {
	jobs := []Job{
		{
			LegacyTable: "meeting_participants",
			EntityKind:  models.EntityKindMeeting,
			TargetTable: "entity_participants",
			IDPrefix:    "prt",
			SourceQuery: `SELECT * FROM meeting_participants`,
			MapRow:      participationMapper("meeting_id", "participant"),
		},
		{
			LegacyTable: "audit_auditors",
			EntityKind:  models.EntityKindAudit,
			TargetTable: "entity_participants",
			IDPrefix:    "prt",
			SourceQuery: `SELECT * FROM audit_auditors`,
			MapRow:      participationMapper("audit_id", "auditor"),
		},
		{
			LegacyTable: "training_attendees",
			EntityKind:  models.EntityKindTraining,
			TargetTable: "entity_participants",
			IDPrefix:    "prt",
			SourceQuery: `SELECT * FROM training_attendees`,
			MapRow:      participationMapper("training_id", "attendee"),
		},
		{
			LegacyTable: "audit_documents",
			EntityKind:  models.EntityKindAudit,
			TargetTable: "entity_documents",
			IDPrefix:    "doc",
			SourceQuery: `SELECT * FROM audit_documents`,
			MapRow:      documentMapper("audit_id", models.DocumentRelationEvidence),
		},
		{
			LegacyTable: "training_materials",
			EntityKind:  models.EntityKindTraining,
			TargetTable: "entity_documents",
			IDPrefix:    "doc",
			SourceQuery: `SELECT * FROM training_materials`,
			MapRow:      documentMapper("training_id", models.DocumentRelationMaterial),
		},
		{
			LegacyTable: "process_documents",
			EntityKind:  models.EntityKindProcess,
			TargetTable: "entity_documents",
			IDPrefix:    "doc",
			SourceQuery: `SELECT * FROM process_documents`,
			MapRow:      documentMapper("process_id", models.DocumentRelationAttachment),
		},
		{
			LegacyTable: "audit_clauses",
			EntityKind:  models.EntityKindAudit,
			TargetTable: "entity_standards",
			IDPrefix:    "cls",
			SourceQuery: `SELECT * FROM audit_clauses`,
			MapRow:      clauseMapper("audit_id", models.ClauseRelationApplies),
		},
		{
			LegacyTable: "process_clauses",
			EntityKind:  models.EntityKindProcess,
			TargetTable: "entity_standards",
			IDPrefix:    "cls",
			SourceQuery: `SELECT * FROM process_clauses`,
			MapRow:      clauseMapper("process_id", models.ClauseRelationApplies),
		},
		{
			LegacyTable: "training_clauses",
			EntityKind:  models.EntityKindTraining,
			TargetTable: "entity_standards",
			IDPrefix:    "cls",
			SourceQuery: `SELECT * FROM training_clauses`,
			MapRow:      clauseMapper("training_id", models.ClauseRelationCompetency),
		},
	}

	byTable := make(map[string]Job, len(jobs))
	for _, job := range jobs {
		byTable[job.LegacyTable] = job
	}
	return byTable
}

// envelope pulls the fields every legacy junction row must carry
func envelope(row map[string]any, entityCol string) (legacyID, tenantID, entityID string, err error) {
	if legacyID, err = required(row, "id"); err != nil {
		return
	}
	if tenantID, err = required(row, "organization_id"); err != nil {
		return
	}
	entityID, err = required(row, entityCol)
	return
}

func participationMapper(entityCol, defaultRole string) RowMapper {
	return func(row map[string]any) (*TargetRow, error) {
		legacyID, tenantID, entityID, err := envelope(row, entityCol)
		if err != nil {
			return nil, err
		}
		personID, err := required(row, "person_id")
		if err != nil {
			return nil, err
		}

		return &TargetRow{
			LegacyID: legacyID,
			TenantID: tenantID,
			EntityID: entityID,
			Cols:     []string{"person_id", "role", "attended", "absence_justification", "notes"},
			Vals: []any{
				personID,
				asStringDefault(row["role"], defaultRole),
				asNullableBool(row["attended"]),
				asNullableString(row["absence_justification"]),
				asString(row["notes"]),
			},
			CreatedAt: asNullableTime(row["created_at"]),
		}, nil
	}
}

func documentMapper(entityCol string, defaultType models.DocumentRelationType) RowMapper {
	return func(row map[string]any) (*TargetRow, error) {
		legacyID, tenantID, entityID, err := envelope(row, entityCol)
		if err != nil {
			return nil, err
		}
		documentID, err := required(row, "document_id")
		if err != nil {
			return nil, err
		}

		return &TargetRow{
			LegacyID: legacyID,
			TenantID: tenantID,
			EntityID: entityID,
			Cols:     []string{"document_id", "relation_type", "description", "is_required"},
			Vals: []any{
				documentID,
				asStringDefault(row["relation_type"], string(defaultType)),
				asString(row["description"]),
				asBool(row["is_required"], false),
			},
			CreatedAt: asNullableTime(row["created_at"]),
		}, nil
	}
}

func clauseMapper(entityCol string, defaultType models.ClauseRelationType) RowMapper {
	return func(row map[string]any) (*TargetRow, error) {
		legacyID, tenantID, entityID, err := envelope(row, entityCol)
		if err != nil {
			return nil, err
		}
		standardID, err := required(row, "standard_id")
		if err != nil {
			return nil, err
		}
		clauseRef, err := required(row, "clause_reference")
		if err != nil {
			return nil, err
		}

		return &TargetRow{
			LegacyID: legacyID,
			TenantID: tenantID,
			EntityID: entityID,
			Cols: []string{
				"standard_id", "clause_reference", "clause_description",
				"relation_type", "compliance_level", "observations",
				"evidence_reference", "required_actions",
			},
			Vals: []any{
				standardID,
				clauseRef,
				asString(row["clause_description"]),
				asStringDefault(row["relation_type"], string(defaultType)),
				asStringDefault(row["compliance_level"], string(models.CompliancePending)),
				asString(row["observations"]),
				asString(row["evidence_reference"]),
				asString(row["required_actions"]),
			},
			CreatedAt: asNullableTime(row["created_at"]),
		}, nil
	}
}
