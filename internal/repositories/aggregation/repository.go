// Package aggregation computes read-only rollups over the relation tables.
// There is no materialized cache; every count is one grouped query against
// the live rows. The query shapes are fixed constants, never assembled from
// caller-supplied field lists.
package aggregation

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/lib/pq"

	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/metrics"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/registry"
	"github.com/Ramsey-B/sorrel/pkg/relerr"
	"github.com/Ramsey-B/sorrel/pkg/tracing"
)

// AggregationRepository defines the rollup queries over the relation store
type AggregationRepository interface {
	CountParticipants(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.ParticipantCounts, error)
	CountDocuments(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.DocumentCounts, error)
	CountClauses(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.ClauseCounts, error)
	CountParticipantsBatch(ctx context.Context, tenantID string, kind models.EntityKind, entityIDs []string) (map[string]models.ParticipantCounts, error)
	CountDocumentsBatch(ctx context.Context, tenantID string, kind models.EntityKind, entityIDs []string) (map[string]models.DocumentCounts, error)
	CountClausesBatch(ctx context.Context, tenantID string, kind models.EntityKind, entityIDs []string) (map[string]models.ClauseCounts, error)
	Rollup(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.EntityRollup, error)
}

// Repository implements AggregationRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new aggregation repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// The three whitelisted rollup shapes. Each groups by entity_id first so a
// batch over N entities stays a single pass instead of N queries.
const (
	participantCountsQuery = `
		SELECT entity_id, role AS dimension, COUNT(*) AS count
		FROM entity_participants
		WHERE tenant_id = $1 AND entity_kind = $2 AND entity_id = ANY($3) AND is_active
		GROUP BY entity_id, role`

	documentCountsQuery = `
		SELECT entity_id, relation_type AS dimension, COUNT(*) AS count
		FROM entity_documents
		WHERE tenant_id = $1 AND entity_kind = $2 AND entity_id = ANY($3) AND is_active
		GROUP BY entity_id, relation_type`

	clauseCountsQuery = `
		SELECT entity_id, compliance_level AS dimension, COUNT(*) AS count
		FROM entity_standards
		WHERE tenant_id = $1 AND entity_kind = $2 AND entity_id = ANY($3) AND is_active
		GROUP BY entity_id, compliance_level`
)

type groupedCount struct {
	EntityID  string `db:"entity_id"`
	Dimension string `db:"dimension"`
	Count     int    `db:"count"`
}

func (r *Repository) groupedCounts(ctx context.Context, rollup, query, tenantID string, kind models.EntityKind, entityIDs []string) ([]groupedCount, error) {
	if !registry.IsValidKind(kind) {
		return nil, relerr.NewInvalidKind(string(kind))
	}

	start := time.Now()
	rows := []groupedCount{}
	err := r.db.SelectContext(ctx, &rows, query, tenantID, kind, pq.Array(entityIDs))
	metrics.AggregationQueryDuration.WithLabelValues(rollup).Observe(time.Since(start).Seconds())
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"tenant_id":   tenantID,
			"entity_kind": kind,
			"entity_ids":  len(entityIDs),
		}).Error("failed to compute relation counts")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to compute relation counts: %v", err)
	}

	return rows, nil
}

// CountParticipants returns the active participation rollup for one entity
func (r *Repository) CountParticipants(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.ParticipantCounts, error) {
	ctx, span := tracing.StartSpan(ctx, "AggregationRepository.CountParticipants")
	defer span.End()

	byEntity, err := r.CountParticipantsBatch(ctx, tenantID, kind, []string{entityID})
	if err != nil {
		return nil, err
	}

	counts := byEntity[entityID]
	if counts.ByRole == nil {
		counts.ByRole = map[string]int{}
	}
	return &counts, nil
}

// CountParticipantsBatch returns active participation rollups for many
// entities of one kind in a single grouped query.
func (r *Repository) CountParticipantsBatch(ctx context.Context, tenantID string, kind models.EntityKind, entityIDs []string) (map[string]models.ParticipantCounts, error) {
	ctx, span := tracing.StartSpan(ctx, "AggregationRepository.CountParticipantsBatch")
	defer span.End()

	rows, err := r.groupedCounts(ctx, "participants", participantCountsQuery, tenantID, kind, entityIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[string]models.ParticipantCounts, len(entityIDs))
	for _, row := range rows {
		counts := result[row.EntityID]
		if counts.ByRole == nil {
			counts.ByRole = map[string]int{}
		}
		counts.Total += row.Count
		counts.ByRole[row.Dimension] += row.Count
		result[row.EntityID] = counts
	}

	return result, nil
}

// CountDocuments returns the active document link rollup for one entity
func (r *Repository) CountDocuments(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.DocumentCounts, error) {
	ctx, span := tracing.StartSpan(ctx, "AggregationRepository.CountDocuments")
	defer span.End()

	byEntity, err := r.CountDocumentsBatch(ctx, tenantID, kind, []string{entityID})
	if err != nil {
		return nil, err
	}

	counts := byEntity[entityID]
	if counts.ByRelationType == nil {
		counts.ByRelationType = map[models.DocumentRelationType]int{}
	}
	return &counts, nil
}

// CountDocumentsBatch returns active document link rollups for many entities
// of one kind in a single grouped query.
func (r *Repository) CountDocumentsBatch(ctx context.Context, tenantID string, kind models.EntityKind, entityIDs []string) (map[string]models.DocumentCounts, error) {
	ctx, span := tracing.StartSpan(ctx, "AggregationRepository.CountDocumentsBatch")
	defer span.End()

	rows, err := r.groupedCounts(ctx, "documents", documentCountsQuery, tenantID, kind, entityIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[string]models.DocumentCounts, len(entityIDs))
	for _, row := range rows {
		counts := result[row.EntityID]
		if counts.ByRelationType == nil {
			counts.ByRelationType = map[models.DocumentRelationType]int{}
		}
		counts.Total += row.Count
		counts.ByRelationType[models.DocumentRelationType(row.Dimension)] += row.Count
		result[row.EntityID] = counts
	}

	return result, nil
}

// CountClauses returns the active clause link rollup for one entity
func (r *Repository) CountClauses(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.ClauseCounts, error) {
	ctx, span := tracing.StartSpan(ctx, "AggregationRepository.CountClauses")
	defer span.End()

	byEntity, err := r.CountClausesBatch(ctx, tenantID, kind, []string{entityID})
	if err != nil {
		return nil, err
	}

	counts := byEntity[entityID]
	if counts.ByComplianceLevel == nil {
		counts.ByComplianceLevel = map[models.ComplianceLevel]int{}
	}
	return &counts, nil
}

// CountClausesBatch returns active clause link rollups for many entities of
// one kind in a single grouped query.
func (r *Repository) CountClausesBatch(ctx context.Context, tenantID string, kind models.EntityKind, entityIDs []string) (map[string]models.ClauseCounts, error) {
	ctx, span := tracing.StartSpan(ctx, "AggregationRepository.CountClausesBatch")
	defer span.End()

	rows, err := r.groupedCounts(ctx, "clauses", clauseCountsQuery, tenantID, kind, entityIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[string]models.ClauseCounts, len(entityIDs))
	for _, row := range rows {
		counts := result[row.EntityID]
		if counts.ByComplianceLevel == nil {
			counts.ByComplianceLevel = map[models.ComplianceLevel]int{}
		}
		counts.Total += row.Count
		counts.ByComplianceLevel[models.ComplianceLevel(row.Dimension)] += row.Count
		result[row.EntityID] = counts
	}

	return result, nil
}

// Rollup combines all three rollups for one entity
func (r *Repository) Rollup(ctx context.Context, tenantID string, kind models.EntityKind, entityID string) (*models.EntityRollup, error) {
	ctx, span := tracing.StartSpan(ctx, "AggregationRepository.Rollup")
	defer span.End()

	participants, err := r.CountParticipants(ctx, tenantID, kind, entityID)
	if err != nil {
		return nil, err
	}

	documents, err := r.CountDocuments(ctx, tenantID, kind, entityID)
	if err != nil {
		return nil, err
	}

	clauses, err := r.CountClauses(ctx, tenantID, kind, entityID)
	if err != nil {
		return nil, err
	}

	return &models.EntityRollup{
		EntityKind:   kind,
		EntityID:     entityID,
		Participants: *participants,
		Documents:    *documents,
		Clauses:      *clauses,
	}, nil
}
