// Package backfill migrates legacy per-module junction tables into the
// generic relation tables. Runs are idempotent: every target row gets a
// deterministic id derived from its legacy row, and inserts use
// ON CONFLICT DO NOTHING so re-runs only skip.
package backfill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sorrel/pkg/database"
	"github.com/Ramsey-B/sorrel/pkg/metrics"
	"github.com/Ramsey-B/sorrel/pkg/models"
	"github.com/Ramsey-B/sorrel/pkg/redis"
)

var (
	// ErrUnknownLegacyTable is returned when no job exists for the requested table
	ErrUnknownLegacyTable = errors.New("unknown legacy table")
	// ErrRunInProgress is returned when another run holds the table lock
	ErrRunInProgress = errors.New("backfill already running for this table")
)

// lockTTL bounds how long a crashed run can block the next one
const lockTTL = 15 * time.Minute

// TargetRow is the generic record a RowMapper produces from one legacy row.
// Cols and Vals carry the relation-specific payload columns in matching
// order; the adapter supplies the envelope columns around them.
type TargetRow struct {
	LegacyID  string
	TenantID  string
	EntityID  string
	Cols      []string
	Vals      []any
	ExtraData database.ExtraData
	CreatedAt *time.Time
}

// RowMapper converts one opaque legacy row into a TargetRow. A returned
// error marks the row failed and processing continues.
type RowMapper func(row map[string]any) (*TargetRow, error)

// Job describes the backfill of one legacy table
type Job struct {
	LegacyTable string
	EntityKind  models.EntityKind
	TargetTable string
	IDPrefix    string
	SourceQuery string
	MapRow      RowMapper
}

// TargetID derives the deterministic target id for a legacy row. The same
// legacy row always maps to the same id, which is what makes re-runs safe.
func TargetID(prefix, legacyTable, legacyID string) string {
	return fmt.Sprintf("%s_%s_%s", prefix, legacyTable, legacyID)
}

// Adapter runs backfill jobs from the built-in catalogue
type Adapter struct {
	db     database.DB
	logger ectologger.Logger
	locker *redis.Locker
	jobs   map[string]Job
}

// NewAdapter creates a backfill adapter over the built-in job catalogue.
// locker may be nil, in which case runs are not serialized across processes.
func NewAdapter(db database.DB, logger ectologger.Logger, locker *redis.Locker) *Adapter {
	return &Adapter{
		db:     db,
		logger: logger,
		locker: locker,
		jobs:   Catalogue(),
	}
}

// Tables returns the legacy table names the adapter knows how to migrate
func (a *Adapter) Tables() []string {
	tables := make([]string, 0, len(a.jobs))
	for name := range a.jobs {
		tables = append(tables, name)
	}
	return tables
}

// Run executes the backfill job for one legacy table and returns its
// summary. Storage connectivity failure at start is fatal and aborts before
// any row is processed; individual row failures are captured in the summary.
func (a *Adapter) Run(ctx context.Context, legacyTable string) (*models.BackfillSummary, error) {
	job, ok := a.jobs[legacyTable]
	if !ok {
		return nil, ErrUnknownLegacyTable
	}

	if err := a.db.PingContext(ctx); err != nil {
		a.logger.WithContext(ctx).WithError(err).Error("backfill aborted, storage unreachable")
		return nil, fmt.Errorf("storage unreachable: %w", err)
	}

	if a.locker != nil {
		lock, err := a.locker.Acquire(ctx, legacyTable, lockTTL)
		if errors.Is(err, redis.ErrLockNotAcquired) {
			return nil, ErrRunInProgress
		}
		if err != nil {
			return nil, fmt.Errorf("failed to acquire backfill lock: %w", err)
		}
		defer lock.Release(ctx)
	}

	return a.run(ctx, job)
}

func (a *Adapter) run(ctx context.Context, job Job) (*models.BackfillSummary, error) {
	summary := &models.BackfillSummary{
		LegacyTable: job.LegacyTable,
		EntityKind:  job.EntityKind,
		Failures:    []models.RowFailure{},
		StartedAt:   time.Now(),
	}

	rows, err := a.db.QueryxContext(ctx, job.SourceQuery)
	if err != nil {
		a.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"legacy_table": job.LegacyTable,
		}).Error("backfill aborted, failed to read legacy table")
		return nil, fmt.Errorf("failed to read legacy table %s: %w", job.LegacyTable, err)
	}
	defer rows.Close()

	for rows.Next() {
		raw := map[string]any{}
		if err := rows.MapScan(raw); err != nil {
			a.recordFailure(ctx, job, summary, legacyIDOf(raw), fmt.Sprintf("scan: %v", err))
			continue
		}

		target, err := job.MapRow(raw)
		if err != nil {
			a.recordFailure(ctx, job, summary, legacyIDOf(raw), err.Error())
			continue
		}

		inserted, err := a.insert(ctx, job, target)
		if err != nil {
			a.recordFailure(ctx, job, summary, target.LegacyID, err.Error())
			continue
		}

		if inserted {
			summary.Migrated++
			metrics.RecordBackfillRow(job.LegacyTable, "migrated")
		} else {
			summary.Skipped++
			metrics.RecordBackfillRow(job.LegacyTable, "skipped")
		}
	}

	if err := rows.Err(); err != nil {
		a.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"legacy_table": job.LegacyTable,
		}).Error("backfill aborted mid-read")
		return nil, fmt.Errorf("failed reading legacy table %s: %w", job.LegacyTable, err)
	}

	summary.CompletedAt = time.Now()
	metrics.RecordBackfillRun(job.LegacyTable, summary.CompletedAt.Sub(summary.StartedAt).Seconds())

	a.logger.WithContext(ctx).WithFields(map[string]any{
		"legacy_table": job.LegacyTable,
		"entity_kind":  job.EntityKind,
		"migrated":     summary.Migrated,
		"skipped":      summary.Skipped,
		"failed":       summary.Failed,
	}).Info("backfill run completed")

	return summary, nil
}

func (a *Adapter) recordFailure(ctx context.Context, job Job, summary *models.BackfillSummary, legacyID, reason string) {
	summary.Failed++
	summary.Failures = append(summary.Failures, models.RowFailure{
		LegacyID: legacyID,
		Reason:   reason,
	})
	metrics.RecordBackfillRow(job.LegacyTable, "failed")

	a.logger.WithContext(ctx).WithFields(map[string]any{
		"legacy_table": job.LegacyTable,
		"legacy_id":    legacyID,
		"reason":       reason,
	}).Warn("backfill row failed")
}

// insert writes one target row. Returns false when a row with the same
// deterministic id already exists.
func (a *Adapter) insert(ctx context.Context, job Job, target *TargetRow) (bool, error) {
	id := TargetID(job.IDPrefix, job.LegacyTable, target.LegacyID)

	extra := database.ExtraData{}
	for k, v := range target.ExtraData {
		extra[k] = v
	}
	extra["migrated_from"] = job.LegacyTable
	extra["legacy_id"] = target.LegacyID

	createdAt := time.Now()
	if target.CreatedAt != nil {
		createdAt = *target.CreatedAt
	}

	cols := []string{"id", "tenant_id", "entity_kind", "entity_id"}
	cols = append(cols, target.Cols...)
	cols = append(cols, "extra_data", "is_active", "created_at", "updated_at", "created_by", "updated_by")

	vals := []any{id, target.TenantID, job.EntityKind, target.EntityID}
	vals = append(vals, target.Vals...)
	vals = append(vals, extra, true, createdAt, createdAt, nil, nil)

	sb := database.NewInsertBuilder()
	sb.InsertInto(job.TargetTable)
	sb.Cols(cols...)
	sb.Values(vals...)
	sb.OnConflictDoNothing("id")

	query, args := sb.Build()

	res, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}
