// Package metrics provides Prometheus metrics for the Sorrel service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelationWritesTotal tracks relation store writes by relation kind and operation
	RelationWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "relations",
			Name:      "writes_total",
			Help:      "Total number of relation store writes by relation kind and operation",
		},
		[]string{"relation_kind", "operation"},
	)

	// RelationConflictsTotal tracks rejected duplicate active relations
	RelationConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "relations",
			Name:      "conflicts_total",
			Help:      "Total number of writes rejected by the active uniqueness constraint",
		},
		[]string{"relation_kind"},
	)

	// BackfillRowsTotal tracks backfill row outcomes per legacy table
	BackfillRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sorrel",
			Subsystem: "backfill",
			Name:      "rows_total",
			Help:      "Total number of backfill rows by legacy table and outcome",
		},
		[]string{"legacy_table", "outcome"},
	)

	// BackfillRunDuration tracks backfill run duration per legacy table
	BackfillRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sorrel",
			Subsystem: "backfill",
			Name:      "run_duration_seconds",
			Help:      "Duration of backfill runs in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"legacy_table"},
	)

	// AggregationQueryDuration tracks rollup query duration
	AggregationQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sorrel",
			Subsystem: "aggregation",
			Name:      "query_duration_seconds",
			Help:      "Duration of aggregation queries in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"rollup"},
	)
)

// RecordBackfillRow records a single backfill row outcome
func RecordBackfillRow(legacyTable, outcome string) {
	BackfillRowsTotal.WithLabelValues(legacyTable, outcome).Inc()
}

// RecordBackfillRun records a completed backfill run
func RecordBackfillRun(legacyTable string, durationSeconds float64) {
	BackfillRunDuration.WithLabelValues(legacyTable).Observe(durationSeconds)
}
