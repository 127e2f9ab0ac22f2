// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tidepool_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CounterUpdateFailures counts denormalized-counter deltas that failed
	// after the owning edge mutation already succeeded. Non-zero values
	// mean drift exists until the next reconcile run.
	CounterUpdateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_counter_update_failures_total",
		Help: "Counter deltas that failed after a successful edge mutation",
	}, []string{"counter"})

	// CounterDriftRepaired counts rows whose denormalized counters the
	// reconcile pass rewrote.
	CounterDriftRepaired = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tidepool_counter_drift_repaired_total",
		Help: "Rows repaired by the counter reconcile pass",
	}, []string{"counter"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
