// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FollowToggles counts follow toggles by outcome ("followed", "unfollowed").
	FollowToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_follow_toggles_total",
		Help: "Total number of follow toggle operations by outcome",
	}, []string{"outcome"})

	// AccountDeletions counts cascade deletions by result ("ok", "error").
	AccountDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_account_deletions_total",
		Help: "Total number of account cascade deletions by result",
	}, []string{"result"})

	// CascadeSweepRuns counts content-sweep executions by result
	// ("clean", "swept", "error").
	CascadeSweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_cascade_sweep_runs_total",
		Help: "Total number of cascade content-sweep runs by result",
	}, []string{"result"})

	// PendingTombstones is the gauge of deletion tombstones awaiting sweep.
	PendingTombstones = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mosaic_pending_tombstones",
		Help: "Number of deletion tombstones whose content sweep has not completed",
	})

	// ObjectStoreReleases counts object-store delete attempts by result
	// ("ok", "error"). Failures are non-fatal but worth watching.
	ObjectStoreReleases = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mosaic_object_store_releases_total",
		Help: "Total number of object store release attempts by result",
	}, []string{"result"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mosaic_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)
