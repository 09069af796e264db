// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MatchesCreated counts match rows created, labeled by the path that
	// formed them (direct or compliment).
	MatchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentdate_matches_created_total",
		Help: "Total number of matches created by match type",
	}, []string{"match_type"})

	// ProposalsRejected counts match proposals rejected by the filter chain,
	// labeled by the error code of the failing filter.
	ProposalsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentdate_proposals_rejected_total",
		Help: "Total number of rejected match proposals by error code",
	}, []string{"code"})

	// ComplimentResponses counts compliment responses by outcome.
	ComplimentResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentdate_compliment_responses_total",
		Help: "Total number of compliment responses by action",
	}, []string{"action"})

	// EventWriteFailures counts audit events that could not be appended.
	// Event writes are best-effort, so these only surface here.
	EventWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agentdate_event_write_failures_total",
		Help: "Total number of failed audit event appends",
	})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agentdate_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agentdate_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
