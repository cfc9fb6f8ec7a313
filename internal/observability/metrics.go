// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipits_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// AnalyticsDropped counts analytics recordings that failed and were
	// swallowed. Recording is best-effort: these never surface to callers.
	AnalyticsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipits_analytics_dropped_total",
		Help: "Total analytics recordings dropped due to store failures",
	}, []string{"kind"})

	// SummaryRequests counts thread-summary requests by outcome
	// (cached, regenerated, disabled, failed).
	SummaryRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipits_summary_requests_total",
		Help: "Thread summary requests by outcome",
	}, []string{"outcome"})

	// SharesRecorded counts project shares by the platform they were
	// shared to, as reported by the client.
	SharesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipits_shares_recorded_total",
		Help: "Project shares recorded by platform",
	}, []string{"platform"})

	// NotificationsFanned counts notification records created, by type.
	NotificationsFanned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipits_notifications_fanout_total",
		Help: "Notification records created by type",
	}, []string{"type"})

	// ReminderRuns counts event-reminder scheduler passes by result.
	ReminderRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shipits_reminder_runs_total",
		Help: "Event reminder scheduler passes by result",
	}, []string{"result"})

	// CounterDrift records the absolute drift found between a stored
	// denormalized counter and its recomputed aggregate.
	CounterDrift = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shipits_counter_drift",
		Help:    "Absolute drift between stored counters and recomputed aggregates",
		Buckets: []float64{0, 1, 2, 5, 10, 50, 100},
	}, []string{"counter"})
)
