// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Alignment Search Metrics
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "alignment_search_duration_seconds",
			Help:    "Duration of one landmark-day alignment search in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	EventsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alignment_events_generated_total",
			Help: "Total number of alignment events produced by searches",
		},
		[]string{"kind"}, // sun_rising, sun_setting, moon_rising, moon_setting
	)

	DaysSearched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "alignment_days_searched_total",
			Help: "Total number of landmark-days scanned for alignments",
		},
	)

	// Work Queue Metrics
	JobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_jobs_enqueued_total",
			Help: "Total number of enqueue attempts",
		},
		[]string{"kind", "result"}, // result: "accepted", "deduplicated"
	)

	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_jobs_processed_total",
			Help: "Total number of job executions by outcome",
		},
		[]string{"kind", "result"}, // result: "completed", "retried", "failed", "rejected"
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "queue_job_duration_seconds",
			Help:    "Duration of job executions in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"kind"},
	)

	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Current number of jobs per lifecycle state",
		},
		[]string{"status"}, // waiting, active, completed, failed
	)

	JobsReclaimed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_jobs_reclaimed_total",
			Help: "Total number of stalled jobs handled by the reclaimer",
		},
		[]string{"outcome"}, // "requeued", "failed"
	)

	// Scheduler Metrics
	SchedulerRuleFires = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_rule_fires_total",
			Help: "Total number of scheduled rule firings",
		},
		[]string{"rule"},
	)

	SchedulerNextFire = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scheduler_next_fire_timestamp",
			Help: "Unix timestamp of the next firing per rule",
		},
		[]string{"rule"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordSearch records one landmark-day search and the events it produced.
func RecordSearch(duration time.Duration, eventsByKind map[string]int) {
	SearchDuration.Observe(duration.Seconds())
	DaysSearched.Inc()
	for kind, n := range eventsByKind {
		EventsGenerated.WithLabelValues(kind).Add(float64(n))
	}
}

// RecordEnqueue records an enqueue attempt and whether it was deduplicated.
func RecordEnqueue(kind string, accepted bool) {
	result := "accepted"
	if !accepted {
		result = "deduplicated"
	}
	JobsEnqueued.WithLabelValues(kind, result).Inc()
}

// RecordJobResult records one job execution outcome with its duration.
func RecordJobResult(kind, result string, duration time.Duration) {
	JobsProcessed.WithLabelValues(kind, result).Inc()
	JobDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordReclaim records the outcome counts of one reclaim sweep.
func RecordReclaim(requeued, failed int) {
	if requeued > 0 {
		JobsReclaimed.WithLabelValues("requeued").Add(float64(requeued))
	}
	if failed > 0 {
		JobsReclaimed.WithLabelValues("failed").Add(float64(failed))
	}
}

// UpdateQueueDepth refreshes the per-status queue depth gauges.
func UpdateQueueDepth(waiting, active, completed, failed int) {
	QueueDepth.WithLabelValues("waiting").Set(float64(waiting))
	QueueDepth.WithLabelValues("active").Set(float64(active))
	QueueDepth.WithLabelValues("completed").Set(float64(completed))
	QueueDepth.WithLabelValues("failed").Set(float64(failed))
}

// RecordRuleFired records a scheduled rule firing.
func RecordRuleFired(rule string) {
	SchedulerRuleFires.WithLabelValues(rule).Inc()
}

// SetNextFire publishes the next firing time of a rule.
func SetNextFire(rule string, at time.Time) {
	SchedulerNextFire.WithLabelValues(rule).Set(float64(at.Unix()))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
