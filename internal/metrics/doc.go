// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

/*
Package metrics provides Prometheus metrics collection and export.

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8457/metrics

# Available Metrics

Alignment search:
  - alignment_search_duration_seconds: per landmark-day search latency (histogram)
  - alignment_events_generated_total: events produced, labelled by kind (counter)
  - alignment_days_searched_total: landmark-days scanned (counter)

Work queue:
  - queue_jobs_enqueued_total: enqueue attempts by kind and result (counter)
  - queue_jobs_processed_total: executions by kind and outcome (counter)
  - queue_job_duration_seconds: execution latency by kind (histogram)
  - queue_depth: jobs per lifecycle state (gauge)
  - queue_jobs_reclaimed_total: stalled jobs requeued or failed (counter)

Scheduler:
  - scheduler_rule_fires_total: rule firings by rule name (counter)
  - scheduler_next_fire_timestamp: next firing time per rule (gauge)

HTTP API:
  - api_requests_total: requests by method, endpoint and status (counter)
  - api_request_duration_seconds: request latency (histogram)
  - api_active_requests: in-flight requests (gauge)

Circuit breaker:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
  - circuit_breaker_requests_total: requests by result (counter)
  - circuit_breaker_state_transitions_total: transitions (counter)

All recording helpers are safe for concurrent use; the Prometheus client
library handles synchronization internally. Label cardinality is bounded:
kinds, outcomes and rule names are small fixed sets, and endpoint labels
use route patterns rather than raw paths.
*/
package metrics
