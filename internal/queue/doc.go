// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

/*
Package queue implements the durable work queue that drives calendar
regeneration.

Jobs are persisted through a JobStore (DuckDB in production) so queued work
survives restarts. A fixed pool of workers polls for claimable jobs, ordered
by priority (high, normal, low) and then by earliest run time. Equivalent
jobs deduplicate on a natural key while one is still waiting or active, so a
burst of identical triggers collapses into a single execution.

Failure handling:

  - A failed execution retries with exponential backoff (base doubling per
    attempt, capped) until the attempt budget is exhausted, then the job is
    failed permanently with its last error kept for inspection.
  - Running jobs heartbeat; the reclaimer requeues a job whose heartbeat
    goes stale once, and fails it outright if it stalls a second time.
  - A circuit breaker around the executor sheds load when executions fail
    persistently, rejecting claims until the breaker recovers.

Low-priority jobs start after a configured delay and their executions may be
paced by a rate limit, keeping bulk regeneration from starving interactive
requests. Higher priorities run unthrottled.

WorkQueue implements suture.Service: Serve runs workers and the reclaimer
until its context is cancelled.
*/
package queue
