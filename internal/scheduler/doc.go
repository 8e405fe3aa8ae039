// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

/*
Package scheduler turns configured recurrence rules into queued regeneration
jobs.

Rules come in four kinds (daily, weekly, monthly, annual) and specify a time
of day in the configured calendar timezone. The scheduler computes the next
firing for each rule deterministically, sleeps until the soonest one, and on
firing enqueues the mapped job: annual rules enqueue a whole-year
regeneration shifted by their year offset, monthly rules pre-compute the
following month, and daily/weekly rules refresh the current month.

Firing is enqueue-only. Execution, retries and deduplication belong to the
work queue, so an overlapping manual trigger and a scheduled one collapse
into a single job.
*/
package scheduler
