// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

// Package database provides DuckDB-backed persistence for landmarks, the
// alignment event cache, and the durable work queue.
//
// Three invariants are enforced here rather than in callers:
//
//   - Event regeneration is transactional per scope (year, month, day, or
//     landmark-years): the scoped delete and the inserts commit together, so
//     readers never observe a half-regenerated scope.
//   - At most one event exists per (landmark, date, kind), backed by a
//     unique constraint.
//   - Queue claim and enqueue run under an in-process mutex plus a
//     transaction; DuckDB's optimistic concurrency would otherwise surface
//     spurious conflicts under worker contention.
//
// All timestamps are stored in UTC.
package database
