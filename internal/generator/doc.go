// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

/*
Package generator executes regeneration jobs from the work queue.

Each job payload selects a scope: a whole calculation year across all
landmarks, one month (optionally restricted to a landmark subset), one civil
day, or one landmark over a year range. The generator runs the alignment search for
every (landmark, day) pair in scope with bounded concurrency, then hands the
results to the event store as a single scoped replace. Because the replace
deletes exactly the scope it re-inserts, running the same job twice yields
the same cache contents.
*/
package generator
