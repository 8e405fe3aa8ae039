// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

// Package search finds the instants where the sun or moon crosses the line
// of sight toward a landmark's summit.
//
// The engine runs a two-phase search per (landmark, day): a coarse sweep at
// minute granularity over bounded scan windows, then a fine re-sample at
// second granularity around each coarse candidate. Coarse thresholds are
// deliberately wider than the final acceptance thresholds so a true
// alignment cannot fall between coarse samples.
//
// Two pre-filters bound the work before the coarse pass: a season filter
// that skips months where the sun's rise/set azimuth band cannot reach the
// landmark, and a moon-illumination floor that drops candidates too dark to
// photograph.
//
// The engine is bounded by construction (fixed sample counts) and never
// blocks; an ephemeris with no position for the whole scan yields an empty
// result, not an error.
package search
