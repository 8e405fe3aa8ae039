// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

// Package models defines the data structures shared across Alpenglow components:
// landmarks, computed alignment events, scheduled rules, and queue jobs.
//
// Models are plain value types. Persistence lives in internal/database, and
// the alignment math that produces events lives in internal/search.
package models
