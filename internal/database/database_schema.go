// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables. All columns are defined in the
// initial CREATE TABLE statements; there is no migration machinery yet.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS landmarks_id_seq`,

		// Landmarks: observation point, target summit, and the derived
		// sight-line geometry (recomputed only when coordinates change).
		`CREATE TABLE IF NOT EXISTS landmarks (
			id BIGINT PRIMARY KEY DEFAULT nextval('landmarks_id_seq'),
			name TEXT NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			elevation DOUBLE NOT NULL,
			peak_latitude DOUBLE NOT NULL,
			peak_longitude DOUBLE NOT NULL,
			peak_elevation DOUBLE NOT NULL,
			azimuth_to_peak DOUBLE NOT NULL,
			elevation_angle DOUBLE NOT NULL,
			distance_to_peak DOUBLE NOT NULL,
			geometry_updated TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Alignment events: immutable once written; regeneration replaces a
		// whole scope transactionally. At most one event per
		// (landmark, date, kind).
		`CREATE TABLE IF NOT EXISTS alignment_events (
			id UUID PRIMARY KEY,
			landmark_id BIGINT NOT NULL,
			event_date DATE NOT NULL,
			event_time TIMESTAMP NOT NULL,
			kind TEXT NOT NULL,
			azimuth DOUBLE NOT NULL,
			elevation DOUBLE NOT NULL,
			azimuth_diff DOUBLE NOT NULL,
			tier TEXT NOT NULL,
			quality_score DOUBLE NOT NULL,
			moon_phase DOUBLE,
			moon_illumination DOUBLE,
			calculation_year INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (landmark_id, event_date, kind)
		)`,

		// Queue jobs: the durable work queue. Status transitions are owned by
		// the queue package; this table is the single source of truth that
		// survives restarts.
		`CREATE TABLE IF NOT EXISTS queue_jobs (
			id UUID PRIMARY KEY,
			payload_kind TEXT NOT NULL,
			payload TEXT NOT NULL,
			dedupe_key TEXT NOT NULL,
			priority TEXT NOT NULL,
			status TEXT NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			max_attempts INTEGER NOT NULL,
			run_at TIMESTAMP NOT NULL,
			reclaimed BOOLEAN NOT NULL DEFAULT false,
			last_error TEXT NOT NULL DEFAULT '',
			heartbeat_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// createIndexes creates indexes for the common query patterns: calendar
// range scans, per-landmark lookups, and the queue claim scan.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_events_date ON alignment_events (event_date)`,
		`CREATE INDEX IF NOT EXISTS idx_events_landmark_year ON alignment_events (landmark_id, calculation_year)`,
		`CREATE INDEX IF NOT EXISTS idx_events_year ON alignment_events (calculation_year)`,
		`CREATE INDEX IF NOT EXISTS idx_events_time ON alignment_events (event_time)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_claim ON queue_jobs (status, run_at)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_dedupe ON queue_jobs (dedupe_key, status)`,
	}

	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", idx, err)
		}
	}
	return nil
}
