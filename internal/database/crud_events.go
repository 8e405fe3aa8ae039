// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alpenglow-dev/alpenglow/internal/models"
)

const eventColumns = `id, landmark_id, event_date, event_time, kind,
	azimuth, elevation, azimuth_diff, tier, quality_score,
	moon_phase, moon_illumination, calculation_year, created_at`

// ReplaceEventsForYear atomically replaces all cached events of one
// calculation year. Readers never observe a half-regenerated year: the
// delete and the inserts commit together or not at all.
func (db *DB) ReplaceEventsForYear(ctx context.Context, year int, events []models.AlignmentEvent) error {
	return db.replaceEvents(ctx, events,
		`DELETE FROM alignment_events WHERE calculation_year = ?`, year)
}

// ReplaceEventsForMonth atomically replaces the cached events of one month
// of one year across all landmarks.
func (db *DB) ReplaceEventsForMonth(ctx context.Context, year int, month time.Month, events []models.AlignmentEvent) error {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return db.replaceEvents(ctx, events,
		`DELETE FROM alignment_events WHERE event_date >= ? AND event_date < ?`, from, to)
}

// ReplaceEventsForDay atomically replaces the cached events of one civil day
// across all landmarks.
func (db *DB) ReplaceEventsForDay(ctx context.Context, year int, month time.Month, day int, events []models.AlignmentEvent) error {
	from := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	return db.replaceEvents(ctx, events,
		`DELETE FROM alignment_events WHERE event_date >= ? AND event_date < ?`, from, to)
}

// ReplaceEventsForLandmarkMonth atomically replaces the cached events of one
// landmark in one month. Used when a month regeneration targets a subset of
// landmarks.
func (db *DB) ReplaceEventsForLandmarkMonth(ctx context.Context, landmarkID int64, year int, month time.Month, events []models.AlignmentEvent) error {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	return db.replaceEvents(ctx, events,
		`DELETE FROM alignment_events WHERE landmark_id = ? AND event_date >= ? AND event_date < ?`,
		landmarkID, from, to)
}

// ReplaceEventsForLandmarkYears atomically replaces the cached events of one
// landmark over an inclusive year range.
func (db *DB) ReplaceEventsForLandmarkYears(ctx context.Context, landmarkID int64, fromYear, toYear int, events []models.AlignmentEvent) error {
	return db.replaceEvents(ctx, events,
		`DELETE FROM alignment_events WHERE landmark_id = ? AND calculation_year >= ? AND calculation_year <= ?`,
		landmarkID, fromYear, toYear)
}

// replaceEvents runs the scoped delete and the inserts in one transaction.
func (db *DB) replaceEvents(ctx context.Context, events []models.AlignmentEvent, deleteQuery string, deleteArgs ...any) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin regeneration transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("failed to delete scoped events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO alignment_events (`+eventColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer closeWithLog(stmt, "event insert statement")

	now := time.Now().UTC()
	for i := range events {
		ev := &events[i]
		if ev.ID == uuid.Nil {
			ev.ID = uuid.New()
		}
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			ev.ID, ev.LandmarkID, ev.EventDate, ev.EventTime, string(ev.Kind),
			ev.Azimuth, ev.Elevation, ev.AzimuthDiff, string(ev.Tier), ev.QualityScore,
			nullFloat(ev.MoonPhase), nullFloat(ev.MoonIllumination),
			ev.CalculationYear, ev.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert event %s: %w", ev.ID, err)
		}
	}

	return tx.Commit()
}

// EventFilter narrows event queries. Zero values mean "no constraint".
type EventFilter struct {
	LandmarkID int64
	Kind       models.PhenomenonKind
	MinTier    models.AccuracyTier
	Limit      int
	Offset     int
}

// EventsInRange returns events whose date falls in [from, to), ordered by
// event time.
func (db *DB) EventsInRange(ctx context.Context, from, to time.Time, f EventFilter) ([]models.AlignmentEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM alignment_events
		WHERE event_date >= ? AND event_date < ?`
	args := []any{from, to}

	if f.LandmarkID != 0 {
		query += ` AND landmark_id = ?`
		args = append(args, f.LandmarkID)
	}
	if f.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(f.Kind))
	}
	if tiers := tiersAtOrAbove(f.MinTier); tiers != nil {
		query += ` AND tier IN (` + placeholders(len(tiers)) + `)`
		for _, t := range tiers {
			args = append(args, string(t))
		}
	}

	query += ` ORDER BY event_time, landmark_id`
	if f.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, f.Limit, f.Offset)
	}

	return db.queryEvents(ctx, query, args...)
}

// EventsForLandmarkYear returns the cached events of one landmark and
// calculation year, ordered by event time.
func (db *DB) EventsForLandmarkYear(ctx context.Context, landmarkID int64, year int) ([]models.AlignmentEvent, error) {
	return db.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM alignment_events
		WHERE landmark_id = ? AND calculation_year = ?
		ORDER BY event_time`, landmarkID, year)
}

// UpcomingEvents returns the next events at or after the given instant.
func (db *DB) UpcomingEvents(ctx context.Context, after time.Time, limit int) ([]models.AlignmentEvent, error) {
	return db.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM alignment_events
		WHERE event_time >= ?
		ORDER BY event_time
		LIMIT ?`, after, limit)
}

// CountEventsForYear returns the number of cached events for a calculation
// year.
func (db *DB) CountEventsForYear(ctx context.Context, year int) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx,
		`SELECT count(*) FROM alignment_events WHERE calculation_year = ?`, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count events for %d: %w", year, err)
	}
	return n, nil
}

func (db *DB) queryEvents(ctx context.Context, query string, args ...any) ([]models.AlignmentEvent, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer closeWithLog(rows, "event rows")

	var events []models.AlignmentEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func scanEvent(row rowScanner) (*models.AlignmentEvent, error) {
	var (
		ev           models.AlignmentEvent
		kind, tier   string
		phase, illum sql.NullFloat64
	)
	err := row.Scan(&ev.ID, &ev.LandmarkID, &ev.EventDate, &ev.EventTime, &kind,
		&ev.Azimuth, &ev.Elevation, &ev.AzimuthDiff, &tier, &ev.QualityScore,
		&phase, &illum, &ev.CalculationYear, &ev.CreatedAt)
	if err != nil {
		return nil, err
	}
	ev.Kind = models.PhenomenonKind(kind)
	ev.Tier = models.AccuracyTier(tier)
	if phase.Valid {
		ev.MoonPhase = &phase.Float64
	}
	if illum.Valid {
		ev.MoonIllumination = &illum.Float64
	}
	return &ev, nil
}

// tiersAtOrAbove expands a minimum tier into the set of acceptable tiers.
// An empty tier means no filtering.
func tiersAtOrAbove(min models.AccuracyTier) []models.AccuracyTier {
	switch min {
	case models.TierPerfect:
		return []models.AccuracyTier{models.TierPerfect}
	case models.TierExcellent:
		return []models.AccuracyTier{models.TierPerfect, models.TierExcellent}
	case models.TierGood:
		return []models.AccuracyTier{models.TierPerfect, models.TierExcellent, models.TierGood}
	default:
		return nil
	}
}

func placeholders(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ", "
		}
		s += "?"
	}
	return s
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
