// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alpenglow-dev/alpenglow/internal/geodesy"
	"github.com/alpenglow-dev/alpenglow/internal/models"
)

const landmarkColumns = `id, name, latitude, longitude, elevation,
	peak_latitude, peak_longitude, peak_elevation,
	azimuth_to_peak, elevation_angle, distance_to_peak, geometry_updated,
	created_at, updated_at`

// CreateLandmark derives the sight-line geometry and inserts the landmark,
// filling in the generated ID and timestamps.
func (db *DB) CreateLandmark(ctx context.Context, l *models.Landmark) error {
	now := time.Now().UTC()
	geodesy.DeriveGeometry(l, now)
	l.CreatedAt = now
	l.UpdatedAt = now

	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO landmarks (name, latitude, longitude, elevation,
			peak_latitude, peak_longitude, peak_elevation,
			azimuth_to_peak, elevation_angle, distance_to_peak, geometry_updated,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		l.Name, l.Latitude, l.Longitude, l.Elevation,
		l.PeakLatitude, l.PeakLongitude, l.PeakElevation,
		l.AzimuthToPeak, l.ElevationAngle, l.DistanceToPeak, l.GeometryUpdated,
		l.CreatedAt, l.UpdatedAt)

	if err := row.Scan(&l.ID); err != nil {
		return fmt.Errorf("failed to insert landmark: %w", err)
	}
	return nil
}

// GetLandmark returns one landmark by ID, or ErrNotFound.
func (db *DB) GetLandmark(ctx context.Context, id int64) (*models.Landmark, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+landmarkColumns+` FROM landmarks WHERE id = ?`, id)

	l, err := scanLandmark(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get landmark %d: %w", id, err)
	}
	return l, nil
}

// ListLandmarks returns all landmarks ordered by name.
func (db *DB) ListLandmarks(ctx context.Context) ([]models.Landmark, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+landmarkColumns+` FROM landmarks ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list landmarks: %w", err)
	}
	defer closeWithLog(rows, "landmark rows")

	var landmarks []models.Landmark
	for rows.Next() {
		l, err := scanLandmark(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan landmark: %w", err)
		}
		landmarks = append(landmarks, *l)
	}
	return landmarks, rows.Err()
}

// UpdateLandmark persists changes to a landmark. When any of the six
// coordinates changed, the derived geometry is recomputed first and the
// bool result reports it, so the caller can trigger regeneration.
func (db *DB) UpdateLandmark(ctx context.Context, l *models.Landmark) (geometryChanged bool, err error) {
	current, err := db.GetLandmark(ctx, l.ID)
	if err != nil {
		return false, err
	}

	geometryChanged = current.Latitude != l.Latitude ||
		current.Longitude != l.Longitude ||
		current.Elevation != l.Elevation ||
		current.PeakLatitude != l.PeakLatitude ||
		current.PeakLongitude != l.PeakLongitude ||
		current.PeakElevation != l.PeakElevation

	now := time.Now().UTC()
	if geometryChanged {
		geodesy.DeriveGeometry(l, now)
	} else {
		l.AzimuthToPeak = current.AzimuthToPeak
		l.ElevationAngle = current.ElevationAngle
		l.DistanceToPeak = current.DistanceToPeak
		l.GeometryUpdated = current.GeometryUpdated
	}
	l.CreatedAt = current.CreatedAt
	l.UpdatedAt = now

	_, err = db.conn.ExecContext(ctx, `
		UPDATE landmarks SET name = ?, latitude = ?, longitude = ?, elevation = ?,
			peak_latitude = ?, peak_longitude = ?, peak_elevation = ?,
			azimuth_to_peak = ?, elevation_angle = ?, distance_to_peak = ?,
			geometry_updated = ?, updated_at = ?
		WHERE id = ?`,
		l.Name, l.Latitude, l.Longitude, l.Elevation,
		l.PeakLatitude, l.PeakLongitude, l.PeakElevation,
		l.AzimuthToPeak, l.ElevationAngle, l.DistanceToPeak,
		l.GeometryUpdated, l.UpdatedAt, l.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update landmark %d: %w", l.ID, err)
	}
	return geometryChanged, nil
}

// DeleteLandmark removes a landmark and all its cached events.
func (db *DB) DeleteLandmark(ctx context.Context, id int64) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	if _, err := tx.ExecContext(ctx, `DELETE FROM alignment_events WHERE landmark_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete landmark events: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM landmarks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete landmark %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// CountLandmarks returns the number of landmarks.
func (db *DB) CountLandmarks(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM landmarks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count landmarks: %w", err)
	}
	return n, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLandmark(row rowScanner) (*models.Landmark, error) {
	var l models.Landmark
	err := row.Scan(&l.ID, &l.Name, &l.Latitude, &l.Longitude, &l.Elevation,
		&l.PeakLatitude, &l.PeakLongitude, &l.PeakElevation,
		&l.AzimuthToPeak, &l.ElevationAngle, &l.DistanceToPeak, &l.GeometryUpdated,
		&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func rollbackQuietly(tx *sql.Tx) {
	_ = tx.Rollback()
}
