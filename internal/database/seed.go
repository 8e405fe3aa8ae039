// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package database

import (
	"context"
	"fmt"

	"github.com/alpenglow-dev/alpenglow/internal/logging"
	"github.com/alpenglow-dev/alpenglow/internal/models"
)

// SeedDemoData inserts a small set of demo landmarks when the table is
// empty. Intended for first-run evaluation, gated by config.
func (db *DB) SeedDemoData(ctx context.Context) error {
	n, err := db.CountLandmarks(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Debug().Int("landmarks", n).Msg("Skipping demo seed, landmarks exist")
		return nil
	}

	// Classic Mount Fuji shooting spots: a west-facing lakeshore and an
	// east-facing ridge, both with the summit a degree or two above the
	// local horizon.
	demo := []models.Landmark{
		{
			Name:      "Lake Kawaguchi North Shore",
			Latitude:  35.5171, Longitude: 138.7519, Elevation: 833,
			PeakLatitude: 35.3606, PeakLongitude: 138.7274, PeakElevation: 3776,
		},
		{
			Name:      "Yamanaka Panorama Ridge",
			Latitude:  35.4244, Longitude: 138.8793, Elevation: 1100,
			PeakLatitude: 35.3606, PeakLongitude: 138.7274, PeakElevation: 3776,
		},
		{
			Name:      "Satta Pass Overlook",
			Latitude:  35.0631, Longitude: 138.5519, Elevation: 90,
			PeakLatitude: 35.3606, PeakLongitude: 138.7274, PeakElevation: 3776,
		},
	}

	for i := range demo {
		if err := db.CreateLandmark(ctx, &demo[i]); err != nil {
			return fmt.Errorf("failed to seed landmark %q: %w", demo[i].Name, err)
		}
	}
	logging.Info().Int("landmarks", len(demo)).Msg("Seeded demo landmarks")
	return nil
}
