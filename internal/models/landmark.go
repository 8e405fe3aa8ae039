// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package models

import "time"

// Landmark is an observation point paired with the distant peak it faces.
//
// The record itself is administered outside the core (CRUD surface is a
// separate concern); the core reads landmarks and owns only the three derived
// geometry fields, which are recomputed whenever the coordinates change.
//
// Latitude/Longitude/Elevation describe the observation point.
// PeakLatitude/PeakLongitude/PeakElevation describe the summit being
// photographed.
type Landmark struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	// Observation point
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"` // meters above sea level

	// Target summit
	PeakLatitude  float64 `json:"peak_latitude"`
	PeakLongitude float64 `json:"peak_longitude"`
	PeakElevation float64 `json:"peak_elevation"` // meters above sea level

	// Derived geometry, owned by internal/geodesy. Invariant for a fixed
	// coordinate pair; refreshed only when the coordinates change.
	AzimuthToPeak   float64   `json:"azimuth_to_peak"`  // degrees [0,360)
	ElevationAngle  float64   `json:"elevation_angle"`  // degrees above local horizon
	DistanceToPeak  float64   `json:"distance_to_peak"` // meters
	GeometryUpdated time.Time `json:"geometry_updated"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
