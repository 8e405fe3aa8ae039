// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package geodesy

import (
	"math"
	"time"

	"github.com/alpenglow-dev/alpenglow/internal/models"
)

const (
	// earthRadiusM is the mean Earth radius in meters.
	earthRadiusM = 6371000.0

	// refractionCoefficient is the standard terrestrial refraction
	// coefficient k. Refraction bends the line of sight around the Earth's
	// curve, so the effective curvature drop is scaled by (1 - k). This is
	// an empirical correction, not a physical atmosphere model.
	refractionCoefficient = 0.13
)

// Point is a position on the ellipsoid with an elevation above sea level.
type Point struct {
	Latitude  float64 // degrees
	Longitude float64 // degrees
	Elevation float64 // meters
}

// Bearing returns the initial great-circle bearing from a to b in degrees,
// normalized to [0,360).
func Bearing(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return NormalizeAzimuth(degrees(math.Atan2(y, x)))
}

// Distance returns the great-circle distance between a and b in meters,
// using the haversine formula on a spherical Earth.
func Distance(a, b Point) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// ElevationAngle returns the apparent vertical angle in degrees from the
// observer a to the target b, corrected for Earth curvature and standard
// refraction.
//
// The target appears lower than the plain height difference suggests because
// the Earth curves away over the sightline; refraction bends light around
// the curve and recovers part of the drop. Zero distance degenerates to a
// straight-up/straight-down angle of 0.
func ElevationAngle(a, b Point) float64 {
	d := Distance(a, b)
	if d == 0 {
		return 0
	}

	heightDiff := b.Elevation - a.Elevation
	curvatureDrop := d * d / (2 * earthRadiusM) * (1 - refractionCoefficient)

	return degrees(math.Atan2(heightDiff-curvatureDrop, d))
}

// AngularDiff returns the minimal angular difference between two azimuths in
// degrees, in [0,180].
func AngularDiff(a, b float64) float64 {
	diff := math.Abs(NormalizeAzimuth(a) - NormalizeAzimuth(b))
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// NormalizeAzimuth wraps an angle in degrees into [0,360).
func NormalizeAzimuth(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// DeriveGeometry fills the landmark's derived fields (azimuth, elevation
// angle, and distance to the peak) from its coordinates. The caller persists
// the result; the fields only change when the coordinates do.
func DeriveGeometry(l *models.Landmark, now time.Time) {
	observer := Point{Latitude: l.Latitude, Longitude: l.Longitude, Elevation: l.Elevation}
	peak := Point{Latitude: l.PeakLatitude, Longitude: l.PeakLongitude, Elevation: l.PeakElevation}

	l.AzimuthToPeak = Bearing(observer, peak)
	l.ElevationAngle = ElevationAngle(observer, peak)
	l.DistanceToPeak = Distance(observer, peak)
	l.GeometryUpdated = now.UTC()
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
