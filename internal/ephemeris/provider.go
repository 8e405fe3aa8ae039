// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package ephemeris

import (
	"math"
	"time"
)

const (
	// obliquity of the ecliptic, J2000, radians
	obliquity = 23.4397 * math.Pi / 180

	earthRadiusKm = 6371.0
	sunDistanceKm = 149598000.0

	// belowHorizonCutoff is the elevation under which a position is reported
	// as not meaningful. Wide enough that the search still sees the body
	// approaching the horizon before rise.
	belowHorizonCutoff = -8.0
)

// BuiltinProvider computes topocentric sun and moon positions from standard
// low-precision series. It is stateless and safe for concurrent use.
type BuiltinProvider struct{}

// NewBuiltinProvider returns the built-in astronomical provider.
func NewBuiltinProvider() *BuiltinProvider {
	return &BuiltinProvider{}
}

// Position implements Provider.
func (p *BuiltinProvider) Position(t time.Time, lat, lon, elevationM float64, body Body) (Position, bool) {
	var pos Position
	switch body {
	case BodyMoon:
		pos = moonPosition(t, lat, lon)
	default:
		pos = sunPosition(t, lat, lon)
	}

	// A high observation point sees slightly below the astronomical horizon.
	dip := 0.0
	if elevationM > 0 {
		dip = 0.0293 * math.Sqrt(elevationM)
	}
	if pos.Elevation < belowHorizonCutoff-dip {
		return Position{}, false
	}
	return pos, true
}

// daysSinceJ2000 returns fractional days since the J2000.0 epoch.
func daysSinceJ2000(t time.Time) float64 {
	const j2000Unix = 946728000 // 2000-01-01T12:00:00Z
	return float64(t.UnixMilli()-j2000Unix*1000) / 86400000.0
}

// equatorial converts ecliptic longitude l and latitude b (radians) to right
// ascension and declination.
func equatorial(l, b float64) (ra, dec float64) {
	ra = math.Atan2(math.Sin(l)*math.Cos(obliquity)-math.Tan(b)*math.Sin(obliquity), math.Cos(l))
	dec = math.Asin(math.Sin(b)*math.Cos(obliquity) + math.Cos(b)*math.Sin(obliquity)*math.Sin(l))
	return ra, dec
}

// siderealTime returns Greenwich mean sidereal time in radians for d days
// since J2000.
func siderealTime(d float64) float64 {
	return (280.16 + 360.9856235*d) * math.Pi / 180
}

// horizontal converts an hour angle h and declination dec to azimuth
// (degrees from north) and altitude (degrees) for observer latitude phi
// (radians).
func horizontal(h, phi, dec float64) (azimuthDeg, altitudeDeg float64) {
	alt := math.Asin(math.Sin(phi)*math.Sin(dec) + math.Cos(phi)*math.Cos(dec)*math.Cos(h))
	// Measured from south, positive westward; shift to compass convention.
	azSouth := math.Atan2(math.Sin(h), math.Cos(h)*math.Sin(phi)-math.Tan(dec)*math.Cos(phi))
	az := azSouth*180/math.Pi + 180
	az = math.Mod(az, 360)
	if az < 0 {
		az += 360
	}
	return az, alt * 180 / math.Pi
}

// refractionDeg returns the standard atmospheric refraction correction in
// degrees for a true altitude in degrees. Valid near the horizon, where
// alignment events live; an empirical formula, not an atmosphere model.
func refractionDeg(altDeg float64) float64 {
	if altDeg < -1.0 {
		return 0
	}
	h := altDeg * math.Pi / 180
	return (0.0002967 / math.Tan(h+0.00312536/(h+0.08901179))) * 180 / math.Pi
}
