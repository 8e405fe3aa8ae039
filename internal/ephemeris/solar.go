// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package ephemeris

import (
	"math"
	"time"
)

// solarEcliptic returns the sun's apparent ecliptic longitude in radians for
// d days since J2000.
func solarEcliptic(d float64) float64 {
	rad := math.Pi / 180
	// Mean anomaly and equation of center.
	m := rad * (357.5291 + 0.98560028*d)
	c := rad * (1.9148*math.Sin(m) + 0.02*math.Sin(2*m) + 0.0003*math.Sin(3*m))
	// Perihelion longitude of the Earth.
	p := rad * 102.9372
	return m + c + p + math.Pi
}

// sunPosition computes the sun's topocentric azimuth and apparent elevation
// for the given instant and observer.
func sunPosition(t time.Time, lat, lon float64) Position {
	rad := math.Pi / 180
	d := daysSinceJ2000(t)

	l := solarEcliptic(d)
	ra, dec := equatorial(l, 0)

	// Hour angle; east longitudes are positive.
	h := siderealTime(d) + lon*rad - ra
	az, alt := horizontal(h, lat*rad, dec)

	return Position{
		Azimuth:   az,
		Elevation: alt + refractionDeg(alt),
	}
}
