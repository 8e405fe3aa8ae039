// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package ephemeris

import (
	"math"
	"time"
)

// lunarCoords holds the moon's geocentric equatorial coordinates and
// distance for one instant.
type lunarCoords struct {
	ra, dec    float64 // radians
	distanceKm float64
}

// moonCoords evaluates the truncated Meeus lunar theory (largest terms only)
// for d days since J2000.
func moonCoords(d float64) lunarCoords {
	rad := math.Pi / 180

	el := rad * (218.316 + 13.176396*d) // mean ecliptic longitude
	m := rad * (134.963 + 13.064993*d)  // mean anomaly
	f := rad * (93.272 + 13.229350*d)   // mean argument of latitude

	l := el + rad*6.289*math.Sin(m) // ecliptic longitude
	b := rad * 5.128 * math.Sin(f)  // ecliptic latitude
	dist := 385001 - 20905*math.Cos(m)

	ra, dec := equatorial(l, b)
	return lunarCoords{ra: ra, dec: dec, distanceKm: dist}
}

// moonPosition computes the moon's topocentric azimuth, apparent elevation,
// illuminated fraction, and phase angle for the given instant and observer.
func moonPosition(t time.Time, lat, lon float64) Position {
	rad := math.Pi / 180
	d := daysSinceJ2000(t)

	mc := moonCoords(d)
	h := siderealTime(d) + lon*rad - mc.ra
	az, alt := horizontal(h, lat*rad, mc.dec)

	// Topocentric correction: horizontal parallax lowers the geocentric
	// altitude by up to ~1° near the horizon.
	parallax := math.Asin(earthRadiusKm/mc.distanceKm) * 180 / math.Pi
	alt -= parallax * math.Cos(alt*rad)

	illum, phase := moonIllumination(d, mc)

	return Position{
		Azimuth:      az,
		Elevation:    alt + refractionDeg(alt),
		Illumination: illum,
		PhaseAngle:   phase,
	}
}

// moonIllumination derives the illuminated disk fraction and phase angle
// from the sun-moon elongation.
func moonIllumination(d float64, mc lunarCoords) (fraction, phaseAngleDeg float64) {
	sunRA, sunDec := equatorial(solarEcliptic(d), 0)

	// Geocentric elongation.
	cosPhi := math.Sin(sunDec)*math.Sin(mc.dec) +
		math.Cos(sunDec)*math.Cos(mc.dec)*math.Cos(sunRA-mc.ra)
	phi := math.Acos(math.Max(-1, math.Min(1, cosPhi)))

	// Phase angle at the moon, accounting for the finite sun distance.
	inc := math.Atan2(sunDistanceKm*math.Sin(phi), mc.distanceKm-sunDistanceKm*math.Cos(phi))

	return (1 + math.Cos(inc)) / 2, inc * 180 / math.Pi
}
