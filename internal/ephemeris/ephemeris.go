// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package ephemeris

import "time"

// Body selects which celestial body a position request refers to.
type Body string

// Bodies the engine searches for.
const (
	BodySun  Body = "sun"
	BodyMoon Body = "moon"
)

// Position is a topocentric body position for one observer and instant.
type Position struct {
	Azimuth   float64 // degrees [0,360), measured from true north
	Elevation float64 // degrees above the local horizon, refraction-corrected

	// Lunar-only fields; zero for the sun.
	Illumination float64 // illuminated disk fraction, 0-1
	PhaseAngle   float64 // degrees; 0 at full moon, 180 at new moon
}

// Provider supplies celestial positions. The second return value is false
// when the body has no meaningful position for the request (far below the
// horizon); the engine treats that as a normal negative result, never an
// error. Implementations are assumed correct and fast (in-process).
type Provider interface {
	Position(t time.Time, lat, lon, elevationM float64, body Body) (Position, bool)
}

// Func adapts a plain function to the Provider interface, mirroring
// http.HandlerFunc. Tests use it to drive the search engine with synthetic
// skies.
type Func func(t time.Time, lat, lon, elevationM float64, body Body) (Position, bool)

// Position implements Provider.
func (f Func) Position(t time.Time, lat, lon, elevationM float64, body Body) (Position, bool) {
	return f(t, lat, lon, elevationM, body)
}
