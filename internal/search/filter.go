// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package search

import (
	"math"
	"time"

	"github.com/alpenglow-dev/alpenglow/internal/geodesy"
	"github.com/alpenglow-dev/alpenglow/internal/models"
)

// maxDeclination is the sun's declination at the solstices, degrees.
const maxDeclination = 23.44

// monthDeclinationRange returns the approximate min and max solar
// declination reached during a month, degrees. The cosine approximation is
// within a degree of the truth, which the season margin absorbs.
func monthDeclinationRange(month time.Month) (minDec, maxDec float64) {
	decAt := func(dayOfYear float64) float64 {
		// Declination ~ -23.44 * cos(2π (N+10)/365), N = day of year.
		return -maxDeclination * math.Cos(2*math.Pi*(dayOfYear+10)/365)
	}

	// First and last day of the month in a non-leap year; solstice months
	// include the extremum itself.
	firstDay := [13]float64{0, 1, 32, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335}
	a := decAt(firstDay[month])
	b := decAt(firstDay[month] + 29)

	minDec, maxDec = math.Min(a, b), math.Max(a, b)
	switch month {
	case time.June:
		maxDec = maxDeclination
	case time.December:
		minDec = -maxDeclination
	}
	return minDec, maxDec
}

// sunriseAzimuth returns the azimuth (degrees from north) where the sun
// crosses the horizon at rise, for a declination and observer latitude in
// degrees. Polar-day/night latitudes clamp to due north/south.
func sunriseAzimuth(declination, latitude float64) float64 {
	x := math.Sin(declination*math.Pi/180) / math.Cos(latitude*math.Pi/180)
	x = math.Max(-1, math.Min(1, x))
	return math.Acos(x) * 180 / math.Pi
}

// SunSeasonMonths returns the calendar months in which a diamond (solar)
// alignment is geometrically possible for the landmark: the months whose
// sunrise or sunset azimuth band, widened by the configured margin, reaches
// the landmark's azimuth-to-peak.
//
// This pre-filter is the dominant cost reduction in yearly batch
// generation; most landmarks admit only a handful of months.
func (e *Engine) SunSeasonMonths(l *models.Landmark) []time.Month {
	if !e.cfg.SeasonFilterEnabled {
		return allMonths()
	}

	var months []time.Month
	for m := time.January; m <= time.December; m++ {
		if e.sunPossibleInMonth(l, m) {
			months = append(months, m)
		}
	}
	return months
}

// sunPossibleInMonth reports whether the landmark azimuth falls inside the
// month's sunrise or sunset azimuth band.
func (e *Engine) sunPossibleInMonth(l *models.Landmark, month time.Month) bool {
	minDec, maxDec := monthDeclinationRange(month)

	riseLo := sunriseAzimuth(maxDec, l.Latitude)
	riseHi := sunriseAzimuth(minDec, l.Latitude)

	margin := e.cfg.SeasonMargin
	target := l.AzimuthToPeak

	// East band at rise, mirrored west band at set.
	if target >= riseLo-margin && target <= riseHi+margin {
		return true
	}
	setLo := 360 - riseHi
	setHi := 360 - riseLo
	return target >= setLo-margin && target <= setHi+margin
}

// moonVisible reports whether a lunar candidate is bright enough to matter.
// Applied during the coarse pass, before any fine sampling.
func (e *Engine) moonVisible(illumination float64) bool {
	return illumination >= e.cfg.MinMoonIllumination
}

func allMonths() []time.Month {
	months := make([]time.Month, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, m)
	}
	return months
}

// monthAllowed reports whether a month is in the landmark's sun season.
func monthAllowed(months []time.Month, m time.Month) bool {
	for _, allowed := range months {
		if allowed == m {
			return true
		}
	}
	return false
}

// azimuthWithin is a convenience wrapper over the minimal angular
// difference.
func azimuthWithin(a, b, tol float64) bool {
	return geodesy.AngularDiff(a, b) <= tol
}
