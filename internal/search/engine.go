// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package search

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/alpenglow-dev/alpenglow/internal/ephemeris"
	"github.com/alpenglow-dev/alpenglow/internal/geodesy"
	"github.com/alpenglow-dev/alpenglow/internal/models"
)

// preScanInterval drives the cheap first sweep that locates the sun's
// near-horizon windows before the coarse pass.
const preScanInterval = 10 * time.Minute

// nearHorizonCeiling bounds the sun windows: alignments happen against a
// summit a few degrees up, never 20° above the horizon.
const nearHorizonCeiling = 20.0

// Engine performs the two-phase alignment search for one landmark and one
// civil day. It is stateless apart from configuration and safe for
// concurrent use; passes for different (landmark, date) pairs are
// independent.
type Engine struct {
	provider ephemeris.Provider
	cfg      Config
	logger   zerolog.Logger
}

// NewEngine creates a search engine over the given ephemeris provider.
func NewEngine(provider ephemeris.Provider, cfg Config, logger zerolog.Logger) *Engine {
	return &Engine{
		provider: provider,
		cfg:      cfg.normalized(),
		logger:   logger.With().Str("component", "search").Logger(),
	}
}

// candidate is one coarse sample close enough to warrant a fine pass.
type candidate struct {
	at       time.Time
	combined float64 // azDiff + elDiff at the coarse sample
}

// SearchDay returns the alignment events for the landmark on the civil day
// starting at dayStart (midnight in the calendar location). Zero events is
// the normal outcome for most days; a day with both a rising and a setting
// event is possible for the moon.
func (e *Engine) SearchDay(l *models.Landmark, dayStart time.Time, body ephemeris.Body) []models.AlignmentEvent {
	if body == ephemeris.BodySun && e.cfg.SeasonFilterEnabled && !e.sunPossibleInMonth(l, dayStart.Month()) {
		return nil
	}

	dayEnd := dayStart.Add(24 * time.Hour)
	windows := e.scanWindows(l, dayStart, dayEnd, body)
	if len(windows) == 0 {
		return nil
	}

	seeds := e.coarsePass(l, windows, body)

	// One event per phenomenon kind per day; when two fine minima map to
	// the same kind (possible for the fast-moving moon), the closer one
	// wins.
	best := make(map[models.PhenomenonKind]models.AlignmentEvent)
	bestDiff := make(map[models.PhenomenonKind]float64)

	for _, seed := range seeds {
		ev, combined, ok := e.finePass(l, seed, dayStart, dayEnd, body)
		if !ok {
			continue
		}
		if prev, exists := bestDiff[ev.Kind]; exists && prev <= combined {
			continue
		}
		best[ev.Kind] = ev
		bestDiff[ev.Kind] = combined
	}

	events := make([]models.AlignmentEvent, 0, len(best))
	for _, ev := range best {
		events = append(events, ev)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].EventTime.Before(events[j].EventTime) })
	return events
}

// timeWindow is a half-open scan interval.
type timeWindow struct {
	from, to time.Time
}

// scanWindows bounds the coarse pass. The moon's rise and set drift through
// the whole clock, so its window is the full day; the sun only matters in
// the near-horizon windows flanking rise and set, found with a cheap
// pre-scan.
func (e *Engine) scanWindows(l *models.Landmark, dayStart, dayEnd time.Time, body ephemeris.Body) []timeWindow {
	if body == ephemeris.BodyMoon {
		return []timeWindow{{from: dayStart, to: dayEnd}}
	}

	var windows []timeWindow
	var open *timeWindow
	for t := dayStart; t.Before(dayEnd); t = t.Add(preScanInterval) {
		pos, ok := e.provider.Position(t, l.Latitude, l.Longitude, l.Elevation, body)
		near := ok && pos.Elevation <= nearHorizonCeiling
		switch {
		case near && open == nil:
			open = &timeWindow{from: t.Add(-preScanInterval), to: t.Add(preScanInterval)}
		case near:
			open.to = t.Add(preScanInterval)
		case open != nil:
			windows = append(windows, clampWindow(*open, dayStart, dayEnd))
			open = nil
		}
	}
	if open != nil {
		windows = append(windows, clampWindow(*open, dayStart, dayEnd))
	}
	return windows
}

func clampWindow(w timeWindow, lo, hi time.Time) timeWindow {
	if w.from.Before(lo) {
		w.from = lo
	}
	if w.to.After(hi) {
		w.to = hi
	}
	return w
}

// coarsePass samples the windows at the coarse interval and clusters the
// samples that land inside the coarse tolerances. Clusters closer together
// than the fine window collapse into one seed (the closest sample), so the
// fine pass runs once per true crossing.
func (e *Engine) coarsePass(l *models.Landmark, windows []timeWindow, body ephemeris.Body) []candidate {
	var seeds []candidate
	for _, w := range windows {
		for t := w.from; t.Before(w.to); t = t.Add(e.cfg.CoarseInterval) {
			pos, ok := e.provider.Position(t, l.Latitude, l.Longitude, l.Elevation, body)
			if !ok {
				continue
			}
			if body == ephemeris.BodyMoon && !e.moonVisible(pos.Illumination) {
				continue
			}

			azDiff := geodesy.AngularDiff(pos.Azimuth, l.AzimuthToPeak)
			elDiff := abs(pos.Elevation - l.ElevationAngle)
			if azDiff > e.cfg.CoarseAzimuthTol || elDiff > e.cfg.CoarseElevationTol {
				continue
			}

			cand := candidate{at: t, combined: azDiff + elDiff}
			if n := len(seeds); n > 0 && cand.at.Sub(seeds[n-1].at) < e.cfg.FineWindow {
				if cand.combined < seeds[n-1].combined {
					seeds[n-1] = cand
				}
				continue
			}
			seeds = append(seeds, cand)
		}
	}
	return seeds
}

// finePass re-samples around a seed and emits an event if the closest
// instant satisfies the final tolerances. The bool result distinguishes a
// near-miss (discarded) from an accepted event.
func (e *Engine) finePass(l *models.Landmark, seed candidate, dayStart, dayEnd time.Time, body ephemeris.Body) (models.AlignmentEvent, float64, bool) {
	w := clampWindow(timeWindow{
		from: seed.at.Add(-e.cfg.FineWindow),
		to:   seed.at.Add(e.cfg.FineWindow),
	}, dayStart, dayEnd)

	var (
		bestAt       time.Time
		bestPos      ephemeris.Position
		bestCombined = -1.0
	)
	for t := w.from; t.Before(w.to); t = t.Add(e.cfg.FineInterval) {
		pos, ok := e.provider.Position(t, l.Latitude, l.Longitude, l.Elevation, body)
		if !ok {
			continue
		}
		combined := geodesy.AngularDiff(pos.Azimuth, l.AzimuthToPeak) + abs(pos.Elevation-l.ElevationAngle)
		if bestCombined < 0 || combined < bestCombined {
			bestAt, bestPos, bestCombined = t, pos, combined
		}
	}
	if bestCombined < 0 {
		return models.AlignmentEvent{}, 0, false
	}

	azDiff := geodesy.AngularDiff(bestPos.Azimuth, l.AzimuthToPeak)
	elDiff := abs(bestPos.Elevation - l.ElevationAngle)
	if azDiff > e.cfg.FinalAzimuthTol || elDiff > e.cfg.FinalElevationTol {
		e.logger.Debug().
			Int64("landmark_id", l.ID).
			Time("at", bestAt).
			Float64("azimuth_diff", azDiff).
			Float64("elevation_diff", elDiff).
			Msg("near miss discarded")
		return models.AlignmentEvent{}, 0, false
	}

	lunar := body == ephemeris.BodyMoon
	if lunar && !e.moonVisible(bestPos.Illumination) {
		return models.AlignmentEvent{}, 0, false
	}

	ev := models.AlignmentEvent{
		LandmarkID:      l.ID,
		EventDate:       time.Date(dayStart.Year(), dayStart.Month(), dayStart.Day(), 0, 0, 0, 0, time.UTC),
		EventTime:       bestAt.UTC(),
		Kind:            e.classifyKind(l, bestAt, body),
		Azimuth:         bestPos.Azimuth,
		Elevation:       bestPos.Elevation,
		AzimuthDiff:     azDiff,
		Tier:            e.classifyTier(azDiff),
		QualityScore:    e.qualityScore(azDiff, elDiff, bestPos.Elevation, lunar, bestPos.Illumination),
		CalculationYear: dayStart.Year(),
	}
	if lunar {
		phase := bestPos.PhaseAngle
		illum := bestPos.Illumination
		ev.MoonPhase = &phase
		ev.MoonIllumination = &illum
	}
	return ev, bestCombined, true
}

// classifyKind derives rising vs setting from the elevation slope at the
// event instant: climbing means the first half of the above-horizon arc.
func (e *Engine) classifyKind(l *models.Landmark, at time.Time, body ephemeris.Body) models.PhenomenonKind {
	const slopeProbe = 5 * time.Minute

	before, okB := e.provider.Position(at.Add(-slopeProbe), l.Latitude, l.Longitude, l.Elevation, body)
	after, okA := e.provider.Position(at.Add(slopeProbe), l.Latitude, l.Longitude, l.Elevation, body)

	rising := true
	switch {
	case okB && okA:
		rising = after.Elevation > before.Elevation
	case okB:
		// No position after: the body dropped out of range, so it was
		// setting.
		rising = false
	case okA:
		rising = true
	default:
		// Both probes out of range (window clamped at a day edge). Fall
		// back to the azimuth side: east of the meridian climbs, west sinks.
		if pos, ok := e.provider.Position(at, l.Latitude, l.Longitude, l.Elevation, body); ok {
			rising = pos.Azimuth < 180
		}
	}

	if body == ephemeris.BodyMoon {
		if rising {
			return models.PhenomenonMoonRising
		}
		return models.PhenomenonMoonSetting
	}
	if rising {
		return models.PhenomenonSunRising
	}
	return models.PhenomenonSunSetting
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
