// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package search

import (
	"github.com/alpenglow-dev/alpenglow/internal/models"
)

// Score weights. Angular closeness dominates; elevation comfort rewards the
// band a few degrees above the horizon where the disk photographs well; the
// moon additionally trades weight for brightness.
const (
	sunClosenessWeight = 0.70
	sunComfortWeight   = 0.30

	moonClosenessWeight = 0.55
	moonComfortWeight   = 0.25
	moonIllumWeight     = 0.20

	comfortIdealLow  = 1.0 // degrees
	comfortIdealHigh = 6.0
	comfortFloorLow  = -1.0
	comfortCeiling   = 15.0
)

// classifyTier maps the final azimuth difference to a discrete accuracy
// tier. Callers only invoke this for diffs at or under the final tolerance.
func (e *Engine) classifyTier(azDiff float64) models.AccuracyTier {
	switch {
	case azDiff <= e.cfg.TierPerfect:
		return models.TierPerfect
	case azDiff <= e.cfg.TierExcellent:
		return models.TierExcellent
	case azDiff <= e.cfg.TierGood:
		return models.TierGood
	default:
		return models.TierFair
	}
}

// qualityScore blends angular closeness, elevation comfort, and (for the
// moon) illumination into a 0-100 ranking.
func (e *Engine) qualityScore(azDiff, elDiff, elevation float64, lunar bool, illumination float64) float64 {
	closeness := 1 - (azDiff+elDiff)/(e.cfg.FinalAzimuthTol+e.cfg.FinalElevationTol)
	closeness = clamp01(closeness)

	comfort := elevationComfort(elevation)

	var score float64
	if lunar {
		score = moonClosenessWeight*closeness + moonComfortWeight*comfort + moonIllumWeight*clamp01(illumination)
	} else {
		score = sunClosenessWeight*closeness + sunComfortWeight*comfort
	}
	return score * 100
}

// elevationComfort peaks in the photographic sweet spot a few degrees above
// the horizon and falls off toward the horizon glare below and the
// uninteresting high sky above.
func elevationComfort(elevation float64) float64 {
	switch {
	case elevation >= comfortIdealLow && elevation <= comfortIdealHigh:
		return 1
	case elevation < comfortFloorLow || elevation > comfortCeiling:
		return 0
	case elevation < comfortIdealLow:
		return (elevation - comfortFloorLow) / (comfortIdealLow - comfortFloorLow)
	default:
		return (comfortCeiling - elevation) / (comfortCeiling - comfortIdealHigh)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
