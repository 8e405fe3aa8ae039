// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package search

import "time"

// Config holds the tuning parameters of the alignment search. The numbers
// are operator-editable configuration, not structural contracts: tightening
// the final tolerances only ever shrinks the emitted event set.
type Config struct {
	// Coarse pass: sampling interval and the wide acceptance thresholds.
	// Coarse thresholds must stay wider than the body moves in one interval
	// (the sun covers ~0.5°/2min near the horizon) or true alignments can
	// fall between samples.
	CoarseInterval     time.Duration `koanf:"coarse_interval"`
	CoarseAzimuthTol   float64       `koanf:"coarse_azimuth_tol"`   // degrees
	CoarseElevationTol float64       `koanf:"coarse_elevation_tol"` // degrees

	// Fine pass: re-sampling interval inside a bounded window around each
	// coarse candidate, and the final acceptance thresholds.
	FineInterval      time.Duration `koanf:"fine_interval"`
	FineWindow        time.Duration `koanf:"fine_window"` // half-width around a candidate
	FinalAzimuthTol   float64       `koanf:"final_azimuth_tol"`
	FinalElevationTol float64       `koanf:"final_elevation_tol"`

	// Accuracy tier boundaries on the final azimuth difference, ordered
	// perfect < excellent < good; everything under FinalAzimuthTol but above
	// TierGood is "fair".
	TierPerfect   float64 `koanf:"tier_perfect"`
	TierExcellent float64 `koanf:"tier_excellent"`
	TierGood      float64 `koanf:"tier_good"`

	// MinMoonIllumination rejects pearl candidates whose disk fraction is
	// too dark to photograph, applied during the coarse pass.
	MinMoonIllumination float64 `koanf:"min_moon_illumination"`

	// Season pre-filter for the sun: skip months whose sunrise/sunset
	// azimuth band cannot reach the landmark. SeasonMargin widens the band
	// to cover azimuth drift between the horizon and the summit's elevation
	// angle.
	SeasonFilterEnabled bool    `koanf:"season_filter_enabled"`
	SeasonMargin        float64 `koanf:"season_margin"` // degrees
}

// DefaultConfig returns the shipped search tuning.
func DefaultConfig() Config {
	return Config{
		CoarseInterval:      2 * time.Minute,
		CoarseAzimuthTol:    5.0,
		CoarseElevationTol:  3.0,
		FineInterval:        10 * time.Second,
		FineWindow:          20 * time.Minute,
		FinalAzimuthTol:     0.5,
		FinalElevationTol:   0.35,
		TierPerfect:         0.10,
		TierExcellent:       0.25,
		TierGood:            0.40,
		MinMoonIllumination: 0.35,
		SeasonFilterEnabled: true,
		SeasonMargin:        10.0,
	}
}

// normalized returns a copy with zero values replaced by defaults, so a
// partially specified config never divides by zero or scans forever.
func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.CoarseInterval <= 0 {
		c.CoarseInterval = def.CoarseInterval
	}
	if c.FineInterval <= 0 {
		c.FineInterval = def.FineInterval
	}
	if c.FineWindow <= 0 {
		c.FineWindow = def.FineWindow
	}
	if c.CoarseAzimuthTol <= 0 {
		c.CoarseAzimuthTol = def.CoarseAzimuthTol
	}
	if c.CoarseElevationTol <= 0 {
		c.CoarseElevationTol = def.CoarseElevationTol
	}
	if c.FinalAzimuthTol <= 0 {
		c.FinalAzimuthTol = def.FinalAzimuthTol
	}
	if c.FinalElevationTol <= 0 {
		c.FinalElevationTol = def.FinalElevationTol
	}
	if c.TierPerfect <= 0 {
		c.TierPerfect = def.TierPerfect
	}
	if c.TierExcellent <= 0 {
		c.TierExcellent = def.TierExcellent
	}
	if c.TierGood <= 0 {
		c.TierGood = def.TierGood
	}
	if c.SeasonMargin <= 0 {
		c.SeasonMargin = def.SeasonMargin
	}
	return c
}
