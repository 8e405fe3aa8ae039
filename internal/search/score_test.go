// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package search

import (
	"testing"

	"github.com/alpenglow-dev/alpenglow/internal/ephemeris"
	"github.com/alpenglow-dev/alpenglow/internal/logging"
	"github.com/alpenglow-dev/alpenglow/internal/models"
)

func scoreEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(ephemeris.NewBuiltinProvider(), DefaultConfig(), logging.Logger())
}

func TestClassifyTier(t *testing.T) {
	eng := scoreEngine(t)
	tests := []struct {
		azDiff float64
		want   models.AccuracyTier
	}{
		{0.00, models.TierPerfect},
		{0.10, models.TierPerfect}, // boundary is inclusive
		{0.11, models.TierExcellent},
		{0.25, models.TierExcellent},
		{0.26, models.TierGood},
		{0.40, models.TierGood},
		{0.41, models.TierFair},
		{0.50, models.TierFair},
	}
	for _, tt := range tests {
		if got := eng.classifyTier(tt.azDiff); got != tt.want {
			t.Errorf("classifyTier(%v) = %q, want %q", tt.azDiff, got, tt.want)
		}
	}
}

func TestQualityScoreBounds(t *testing.T) {
	eng := scoreEngine(t)

	// Exact crossing in the comfort band scores at the sun's ceiling.
	if s := eng.qualityScore(0, 0, 3.0, false, 0); s != 100 {
		t.Errorf("perfect solar crossing = %v, want 100", s)
	}
	// Worst accepted crossing still lands in [0, 100].
	if s := eng.qualityScore(0.5, 0.35, 30.0, false, 0); s < 0 || s > 100 {
		t.Errorf("edge solar crossing = %v, out of range", s)
	}
	// Full moon, exact, comfortable: the lunar ceiling.
	if s := eng.qualityScore(0, 0, 3.0, true, 1.0); s != 100 {
		t.Errorf("perfect lunar crossing = %v, want 100", s)
	}
}

func TestQualityScoreMonotonicInCloseness(t *testing.T) {
	eng := scoreEngine(t)
	tight := eng.qualityScore(0.05, 0.05, 3.0, false, 0)
	loose := eng.qualityScore(0.45, 0.30, 3.0, false, 0)
	if tight <= loose {
		t.Errorf("tighter crossing scored %v, looser scored %v", tight, loose)
	}
}

func TestQualityScoreRewardsIllumination(t *testing.T) {
	eng := scoreEngine(t)
	full := eng.qualityScore(0.1, 0.1, 3.0, true, 1.0)
	gibbous := eng.qualityScore(0.1, 0.1, 3.0, true, 0.6)
	if full <= gibbous {
		t.Errorf("full moon scored %v, gibbous scored %v", full, gibbous)
	}
}

func TestElevationComfort(t *testing.T) {
	tests := []struct {
		elevation float64
		want      float64
	}{
		{3.0, 1},    // inside the ideal band
		{1.0, 1},    // band edges
		{6.0, 1},
		{-1.0, 0},   // horizon glare floor
		{-5.0, 0},
		{15.0, 0},   // high-sky ceiling
		{20.0, 0},
		{0.0, 0.5},  // halfway up the lower ramp
		{10.5, 0.5}, // halfway down the upper ramp
	}
	for _, tt := range tests {
		if got := elevationComfort(tt.elevation); !almostEqual(got, tt.want, 1e-9) {
			t.Errorf("elevationComfort(%v) = %v, want %v", tt.elevation, got, tt.want)
		}
	}
}

func almostEqual(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
