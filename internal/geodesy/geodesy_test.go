// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package geodesy

import (
	"math"
	"testing"
	"time"

	"github.com/alpenglow-dev/alpenglow/internal/models"
)

// Lake Kawaguchi shore looking at Mount Fuji, a classic diamond alignment
// viewpoint: the summit sits roughly south-southwest at ~16km.
var (
	lakeShore = Point{Latitude: 35.5171, Longitude: 138.7519, Elevation: 833}
	fujiPeak  = Point{Latitude: 35.3606, Longitude: 138.7274, Elevation: 3776}
)

func TestBearingRange(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64 // approximate expected bearing
		tol  float64
	}{
		{"due north", Point{Latitude: 0, Longitude: 0}, Point{Latitude: 1, Longitude: 0}, 0, 0.01},
		{"due east", Point{Latitude: 0, Longitude: 0}, Point{Latitude: 0, Longitude: 1}, 90, 0.01},
		{"due south", Point{Latitude: 1, Longitude: 0}, Point{Latitude: 0, Longitude: 0}, 180, 0.01},
		{"due west", Point{Latitude: 0, Longitude: 1}, Point{Latitude: 0, Longitude: 0}, 270, 0.01},
		{"lake to fuji roughly SSW", lakeShore, fujiPeak, 187.3, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bearing(tt.a, tt.b)
			if got < 0 || got >= 360 {
				t.Fatalf("Bearing() = %v, outside [0,360)", got)
			}
			if math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Bearing() = %v, want %v ±%v", got, tt.want, tt.tol)
			}
		})
	}
}

func TestBearingRoundTrip(t *testing.T) {
	// Forward and reverse bearings differ by ~180° modulo the short-distance
	// spherical approximation error.
	forward := Bearing(lakeShore, fujiPeak)
	reverse := Bearing(fujiPeak, lakeShore)

	diff := AngularDiff(forward, reverse)
	if math.Abs(diff-180) > 0.5 {
		t.Errorf("bearing round trip: forward %v, reverse %v, separation %v want ~180", forward, reverse, diff)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	ab := Distance(lakeShore, fujiPeak)
	ba := Distance(fujiPeak, lakeShore)
	if ab != ba {
		t.Errorf("Distance not symmetric: %v vs %v", ab, ba)
	}
	// ~16-18 km between the lake shore and the summit.
	if ab < 15000 || ab > 20000 {
		t.Errorf("Distance() = %v m, want 15-20 km", ab)
	}
}

func TestDistanceZero(t *testing.T) {
	if d := Distance(lakeShore, lakeShore); d != 0 {
		t.Errorf("Distance(p, p) = %v, want 0", d)
	}
}

func TestElevationAngle(t *testing.T) {
	got := ElevationAngle(lakeShore, fujiPeak)

	// Raw geometry: atan(2943/17400) ≈ 9.6°; curvature at 17km removes only
	// ~0.07°, so expect just under the raw angle.
	raw := 180 / math.Pi * math.Atan2(fujiPeak.Elevation-lakeShore.Elevation, Distance(lakeShore, fujiPeak))
	if got >= raw {
		t.Errorf("ElevationAngle() = %v, want below uncorrected %v", got, raw)
	}
	if raw-got > 0.2 {
		t.Errorf("curvature correction too large at 17km: raw %v, corrected %v", raw, got)
	}
}

func TestElevationAngleCurvatureDominatesFar(t *testing.T) {
	// At 200km a same-height target sits well below the apparent horizon.
	far := Point{Latitude: lakeShore.Latitude + 1.8, Longitude: lakeShore.Longitude, Elevation: lakeShore.Elevation}
	if got := ElevationAngle(lakeShore, far); got >= 0 {
		t.Errorf("ElevationAngle() = %v, want negative for distant same-height target", got)
	}
}

func TestAngularDiff(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{10, 350, 20},
		{350, 10, 20},
		{0, 180, 180},
		{90, 90, 0},
		{359.5, 0.5, 1},
		{-10, 10, 20},
	}

	for _, tt := range tests {
		if got := AngularDiff(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngularDiff(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNormalizeAzimuth(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{361, 1},
		{-1, 359},
		{720.5, 0.5},
	}

	for _, tt := range tests {
		if got := NormalizeAzimuth(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("NormalizeAzimuth(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDeriveGeometry(t *testing.T) {
	l := &models.Landmark{
		Latitude: lakeShore.Latitude, Longitude: lakeShore.Longitude, Elevation: lakeShore.Elevation,
		PeakLatitude: fujiPeak.Latitude, PeakLongitude: fujiPeak.Longitude, PeakElevation: fujiPeak.Elevation,
	}
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	DeriveGeometry(l, now)

	if l.AzimuthToPeak == 0 || l.DistanceToPeak == 0 || l.ElevationAngle == 0 {
		t.Fatalf("derived fields not populated: %+v", l)
	}
	if !l.GeometryUpdated.Equal(now) {
		t.Errorf("GeometryUpdated = %v, want %v", l.GeometryUpdated, now)
	}
	if l.AzimuthToPeak != Bearing(lakeShore, fujiPeak) {
		t.Errorf("AzimuthToPeak mismatch")
	}
}
