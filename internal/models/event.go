// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package models

import (
	"time"

	"github.com/google/uuid"
)

// PhenomenonKind identifies which body and which half of its arc produced
// an alignment event.
type PhenomenonKind string

// Phenomenon kinds. "Diamond" events are solar, "pearl" events are lunar,
// following the photographic naming for a sun or moon disk sitting on a
// summit.
const (
	PhenomenonSunRising   PhenomenonKind = "sun_rising"
	PhenomenonSunSetting  PhenomenonKind = "sun_setting"
	PhenomenonMoonRising  PhenomenonKind = "moon_rising"
	PhenomenonMoonSetting PhenomenonKind = "moon_setting"
)

// IsLunar reports whether the kind refers to a moon event.
func (k PhenomenonKind) IsLunar() bool {
	return k == PhenomenonMoonRising || k == PhenomenonMoonSetting
}

// Valid reports whether the kind is one of the four defined phenomena.
func (k PhenomenonKind) Valid() bool {
	switch k {
	case PhenomenonSunRising, PhenomenonSunSetting, PhenomenonMoonRising, PhenomenonMoonSetting:
		return true
	}
	return false
}

// AccuracyTier buckets an event by angular closeness of the body's azimuth
// to the landmark's azimuth at the event instant.
type AccuracyTier string

// Accuracy tiers, ordered from tightest to loosest.
const (
	TierPerfect   AccuracyTier = "perfect"
	TierExcellent AccuracyTier = "excellent"
	TierGood      AccuracyTier = "good"
	TierFair      AccuracyTier = "fair"
)

// AlignmentEvent is one computed alignment: the instant a celestial body's
// disk crosses the line of sight toward a landmark's summit.
//
// Events are immutable once persisted. A regeneration pass for a scope
// deletes and reinserts all events in that scope; at most one event may exist
// per (landmark, date, phenomenon kind).
type AlignmentEvent struct {
	ID         uuid.UUID `json:"id"`
	LandmarkID int64     `json:"landmark_id"`

	// EventDate is the civil date the event belongs to; EventTime is the
	// exact instant, stored in UTC.
	EventDate time.Time `json:"event_date"`
	EventTime time.Time `json:"event_time"`

	Kind PhenomenonKind `json:"kind"`

	// Body position at the event instant.
	Azimuth   float64 `json:"azimuth"`   // degrees [0,360)
	Elevation float64 `json:"elevation"` // degrees above local horizon

	// Closeness and ranking.
	AzimuthDiff  float64      `json:"azimuth_diff"` // degrees, minimal angular difference
	Tier         AccuracyTier `json:"tier"`
	QualityScore float64      `json:"quality_score"` // 0-100

	// Lunar extras; nil for solar events.
	MoonPhase        *float64 `json:"moon_phase,omitempty"`        // phase angle, degrees
	MoonIllumination *float64 `json:"moon_illumination,omitempty"` // fraction 0-1

	// CalculationYear tags the generation run that produced the row.
	CalculationYear int `json:"calculation_year"`

	CreatedAt time.Time `json:"created_at"`
}
