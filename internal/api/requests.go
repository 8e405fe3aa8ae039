// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/alpenglow-dev/alpenglow/internal/models"
)

// maxRequestBody caps request bodies. The largest legitimate payload is a
// month regeneration listing every landmark ID.
const maxRequestBody = 1 << 20

// decodeJSON decodes a request body into dst, rejecting unknown fields and
// oversized bodies.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// landmarkRequest is the write shape for landmark create and update.
type landmarkRequest struct {
	Name          string  `json:"name" validate:"required,min=1,max=200"`
	Latitude      float64 `json:"latitude" validate:"latitude"`
	Longitude     float64 `json:"longitude" validate:"longitude"`
	Elevation     float64 `json:"elevation" validate:"gte=-500,lte=9000"`
	PeakLatitude  float64 `json:"peak_latitude" validate:"latitude"`
	PeakLongitude float64 `json:"peak_longitude" validate:"longitude"`
	PeakElevation float64 `json:"peak_elevation" validate:"gte=-500,lte=9000"`
}

// apply copies the request fields onto a landmark. Derived geometry is left
// alone; the store recomputes it when coordinates changed.
func (req *landmarkRequest) apply(l *models.Landmark) {
	l.Name = req.Name
	l.Latitude = req.Latitude
	l.Longitude = req.Longitude
	l.Elevation = req.Elevation
	l.PeakLatitude = req.PeakLatitude
	l.PeakLongitude = req.PeakLongitude
	l.PeakElevation = req.PeakElevation
}

// regenerateYearRequest triggers a whole-year regeneration.
type regenerateYearRequest struct {
	Year     int    `json:"year" validate:"required,min=1900,max=2200"`
	Priority string `json:"priority" validate:"omitempty,oneof=high normal low"`
}

// regenerateMonthRequest triggers a month regeneration, optionally limited
// to a landmark subset.
type regenerateMonthRequest struct {
	Year        int     `json:"year" validate:"required,min=1900,max=2200"`
	Month       int     `json:"month" validate:"required,min=1,max=12"`
	LandmarkIDs []int64 `json:"landmark_ids" validate:"omitempty,dive,gt=0"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=high normal low"`
}

// regenerateDayRequest triggers regeneration of a single civil day.
type regenerateDayRequest struct {
	Year     int    `json:"year" validate:"required,min=1900,max=2200"`
	Month    int    `json:"month" validate:"required,min=1,max=12"`
	Day      int    `json:"day" validate:"required,min=1,max=31"`
	Priority string `json:"priority" validate:"omitempty,oneof=high normal low"`
}

// regenerateLandmarkRequest triggers regeneration of one landmark over an
// inclusive year range.
type regenerateLandmarkRequest struct {
	LandmarkID int64  `json:"landmark_id" validate:"required,gt=0"`
	FromYear   int    `json:"from_year" validate:"required,min=1900,max=2200"`
	ToYear     int    `json:"to_year" validate:"required,min=1900,max=2200"`
	Priority   string `json:"priority" validate:"omitempty,oneof=high normal low"`
}

// priorityOrDefault maps the optional request priority to the queue type.
func priorityOrDefault(s string) models.JobPriority {
	if s == "" {
		return models.PriorityNormal
	}
	return models.JobPriority(s)
}
