// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// JobPriority orders queue execution. Within one priority jobs run FIFO.
type JobPriority string

// Job priorities. Low-priority jobs additionally carry an artificial
// execution delay and inter-step pacing so bulk regeneration cannot starve
// interactive traffic.
const (
	PriorityHigh   JobPriority = "high"
	PriorityNormal JobPriority = "normal"
	PriorityLow    JobPriority = "low"
)

// Valid reports whether the priority is one of the defined classes.
func (p JobPriority) Valid() bool {
	return p == PriorityHigh || p == PriorityNormal || p == PriorityLow
}

// JobStatus is the lifecycle state of a queued job.
type JobStatus string

// Job lifecycle states. A job is owned by the queue until a worker claims
// it (active); a stalled active job may be reclaimed once; exhausted jobs
// land in failed and stay visible for operator inspection.
const (
	JobWaiting   JobStatus = "waiting"
	JobActive    JobStatus = "active"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// JobPayload is the closed set of work descriptions the queue can carry.
// Each trigger surface maps to exactly one variant, so handlers switch over
// concrete types instead of dispatching on strings.
type JobPayload interface {
	// Kind returns the stable discriminator persisted alongside the payload.
	Kind() string
	// DedupeKey returns the natural deduplication key for the payload.
	DedupeKey() string
}

// YearPayload asks for a full regeneration of one calculation year across
// all landmarks.
type YearPayload struct {
	Year int `json:"year"`
}

// Kind implements JobPayload.
func (p YearPayload) Kind() string { return "regenerate_year" }

// DedupeKey implements JobPayload.
func (p YearPayload) DedupeKey() string { return fmt.Sprintf("year:%d", p.Year) }

// LandmarkYearsPayload asks for regeneration of one landmark over an
// inclusive year range. Used when a landmark is added or its coordinates
// change.
type LandmarkYearsPayload struct {
	LandmarkID int64 `json:"landmark_id"`
	FromYear   int   `json:"from_year"`
	ToYear     int   `json:"to_year"`
}

// Kind implements JobPayload.
func (p LandmarkYearsPayload) Kind() string { return "regenerate_landmark" }

// DedupeKey implements JobPayload.
func (p LandmarkYearsPayload) DedupeKey() string {
	return fmt.Sprintf("landmark:%d:%d-%d", p.LandmarkID, p.FromYear, p.ToYear)
}

// MonthPayload asks for regeneration of one month of one year for a set of
// landmarks. An empty LandmarkIDs slice means all landmarks.
type MonthPayload struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	LandmarkIDs []int64 `json:"landmark_ids,omitempty"`
}

// Kind implements JobPayload.
func (p MonthPayload) Kind() string { return "regenerate_month" }

// DedupeKey implements JobPayload. The landmark subset is encoded sorted, so
// equal sets always collide and different sets never do.
func (p MonthPayload) DedupeKey() string {
	if len(p.LandmarkIDs) == 0 {
		return fmt.Sprintf("month:%d-%02d", p.Year, p.Month)
	}
	ids := make([]int64, len(p.LandmarkIDs))
	copy(ids, p.LandmarkIDs)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return fmt.Sprintf("month:%d-%02d:%s", p.Year, p.Month, strings.Join(parts, ","))
}

// DayPayload asks for regeneration of one civil day across all landmarks.
type DayPayload struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Kind implements JobPayload.
func (p DayPayload) Kind() string { return "regenerate_day" }

// DedupeKey implements JobPayload.
func (p DayPayload) DedupeKey() string {
	return fmt.Sprintf("day:%d-%02d-%02d", p.Year, p.Month, p.Day)
}

// Job is one unit of queued work. The queue owns the record for its
// lifetime; a claiming worker owns it exclusively until completion, failure,
// or stall-timeout reclaim.
type Job struct {
	ID        uuid.UUID   `json:"id"`
	Payload   JobPayload  `json:"payload"`
	Priority  JobPriority `json:"priority"`
	DedupeKey string      `json:"dedupe_key"`
	Status    JobStatus   `json:"status"`

	// Attempts counts executions so far; MaxAttempts is the retry budget.
	Attempts    int `json:"attempts"`
	MaxAttempts int `json:"max_attempts"`

	// RunAt is the earliest permitted execution time (backoff delays and the
	// deliberate low-priority delay both land here).
	RunAt time.Time `json:"run_at"`

	// Reclaimed marks a job already requeued once after a stall; a second
	// stall fails it outright.
	Reclaimed bool `json:"reclaimed"`

	LastError   string     `json:"last_error,omitempty"`
	HeartbeatAt *time.Time `json:"heartbeat_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// MarshalPayload serializes a payload to its persisted JSON form.
func MarshalPayload(p JobPayload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", p.Kind(), err)
	}
	return data, nil
}

// UnmarshalPayload reconstructs a payload from its persisted kind and JSON
// body. Unknown kinds are an error: they indicate a schema/version mismatch,
// not a recoverable condition.
func UnmarshalPayload(kind string, data []byte) (JobPayload, error) {
	switch kind {
	case "regenerate_year":
		var p YearPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal year payload: %w", err)
		}
		return p, nil
	case "regenerate_landmark":
		var p LandmarkYearsPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal landmark payload: %w", err)
		}
		return p, nil
	case "regenerate_month":
		var p MonthPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal month payload: %w", err)
		}
		return p, nil
	case "regenerate_day":
		var p DayPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal day payload: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown job payload kind %q", kind)
	}
}
