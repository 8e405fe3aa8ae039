// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package models

import "fmt"

// RuleKind is the recurrence class of a scheduled maintenance rule.
type RuleKind string

// Rule kinds.
const (
	RuleDaily   RuleKind = "daily"
	RuleWeekly  RuleKind = "weekly"
	RuleMonthly RuleKind = "monthly"
	RuleAnnual  RuleKind = "annual"
)

// Valid reports whether the kind is one of the defined recurrence classes.
func (k RuleKind) Valid() bool {
	switch k {
	case RuleDaily, RuleWeekly, RuleMonthly, RuleAnnual:
		return true
	}
	return false
}

// ScheduledRule is a pure timer specification: when to fire and what job to
// enqueue. It owns no external state; the scheduler recomputes next-fire
// times functionally from the rule and the current clock.
type ScheduledRule struct {
	Name string   `json:"name" koanf:"name"`
	Kind RuleKind `json:"kind" koanf:"kind"`

	// Target time of day in the scheduler's configured location.
	Hour   int `json:"hour" koanf:"hour"`
	Minute int `json:"minute" koanf:"minute"`

	// Weekday applies to weekly rules (0 = Sunday).
	Weekday int `json:"weekday" koanf:"weekday"`
	// DayOfMonth applies to monthly and annual rules (1-28 to stay valid in
	// February).
	DayOfMonth int `json:"day_of_month" koanf:"day_of_month"`
	// Month applies to annual rules (1-12).
	Month int `json:"month" koanf:"month"`

	// YearOffset selects which calculation year the fired job targets,
	// relative to the year the rule fires in. An annual December rule with
	// offset 1 pre-computes the coming year.
	YearOffset int `json:"year_offset" koanf:"year_offset"`

	Priority JobPriority `json:"priority" koanf:"priority"`
}

// Validate checks field ranges for the rule kind.
func (r ScheduledRule) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("rule %q: unknown kind %q", r.Name, r.Kind)
	}
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("rule %q: hour %d out of range", r.Name, r.Hour)
	}
	if r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("rule %q: minute %d out of range", r.Name, r.Minute)
	}
	switch r.Kind {
	case RuleWeekly:
		if r.Weekday < 0 || r.Weekday > 6 {
			return fmt.Errorf("rule %q: weekday %d out of range", r.Name, r.Weekday)
		}
	case RuleMonthly:
		if r.DayOfMonth < 1 || r.DayOfMonth > 28 {
			return fmt.Errorf("rule %q: day_of_month %d out of range", r.Name, r.DayOfMonth)
		}
	case RuleAnnual:
		if r.DayOfMonth < 1 || r.DayOfMonth > 28 {
			return fmt.Errorf("rule %q: day_of_month %d out of range", r.Name, r.DayOfMonth)
		}
		if r.Month < 1 || r.Month > 12 {
			return fmt.Errorf("rule %q: month %d out of range", r.Name, r.Month)
		}
	}
	if r.Priority != "" && !r.Priority.Valid() {
		return fmt.Errorf("rule %q: unknown priority %q", r.Name, r.Priority)
	}
	return nil
}
