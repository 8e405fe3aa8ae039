// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package models

import (
	"testing"
)

func TestPhenomenonKind(t *testing.T) {
	tests := []struct {
		kind  PhenomenonKind
		valid bool
		lunar bool
	}{
		{PhenomenonSunRising, true, false},
		{PhenomenonSunSetting, true, false},
		{PhenomenonMoonRising, true, true},
		{PhenomenonMoonSetting, true, true},
		{PhenomenonKind("eclipse"), false, false},
		{PhenomenonKind(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
			if got := tt.kind.IsLunar(); got != tt.lunar {
				t.Errorf("IsLunar() = %v, want %v", got, tt.lunar)
			}
		})
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload JobPayload
	}{
		{"year", YearPayload{Year: 2026}},
		{"landmark range", LandmarkYearsPayload{LandmarkID: 12, FromYear: 2025, ToYear: 2027}},
		{"month all landmarks", MonthPayload{Year: 2026, Month: 3}},
		{"month subset", MonthPayload{Year: 2026, Month: 3, LandmarkIDs: []int64{1, 4}}},
		{"day", DayPayload{Year: 2026, Month: 2, Day: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalPayload(tt.payload)
			if err != nil {
				t.Fatalf("MarshalPayload() error = %v", err)
			}
			got, err := UnmarshalPayload(tt.payload.Kind(), data)
			if err != nil {
				t.Fatalf("UnmarshalPayload() error = %v", err)
			}
			if got.Kind() != tt.payload.Kind() {
				t.Errorf("Kind() = %q, want %q", got.Kind(), tt.payload.Kind())
			}
			if got.DedupeKey() != tt.payload.DedupeKey() {
				t.Errorf("DedupeKey() = %q, want %q", got.DedupeKey(), tt.payload.DedupeKey())
			}
		})
	}
}

func TestMonthDedupeKeyDistinguishesSubsets(t *testing.T) {
	all := MonthPayload{Year: 2026, Month: 5}
	one := MonthPayload{Year: 2026, Month: 5, LandmarkIDs: []int64{1}}
	two := MonthPayload{Year: 2026, Month: 5, LandmarkIDs: []int64{2}}

	if one.DedupeKey() == two.DedupeKey() {
		t.Errorf("different landmark subsets share key %q", one.DedupeKey())
	}
	if all.DedupeKey() == one.DedupeKey() {
		t.Errorf("all-landmarks month shares key with a subset: %q", all.DedupeKey())
	}

	// Equal sets are equal work regardless of listing order.
	a := MonthPayload{Year: 2026, Month: 5, LandmarkIDs: []int64{9, 1, 4}}
	b := MonthPayload{Year: 2026, Month: 5, LandmarkIDs: []int64{4, 9, 1}}
	if a.DedupeKey() != b.DedupeKey() {
		t.Errorf("equal sets produce keys %q and %q", a.DedupeKey(), b.DedupeKey())
	}
	if a.LandmarkIDs[0] != 9 {
		t.Error("DedupeKey reordered the payload's landmark list")
	}
}

func TestUnmarshalPayloadUnknownKind(t *testing.T) {
	if _, err := UnmarshalPayload("regenerate_galaxy", []byte(`{}`)); err == nil {
		t.Fatal("expected error for unknown payload kind")
	}
}

func TestScheduledRuleValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    ScheduledRule
		wantErr bool
	}{
		{
			name: "valid annual",
			rule: ScheduledRule{Name: "yearly", Kind: RuleAnnual, Hour: 2, Minute: 0, DayOfMonth: 1, Month: 12, Priority: PriorityLow},
		},
		{
			name: "valid daily",
			rule: ScheduledRule{Name: "nightly", Kind: RuleDaily, Hour: 3, Minute: 30},
		},
		{
			name:    "bad hour",
			rule:    ScheduledRule{Name: "x", Kind: RuleDaily, Hour: 24},
			wantErr: true,
		},
		{
			name:    "bad weekday",
			rule:    ScheduledRule{Name: "x", Kind: RuleWeekly, Weekday: 7},
			wantErr: true,
		},
		{
			name:    "monthly day 29 rejected",
			rule:    ScheduledRule{Name: "x", Kind: RuleMonthly, DayOfMonth: 29},
			wantErr: true,
		},
		{
			name:    "annual missing month",
			rule:    ScheduledRule{Name: "x", Kind: RuleAnnual, DayOfMonth: 1},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			rule:    ScheduledRule{Name: "x", Kind: RuleKind("hourly")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
