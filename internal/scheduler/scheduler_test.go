// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alpenglow-dev/alpenglow/internal/models"
)

type recordingEnqueuer struct {
	mu       sync.Mutex
	payloads []models.JobPayload
	prios    []models.JobPriority
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, payload models.JobPayload, priority models.JobPriority) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.payloads = append(e.payloads, payload)
	e.prios = append(e.prios, priority)
	return true, nil
}

func (e *recordingEnqueuer) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.payloads)
}

// 2026-08-24 is a Monday.
var monday = time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

func TestNextFireDaily(t *testing.T) {
	rule := models.ScheduledRule{Name: "d", Kind: models.RuleDaily, Hour: 2}

	got := NextFire(rule, monday, time.UTC)
	want := time.Date(2026, 8, 25, 2, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("past time of day: got %v, want %v", got, want)
	}

	rule.Hour = 12
	got = NextFire(rule, monday, time.UTC)
	want = time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("future time of day: got %v, want %v", got, want)
	}

	// Exactly at the firing instant: strictly after, so tomorrow.
	at := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	got = NextFire(rule, at, time.UTC)
	want = time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("boundary instant: got %v, want %v", got, want)
	}
}

func TestNextFireWeekly(t *testing.T) {
	// Sunday = 0; from Monday morning the next Sunday is 2026-08-30.
	rule := models.ScheduledRule{Name: "w", Kind: models.RuleWeekly, Weekday: 0, Hour: 3}
	got := NextFire(rule, monday, time.UTC)
	want := time.Date(2026, 8, 30, 3, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Same weekday, time already past: one week out.
	rule = models.ScheduledRule{Name: "w", Kind: models.RuleWeekly, Weekday: 1, Hour: 3}
	got = NextFire(rule, monday, time.UTC)
	want = time.Date(2026, 8, 31, 3, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("same-day past: got %v, want %v", got, want)
	}

	// Same weekday, time still ahead today.
	rule.Hour = 22
	got = NextFire(rule, monday, time.UTC)
	want = time.Date(2026, 8, 24, 22, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("same-day future: got %v, want %v", got, want)
	}
}

func TestNextFireMonthly(t *testing.T) {
	rule := models.ScheduledRule{Name: "m", Kind: models.RuleMonthly, DayOfMonth: 1, Hour: 2}
	got := NextFire(rule, monday, time.UTC)
	want := time.Date(2026, 9, 1, 2, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	// Year rollover.
	december := time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC)
	got = NextFire(rule, december, time.UTC)
	want = time.Date(2027, 1, 1, 2, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("rollover: got %v, want %v", got, want)
	}
}

func TestNextFireAnnual(t *testing.T) {
	rule := models.ScheduledRule{Name: "a", Kind: models.RuleAnnual, Month: 12, DayOfMonth: 1, Hour: 2}

	got := NextFire(rule, monday, time.UTC)
	want := time.Date(2026, 12, 1, 2, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ahead this year: got %v, want %v", got, want)
	}

	after := time.Date(2026, 12, 1, 3, 0, 0, 0, time.UTC)
	got = NextFire(rule, after, time.UTC)
	want = time.Date(2027, 12, 1, 2, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("past this year: got %v, want %v", got, want)
	}
}

func TestNextFireHonorsTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	rule := models.ScheduledRule{Name: "d", Kind: models.RuleDaily, Hour: 2}

	// 20:00 UTC is already 05:00 next day in Tokyo, so the rule fires the
	// day after that, Tokyo time.
	now := time.Date(2026, 8, 24, 20, 0, 0, 0, time.UTC)
	got := NextFire(rule, now, tokyo)
	want := time.Date(2026, 8, 26, 2, 0, 0, 0, tokyo)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want.UTC())
	}
}

func TestNextFireDeterministic(t *testing.T) {
	rule := models.ScheduledRule{Name: "w", Kind: models.RuleWeekly, Weekday: 3, Hour: 6, Minute: 30}
	a := NextFire(rule, monday, time.UTC)
	b := NextFire(rule, monday, time.UTC)
	if !a.Equal(b) {
		t.Errorf("same inputs gave %v and %v", a, b)
	}
}

func TestPayloadMapping(t *testing.T) {
	s := New(nil, nil, time.UTC)
	fireAt := time.Date(2026, 12, 1, 2, 0, 0, 0, time.UTC)

	annual := models.ScheduledRule{Kind: models.RuleAnnual, YearOffset: 1}
	if p, ok := s.payloadFor(annual, fireAt).(models.YearPayload); !ok || p.Year != 2027 {
		t.Errorf("annual payload = %+v, want year 2027", p)
	}

	monthly := models.ScheduledRule{Kind: models.RuleMonthly}
	if p, ok := s.payloadFor(monthly, fireAt).(models.MonthPayload); !ok || p.Year != 2027 || p.Month != 1 {
		t.Errorf("monthly payload = %+v, want 2027-01", p)
	}

	daily := models.ScheduledRule{Kind: models.RuleDaily}
	if p, ok := s.payloadFor(daily, fireAt).(models.MonthPayload); !ok || p.Year != 2026 || p.Month != 12 {
		t.Errorf("daily payload = %+v, want 2026-12", p)
	}
}

func TestFireEnqueuesWithRulePriority(t *testing.T) {
	q := &recordingEnqueuer{}
	s := New(nil, q, time.UTC)

	rule := models.ScheduledRule{
		Name:       "annual-regeneration",
		Kind:       models.RuleAnnual,
		Month:      12,
		DayOfMonth: 1,
		YearOffset: 1,
		Priority:   models.PriorityLow,
	}
	s.fire(context.Background(), rule, time.Date(2026, 12, 1, 2, 0, 0, 0, time.UTC))

	if q.count() != 1 {
		t.Fatalf("enqueued %d jobs, want 1", q.count())
	}
	if q.prios[0] != models.PriorityLow {
		t.Errorf("priority = %s, want low", q.prios[0])
	}
	if p, ok := q.payloads[0].(models.YearPayload); !ok || p.Year != 2027 {
		t.Errorf("payload = %+v, want YearPayload{2027}", q.payloads[0])
	}

	// Unset priority defaults to normal.
	rule.Priority = ""
	s.fire(context.Background(), rule, time.Date(2026, 12, 1, 2, 0, 0, 0, time.UTC))
	if q.prios[1] != models.PriorityNormal {
		t.Errorf("default priority = %s, want normal", q.prios[1])
	}
}

func TestServeStopsCleanly(t *testing.T) {
	// No rules: Serve blocks until cancelled.
	s := New(nil, &recordingEnqueuer{}, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop")
	}

	// A far-future rule arms a capped timer and still stops promptly.
	rules := []models.ScheduledRule{{
		Name: "annual-regeneration", Kind: models.RuleAnnual,
		Month: 12, DayOfMonth: 1, Hour: 2,
	}}
	s = New(rules, &recordingEnqueuer{}, time.UTC)
	ctx, cancel = context.WithCancel(context.Background())
	go func() { done <- s.Serve(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve with armed timer did not stop")
	}
}
