// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package scheduler

import (
	"context"
	"time"

	"github.com/alpenglow-dev/alpenglow/internal/logging"
	"github.com/alpenglow-dev/alpenglow/internal/metrics"
	"github.com/alpenglow-dev/alpenglow/internal/models"
)

// maxTimerArm caps any single timer arm. Long waits re-arm in bounded steps,
// which keeps the loop responsive to clock jumps and suspend/resume.
const maxTimerArm = 24 * time.Hour

// Enqueuer submits jobs to the work queue. *queue.WorkQueue satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload models.JobPayload, priority models.JobPriority) (bool, error)
}

// Scheduler fires configured rules at their computed times and enqueues the
// mapped regeneration job. It never executes work inline.
type Scheduler struct {
	rules []models.ScheduledRule
	queue Enqueuer
	loc   *time.Location
}

// New creates a scheduler over validated rules. Rule times of day are
// interpreted in loc.
func New(rules []models.ScheduledRule, queue Enqueuer, loc *time.Location) *Scheduler {
	return &Scheduler{rules: rules, queue: queue, loc: loc}
}

// String names the service in supervisor logs.
func (s *Scheduler) String() string { return "scheduler" }

// Serve implements suture.Service. It computes each rule's next firing,
// sleeps until the soonest one (re-arming in capped steps), fires every due
// rule, and repeats until the context ends.
func (s *Scheduler) Serve(ctx context.Context) error {
	if len(s.rules) == 0 {
		logging.Info().Msg("Scheduler idle, no rules configured")
		<-ctx.Done()
		return nil
	}

	now := time.Now()
	next := make([]time.Time, len(s.rules))
	for i, r := range s.rules {
		next[i] = NextFire(r, now, s.loc)
		metrics.SetNextFire(r.Name, next[i])
		logging.Info().
			Str("rule", r.Name).
			Str("kind", string(r.Kind)).
			Time("next_fire", next[i]).
			Msg("Scheduler rule armed")
	}

	for {
		wait := time.Until(soonest(next))
		if wait > maxTimerArm {
			wait = maxTimerArm
		}
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logging.Info().Msg("Scheduler stopped")
			return nil
		case <-timer.C:
		}

		now := time.Now()
		for i, r := range s.rules {
			if next[i].After(now) {
				continue
			}
			s.fire(ctx, r, next[i])
			next[i] = NextFire(r, now, s.loc)
			metrics.SetNextFire(r.Name, next[i])
		}
	}
}

// fire enqueues the job a due rule maps to.
func (s *Scheduler) fire(ctx context.Context, rule models.ScheduledRule, at time.Time) {
	payload := s.payloadFor(rule, at)
	priority := rule.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}

	inserted, err := s.queue.Enqueue(ctx, payload, priority)
	if err != nil {
		logging.Error().Err(err).Str("rule", rule.Name).Msg("Failed to enqueue scheduled job")
		return
	}
	metrics.RecordRuleFired(rule.Name)
	logging.Info().
		Str("rule", rule.Name).
		Str("dedupe_key", payload.DedupeKey()).
		Bool("inserted", inserted).
		Time("fired_at", at).
		Msg("Scheduled rule fired")
}

// payloadFor maps a rule firing to its regeneration job. Annual rules target
// a whole calculation year shifted by YearOffset; monthly rules pre-compute
// the following month; daily and weekly rules refresh the month they fire in.
func (s *Scheduler) payloadFor(rule models.ScheduledRule, at time.Time) models.JobPayload {
	local := at.In(s.loc)
	switch rule.Kind {
	case models.RuleAnnual:
		return models.YearPayload{Year: local.Year() + rule.YearOffset}
	case models.RuleMonthly:
		// DayOfMonth is capped at 28, so adding a month never normalizes
		// past the target month.
		next := local.AddDate(0, 1, 0)
		return models.MonthPayload{Year: next.Year(), Month: int(next.Month())}
	default:
		return models.MonthPayload{Year: local.Year(), Month: int(local.Month())}
	}
}

// NextFire returns the first time strictly after now at which the rule
// fires, in the given location. Deterministic: equal inputs yield equal
// results.
func NextFire(rule models.ScheduledRule, now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)

	switch rule.Kind {
	case models.RuleDaily:
		fire := time.Date(local.Year(), local.Month(), local.Day(), rule.Hour, rule.Minute, 0, 0, loc)
		if !fire.After(local) {
			fire = fire.AddDate(0, 0, 1)
		}
		return fire

	case models.RuleWeekly:
		fire := time.Date(local.Year(), local.Month(), local.Day(), rule.Hour, rule.Minute, 0, 0, loc)
		days := (rule.Weekday - int(fire.Weekday()) + 7) % 7
		fire = fire.AddDate(0, 0, days)
		if !fire.After(local) {
			fire = fire.AddDate(0, 0, 7)
		}
		return fire

	case models.RuleMonthly:
		fire := time.Date(local.Year(), local.Month(), rule.DayOfMonth, rule.Hour, rule.Minute, 0, 0, loc)
		if !fire.After(local) {
			fire = time.Date(local.Year(), local.Month()+1, rule.DayOfMonth, rule.Hour, rule.Minute, 0, 0, loc)
		}
		return fire

	default: // annual
		fire := time.Date(local.Year(), time.Month(rule.Month), rule.DayOfMonth, rule.Hour, rule.Minute, 0, 0, loc)
		if !fire.After(local) {
			fire = time.Date(local.Year()+1, time.Month(rule.Month), rule.DayOfMonth, rule.Hour, rule.Minute, 0, 0, loc)
		}
		return fire
	}
}

func soonest(times []time.Time) time.Time {
	min := times[0]
	for _, t := range times[1:] {
		if t.Before(min) {
			min = t
		}
	}
	return min
}
