// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package generator

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/alpenglow-dev/alpenglow/internal/config"
	"github.com/alpenglow-dev/alpenglow/internal/database"
	"github.com/alpenglow-dev/alpenglow/internal/ephemeris"
	"github.com/alpenglow-dev/alpenglow/internal/logging"
	"github.com/alpenglow-dev/alpenglow/internal/metrics"
	"github.com/alpenglow-dev/alpenglow/internal/models"
	"github.com/alpenglow-dev/alpenglow/internal/search"
)

// EventStore is the persistence surface the generator writes through.
// *database.DB satisfies it.
type EventStore interface {
	ListLandmarks(ctx context.Context) ([]models.Landmark, error)
	GetLandmark(ctx context.Context, id int64) (*models.Landmark, error)
	ReplaceEventsForYear(ctx context.Context, year int, events []models.AlignmentEvent) error
	ReplaceEventsForMonth(ctx context.Context, year int, month time.Month, events []models.AlignmentEvent) error
	ReplaceEventsForDay(ctx context.Context, year int, month time.Month, day int, events []models.AlignmentEvent) error
	ReplaceEventsForLandmarkMonth(ctx context.Context, landmarkID int64, year int, month time.Month, events []models.AlignmentEvent) error
	ReplaceEventsForLandmarkYears(ctx context.Context, landmarkID int64, fromYear, toYear int, events []models.AlignmentEvent) error
}

var _ EventStore = (*database.DB)(nil)

// Generator executes regeneration jobs: it fans the alignment search out
// over (landmark, day) pairs and replaces the scoped slice of the event
// cache in one transaction. Scoped replacement makes every job idempotent.
type Generator struct {
	store       EventStore
	engine      *search.Engine
	cal         config.CalendarConfig
	loc         *time.Location
	concurrency int
}

// New creates a generator. Searches for one job run on up to GOMAXPROCS
// landmark-days at a time; the searches are CPU-bound and independent.
func New(store EventStore, engine *search.Engine, cal config.CalendarConfig, loc *time.Location) *Generator {
	return &Generator{
		store:       store,
		engine:      engine,
		cal:         cal,
		loc:         loc,
		concurrency: runtime.GOMAXPROCS(0),
	}
}

// Execute implements queue.Executor, dispatching on the payload variant.
func (g *Generator) Execute(ctx context.Context, job *models.Job) error {
	switch p := job.Payload.(type) {
	case models.YearPayload:
		return g.regenerateYear(ctx, p.Year)
	case models.MonthPayload:
		return g.regenerateMonth(ctx, p)
	case models.DayPayload:
		return g.regenerateDay(ctx, p)
	case models.LandmarkYearsPayload:
		return g.regenerateLandmarkYears(ctx, p)
	default:
		return fmt.Errorf("unsupported job payload %T", job.Payload)
	}
}

func (g *Generator) regenerateYear(ctx context.Context, year int) error {
	landmarks, err := g.store.ListLandmarks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list landmarks: %w", err)
	}

	from := time.Date(year, 1, 1, 0, 0, 0, 0, g.loc)
	to := from.AddDate(1, 0, 0)
	events, err := g.generate(ctx, landmarks, from, to)
	if err != nil {
		return err
	}

	if err := g.store.ReplaceEventsForYear(ctx, year, events); err != nil {
		return fmt.Errorf("failed to store year %d events: %w", year, err)
	}
	logging.Info().
		Int("year", year).
		Int("landmarks", len(landmarks)).
		Int("events", len(events)).
		Msg("Year regeneration finished")
	return nil
}

func (g *Generator) regenerateMonth(ctx context.Context, p models.MonthPayload) error {
	month := time.Month(p.Month)
	from := time.Date(p.Year, month, 1, 0, 0, 0, 0, g.loc)
	to := from.AddDate(0, 1, 0)

	// All landmarks: one month-scoped replace.
	if len(p.LandmarkIDs) == 0 {
		landmarks, err := g.store.ListLandmarks(ctx)
		if err != nil {
			return fmt.Errorf("failed to list landmarks: %w", err)
		}
		events, err := g.generate(ctx, landmarks, from, to)
		if err != nil {
			return err
		}
		if err := g.store.ReplaceEventsForMonth(ctx, p.Year, month, events); err != nil {
			return fmt.Errorf("failed to store %d-%02d events: %w", p.Year, p.Month, err)
		}
		logging.Info().
			Int("year", p.Year).
			Int("month", p.Month).
			Int("events", len(events)).
			Msg("Month regeneration finished")
		return nil
	}

	// Subset: replace each landmark's slice of the month independently so
	// unlisted landmarks keep their rows.
	for _, id := range p.LandmarkIDs {
		l, err := g.store.GetLandmark(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load landmark %d: %w", id, err)
		}
		events, err := g.generate(ctx, []models.Landmark{*l}, from, to)
		if err != nil {
			return err
		}
		if err := g.store.ReplaceEventsForLandmarkMonth(ctx, id, p.Year, month, events); err != nil {
			return fmt.Errorf("failed to store landmark %d month events: %w", id, err)
		}
	}
	logging.Info().
		Int("year", p.Year).
		Int("month", p.Month).
		Int("landmarks", len(p.LandmarkIDs)).
		Msg("Month regeneration finished for landmark subset")
	return nil
}

func (g *Generator) regenerateDay(ctx context.Context, p models.DayPayload) error {
	from := time.Date(p.Year, time.Month(p.Month), p.Day, 0, 0, 0, 0, g.loc)
	// time.Date normalizes overflow (Feb 30 becomes Mar 2); an overflowed
	// payload would silently regenerate the wrong day.
	if from.Year() != p.Year || from.Month() != time.Month(p.Month) || from.Day() != p.Day {
		return fmt.Errorf("invalid calendar date %d-%02d-%02d", p.Year, p.Month, p.Day)
	}
	to := from.AddDate(0, 0, 1)

	landmarks, err := g.store.ListLandmarks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list landmarks: %w", err)
	}
	events, err := g.generate(ctx, landmarks, from, to)
	if err != nil {
		return err
	}

	if err := g.store.ReplaceEventsForDay(ctx, p.Year, time.Month(p.Month), p.Day, events); err != nil {
		return fmt.Errorf("failed to store %d-%02d-%02d events: %w", p.Year, p.Month, p.Day, err)
	}
	logging.Info().
		Int("year", p.Year).
		Int("month", p.Month).
		Int("day", p.Day).
		Int("events", len(events)).
		Msg("Day regeneration finished")
	return nil
}

func (g *Generator) regenerateLandmarkYears(ctx context.Context, p models.LandmarkYearsPayload) error {
	if p.ToYear < p.FromYear {
		return fmt.Errorf("invalid year range %d-%d", p.FromYear, p.ToYear)
	}
	l, err := g.store.GetLandmark(ctx, p.LandmarkID)
	if err != nil {
		return fmt.Errorf("failed to load landmark %d: %w", p.LandmarkID, err)
	}

	from := time.Date(p.FromYear, 1, 1, 0, 0, 0, 0, g.loc)
	to := time.Date(p.ToYear+1, 1, 1, 0, 0, 0, 0, g.loc)
	events, err := g.generate(ctx, []models.Landmark{*l}, from, to)
	if err != nil {
		return err
	}

	if err := g.store.ReplaceEventsForLandmarkYears(ctx, p.LandmarkID, p.FromYear, p.ToYear, events); err != nil {
		return fmt.Errorf("failed to store landmark %d events: %w", p.LandmarkID, err)
	}
	logging.Info().
		Int64("landmark_id", p.LandmarkID).
		Int("from_year", p.FromYear).
		Int("to_year", p.ToYear).
		Int("events", len(events)).
		Msg("Landmark regeneration finished")
	return nil
}

// dayTask is one unit of fan-out work.
type dayTask struct {
	landmark *models.Landmark
	dayStart time.Time
}

// generate searches every (landmark, day) pair in [from, to) and returns all
// events ordered by time. The fan-out is bounded; cancellation drains the
// pool and returns the context error.
func (g *Generator) generate(ctx context.Context, landmarks []models.Landmark, from, to time.Time) ([]models.AlignmentEvent, error) {
	bodies := []ephemeris.Body{ephemeris.BodySun}
	if g.cal.MoonEnabled {
		bodies = append(bodies, ephemeris.BodyMoon)
	}

	tasks := make(chan dayTask)
	var (
		mu     sync.Mutex
		events []models.AlignmentEvent
		wg     sync.WaitGroup
	)

	workers := g.concurrency
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range tasks {
				start := time.Now()
				var found []models.AlignmentEvent
				for _, body := range bodies {
					found = append(found, g.engine.SearchDay(task.landmark, task.dayStart, body)...)
				}
				metrics.RecordSearch(time.Since(start), countByKind(found))
				if len(found) == 0 {
					continue
				}
				mu.Lock()
				events = append(events, found...)
				mu.Unlock()
			}
		}()
	}

	var cancelled bool
feed:
	for i := range landmarks {
		for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
			select {
			case <-ctx.Done():
				cancelled = true
				break feed
			case tasks <- dayTask{landmark: &landmarks[i], dayStart: day}:
			}
		}
	}
	close(tasks)
	wg.Wait()

	if cancelled {
		return nil, ctx.Err()
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].EventTime.Before(events[j].EventTime)
	})
	return events, nil
}

func countByKind(events []models.AlignmentEvent) map[string]int {
	if len(events) == 0 {
		return nil
	}
	byKind := make(map[string]int, len(events))
	for _, ev := range events {
		byKind[string(ev.Kind)]++
	}
	return byKind
}
