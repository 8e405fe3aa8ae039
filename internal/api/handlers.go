// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/alpenglow-dev/alpenglow/internal/database"
	"github.com/alpenglow-dev/alpenglow/internal/logging"
	"github.com/alpenglow-dev/alpenglow/internal/models"
	"github.com/alpenglow-dev/alpenglow/internal/validation"
)

// Store is the persistence surface the handlers read and write.
// *database.DB satisfies it.
type Store interface {
	Ping(ctx context.Context) error

	CreateLandmark(ctx context.Context, l *models.Landmark) error
	GetLandmark(ctx context.Context, id int64) (*models.Landmark, error)
	ListLandmarks(ctx context.Context) ([]models.Landmark, error)
	UpdateLandmark(ctx context.Context, l *models.Landmark) (bool, error)
	DeleteLandmark(ctx context.Context, id int64) error

	EventsInRange(ctx context.Context, from, to time.Time, f database.EventFilter) ([]models.AlignmentEvent, error)
	EventsForLandmarkYear(ctx context.Context, landmarkID int64, year int) ([]models.AlignmentEvent, error)
	UpcomingEvents(ctx context.Context, after time.Time, limit int) ([]models.AlignmentEvent, error)

	JobStats(ctx context.Context) (database.QueueStats, error)
	RecentJobs(ctx context.Context, limit int) ([]models.Job, error)
}

var _ Store = (*database.DB)(nil)

// Enqueuer submits regeneration jobs. The work queue satisfies it.
type Enqueuer interface {
	Enqueue(ctx context.Context, payload models.JobPayload, priority models.JobPriority) (bool, error)
}

// Handler carries the dependencies of all HTTP handlers.
type Handler struct {
	store     Store
	queue     Enqueuer
	pages     pageLimits
	startedAt time.Time
}

type pageLimits struct {
	defaultSize int
	maxSize     int
}

// NewHandler creates the handler set. Page sizes bound list responses.
func NewHandler(store Store, queue Enqueuer, defaultPageSize, maxPageSize int) *Handler {
	return &Handler{
		store:     store,
		queue:     queue,
		pages:     pageLimits{defaultSize: defaultPageSize, maxSize: maxPageSize},
		startedAt: time.Now(),
	}
}

// Healthz reports liveness and database reachability.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	status := "ok"
	dbStatus := "ok"
	if err := h.store.Ping(r.Context()); err != nil {
		logging.Warn().Err(err).Msg("Health check database ping failed")
		status = "degraded"
		dbStatus = "unreachable"
	}

	rw.Success(map[string]interface{}{
		"status":         status,
		"database":       dbStatus,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

// CreateLandmark inserts a landmark and enqueues its initial generation.
func (h *Handler) CreateLandmark(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var req landmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	var l models.Landmark
	req.apply(&l)
	if err := h.store.CreateLandmark(r.Context(), &l); err != nil {
		rw.DatabaseError(err)
		return
	}

	// New landmarks get their event cache filled right away.
	year := time.Now().Year()
	accepted, err := h.queue.Enqueue(r.Context(), models.LandmarkYearsPayload{
		LandmarkID: l.ID,
		FromYear:   year,
		ToYear:     year + 1,
	}, models.PriorityHigh)
	if err != nil {
		logging.Error().Err(err).Int64("landmark_id", l.ID).Msg("Failed to enqueue initial generation")
	}

	rw.Created(map[string]interface{}{
		"landmark":            l,
		"generation_enqueued": accepted,
	})
}

// GetLandmark returns one landmark by ID.
func (h *Handler) GetLandmark(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	id, ok := pathID(rw, r)
	if !ok {
		return
	}
	l, err := h.store.GetLandmark(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("landmark not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(l)
}

// ListLandmarks returns all landmarks.
func (h *Handler) ListLandmarks(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	landmarks, err := h.store.ListLandmarks(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.SuccessWithPagination(landmarks, &PaginationMeta{Count: len(landmarks)})
}

// UpdateLandmark persists changes; a coordinate change additionally enqueues
// regeneration of the landmark's cached events.
func (h *Handler) UpdateLandmark(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	id, ok := pathID(rw, r)
	if !ok {
		return
	}
	var req landmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	l := models.Landmark{ID: id}
	req.apply(&l)
	geometryChanged, err := h.store.UpdateLandmark(r.Context(), &l)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("landmark not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	regenerated := false
	if geometryChanged {
		year := time.Now().Year()
		regenerated, err = h.queue.Enqueue(r.Context(), models.LandmarkYearsPayload{
			LandmarkID: id,
			FromYear:   year,
			ToYear:     year + 1,
		}, models.PriorityHigh)
		if err != nil {
			logging.Error().Err(err).Int64("landmark_id", id).Msg("Failed to enqueue regeneration after geometry change")
		}
	}

	rw.Success(map[string]interface{}{
		"landmark":              l,
		"geometry_changed":      geometryChanged,
		"regeneration_enqueued": regenerated,
	})
}

// DeleteLandmark removes a landmark and its cached events.
func (h *Handler) DeleteLandmark(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	id, ok := pathID(rw, r)
	if !ok {
		return
	}
	err := h.store.DeleteLandmark(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		rw.NotFound("landmark not found")
		return
	}
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.NoContent()
}

// Events returns cached events in a date range with optional filters:
// landmark_id, kind, min_tier, limit, offset.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)
	q := r.URL.Query()

	from, err := parseDate(q.Get("from"))
	if err != nil {
		rw.BadRequest("from must be a date in YYYY-MM-DD form")
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		rw.BadRequest("to must be a date in YYYY-MM-DD form")
		return
	}
	if !to.After(from) {
		rw.BadRequest("to must be after from")
		return
	}

	filter := database.EventFilter{}
	if s := q.Get("landmark_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			rw.BadRequest("landmark_id must be a positive integer")
			return
		}
		filter.LandmarkID = id
	}
	if s := q.Get("kind"); s != "" {
		kind := models.PhenomenonKind(s)
		if !kind.Valid() {
			rw.BadRequest("kind must be one of sun_rising, sun_setting, moon_rising, moon_setting")
			return
		}
		filter.Kind = kind
	}
	if s := q.Get("min_tier"); s != "" {
		switch tier := models.AccuracyTier(s); tier {
		case models.TierPerfect, models.TierExcellent, models.TierGood, models.TierFair:
			filter.MinTier = tier
		default:
			rw.BadRequest("min_tier must be one of perfect, excellent, good, fair")
			return
		}
	}

	limit, offset, ok := h.pagination(rw, q.Get("limit"), q.Get("offset"))
	if !ok {
		return
	}
	// Fetch one extra row to detect whether more pages exist.
	filter.Limit = limit + 1
	filter.Offset = offset

	events, err := h.store.EventsInRange(r.Context(), from, to, filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	hasMore := len(events) > limit
	if hasMore {
		events = events[:limit]
	}
	rw.SuccessWithPagination(events, &PaginationMeta{
		Count:   len(events),
		Offset:  offset,
		Limit:   limit,
		HasMore: hasMore,
	})
}

// LandmarkEvents returns one landmark's events for a calculation year.
func (h *Handler) LandmarkEvents(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	id, ok := pathID(rw, r)
	if !ok {
		return
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1900 || year > 2200 {
		rw.BadRequest("year must be an integer between 1900 and 2200")
		return
	}

	if _, err := h.store.GetLandmark(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("landmark not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	events, err := h.store.EventsForLandmarkYear(r.Context(), id, year)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.SuccessWithPagination(events, &PaginationMeta{Count: len(events)})
}

// UpcomingEvents returns the next events from now on.
func (h *Handler) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	limit, _, ok := h.pagination(rw, r.URL.Query().Get("limit"), "")
	if !ok {
		return
	}
	events, err := h.store.UpcomingEvents(r.Context(), time.Now().UTC(), limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.SuccessWithPagination(events, &PaginationMeta{Count: len(events), Limit: limit})
}

// RegenerateYear enqueues a whole-year regeneration.
func (h *Handler) RegenerateYear(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var req regenerateYearRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	h.enqueue(rw, r, models.YearPayload{Year: req.Year}, priorityOrDefault(req.Priority))
}

// RegenerateMonth enqueues a month regeneration, optionally for a landmark
// subset.
func (h *Handler) RegenerateMonth(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var req regenerateMonthRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	h.enqueue(rw, r, models.MonthPayload{
		Year:        req.Year,
		Month:       req.Month,
		LandmarkIDs: req.LandmarkIDs,
	}, priorityOrDefault(req.Priority))
}

// RegenerateDay enqueues regeneration of one civil day across all landmarks.
func (h *Handler) RegenerateDay(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var req regenerateDayRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	// The validator only bounds day at 31; reject days the month doesn't have.
	d := time.Date(req.Year, time.Month(req.Month), req.Day, 0, 0, 0, 0, time.UTC)
	if d.Day() != req.Day || d.Month() != time.Month(req.Month) {
		rw.BadRequest("day does not exist in the given month")
		return
	}

	h.enqueue(rw, r, models.DayPayload{
		Year:  req.Year,
		Month: req.Month,
		Day:   req.Day,
	}, priorityOrDefault(req.Priority))
}

// RegenerateLandmark enqueues regeneration of one landmark over a year range.
func (h *Handler) RegenerateLandmark(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	var req regenerateLandmarkRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest(err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	if req.ToYear < req.FromYear {
		rw.BadRequest("to_year must not be before from_year")
		return
	}
	if _, err := h.store.GetLandmark(r.Context(), req.LandmarkID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("landmark not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	h.enqueue(rw, r, models.LandmarkYearsPayload{
		LandmarkID: req.LandmarkID,
		FromYear:   req.FromYear,
		ToYear:     req.ToYear,
	}, priorityOrDefault(req.Priority))
}

// enqueue submits the payload and answers 202 when accepted, 409 when an
// identical job is already pending or running.
func (h *Handler) enqueue(rw *responseWriter, r *http.Request, payload models.JobPayload, priority models.JobPriority) {
	accepted, err := h.queue.Enqueue(r.Context(), payload, priority)
	if err != nil {
		logging.Error().Err(err).Str("kind", payload.Kind()).Msg("Failed to enqueue job")
		rw.InternalError("failed to enqueue job")
		return
	}
	if !accepted {
		rw.Conflict("an identical job is already queued")
		return
	}
	rw.Accepted(map[string]interface{}{
		"kind":       payload.Kind(),
		"dedupe_key": payload.DedupeKey(),
		"priority":   priority,
	})
}

// QueueStats returns per-status job counts.
func (h *Handler) QueueStats(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	stats, err := h.store.JobStats(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.Success(stats)
}

// QueueJobs returns the most recent jobs, newest first, including failed
// jobs with their last error for operator inspection.
func (h *Handler) QueueJobs(w http.ResponseWriter, r *http.Request) {
	rw := respond(w, r)

	limit, _, ok := h.pagination(rw, r.URL.Query().Get("limit"), "")
	if !ok {
		return
	}
	jobs, err := h.store.RecentJobs(r.Context(), limit)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	rw.SuccessWithPagination(jobs, &PaginationMeta{Count: len(jobs), Limit: limit})
}

// pathID extracts the {id} URL parameter.
func pathID(rw *responseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		rw.BadRequest("id must be a positive integer")
		return 0, false
	}
	return id, true
}

// pagination parses limit/offset query values against the configured bounds.
func (h *Handler) pagination(rw *responseWriter, limitStr, offsetStr string) (limit, offset int, ok bool) {
	limit = h.pages.defaultSize
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			rw.BadRequest("limit must be a positive integer")
			return 0, 0, false
		}
		if n > h.pages.maxSize {
			n = h.pages.maxSize
		}
		limit = n
	}
	if offsetStr != "" {
		n, err := strconv.Atoi(offsetStr)
		if err != nil || n < 0 {
			rw.BadRequest("offset must be a non-negative integer")
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

// parseDate parses a civil date as UTC midnight.
func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
