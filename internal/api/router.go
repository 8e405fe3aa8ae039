// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the HTTP surface around a handler set.
type Router struct {
	handler *Handler
}

// NewRouter creates a router.
func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler}
}

// Setup wires all routes and middleware.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestMetrics)

	r.Get("/healthz", router.handler.Healthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/landmarks", func(r chi.Router) {
			r.Get("/", router.handler.ListLandmarks)
			r.Post("/", router.handler.CreateLandmark)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", router.handler.GetLandmark)
				r.Put("/", router.handler.UpdateLandmark)
				r.Delete("/", router.handler.DeleteLandmark)
				r.Get("/events", router.handler.LandmarkEvents)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", router.handler.Events)
			r.Get("/upcoming", router.handler.UpcomingEvents)
		})

		r.Route("/regenerate", func(r chi.Router) {
			r.Post("/year", router.handler.RegenerateYear)
			r.Post("/month", router.handler.RegenerateMonth)
			r.Post("/day", router.handler.RegenerateDay)
			r.Post("/landmark", router.handler.RegenerateLandmark)
		})

		r.Route("/queue", func(r chi.Router) {
			r.Get("/stats", router.handler.QueueStats)
			r.Get("/jobs", router.handler.QueueJobs)
		})
	})

	return r
}
