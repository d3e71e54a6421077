// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

func NewRouter(handler *Handler, middleware *Middleware) *Router {
	return &Router{handler: handler, middleware: middleware}
}

// Setup builds the route tree. Health and metrics stay unauthenticated;
// everything that touches Discord requires the shared secret, checked
// before the body is parsed.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())

	r.Group(func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Get("/health", router.handler.Health)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(PrometheusMetrics())
		r.Use(router.middleware.RequireBotSecret())

		r.Post("/add-reactions", router.handler.AddReactions)
		r.Post("/update-event", router.handler.UpdateEvent)
	})

	return r
}
