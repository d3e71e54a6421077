// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

// Package api exposes the bridge's HTTP surface using the Chi router:
// publish and reaction endpoints for the app backend, plus health and
// Prometheus metrics.
package api

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/gatherly/gatherbot/internal/config"
	"github.com/gatherly/gatherbot/internal/logging"
	"github.com/gatherly/gatherbot/internal/metrics"
)

// secretHeader carries the shared secret on inbound backend calls.
const secretHeader = "x-bot-secret"

// Middleware provides the middleware stack for the bridge's routes.
type Middleware struct {
	secret []byte
	cors   func(http.Handler) http.Handler

	rateLimitRequests int
	rateLimitWindow   time.Duration
	rateLimitDisabled bool
}

// NewMiddleware builds the middleware factory from the security config.
// CORS origins default to empty, so cross-origin access requires explicit
// configuration.
func NewMiddleware(cfg *config.SecurityConfig) *Middleware {
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", secretHeader},
		MaxAge:         86400,
	})

	return &Middleware{
		secret:            []byte(cfg.BotSecret),
		cors:              corsHandler,
		rateLimitRequests: cfg.RateLimitReqs,
		rateLimitWindow:   cfg.RateLimitWindow,
		rateLimitDisabled: cfg.RateLimitDisabled,
	}
}

// CORS returns the go-chi/cors handler. Must be global so OPTIONS
// preflight requests are answered.
func (m *Middleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns IP-keyed rate limiting for the authenticated endpoints.
func (m *Middleware) RateLimit() func(http.Handler) http.Handler {
	return m.rateLimit(m.rateLimitRequests, m.rateLimitWindow)
}

// RateLimitHealth is permissive so monitoring can poll freely while the
// endpoint still cannot be used for abuse.
func (m *Middleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.rateLimit(1000, time.Minute)
}

func (m *Middleware) rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.rateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return httprate.Limit(requests, window, httprate.WithKeyFuncs(httprate.KeyByIP))
}

// RequireBotSecret rejects requests whose shared secret header does not
// match, before the body is read. The comparison is constant time.
func (m *Middleware) RequireBotSecret() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := []byte(r.Header.Get(secretHeader))
			if len(m.secret) == 0 || subtle.ConstantTimeCompare(provided, m.secret) != 1 {
				logging.Ctx(r.Context()).Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Msg("Rejected request with invalid bot secret")
				respondError(w, r, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDWithLogging assigns each request an id, exposes it on the
// X-Request-ID response header, and threads it through the logging context.
func RequestIDWithLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = logging.GenerateRequestID()
			}
			w.Header().Set("X-Request-ID", requestID)

			ctx := logging.ContextWithRequestID(r.Context(), requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SecurityHeaders adds baseline hardening headers to API responses.
func SecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PrometheusMetrics records request counts and latency per route pattern.
func PrometheusMetrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			endpoint := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					endpoint = pattern
				}
			}
			metrics.APIRequestsTotal.
				WithLabelValues(r.Method, endpoint, strconv.Itoa(ww.statusCode)).Inc()
			metrics.APIRequestDuration.
				WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
		})
	}
}

// statusResponseWriter captures the status code for metrics.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
