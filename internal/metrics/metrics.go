// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

// Package metrics provides Prometheus instrumentation for the bridge:
// interaction outcomes, app backend calls, announcement publishes, API
// requests, and circuit breaker state. All metrics are registered via
// promauto and exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InteractionsTotal counts handled component interactions by outcome:
	// "updated", "not_linked", "resolve_failed", "update_failed", "ignored".
	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherbot_interactions_total",
			Help: "Total number of RSVP button interactions by outcome",
		},
		[]string{"outcome"},
	)

	// BackendRequestDuration observes outbound app backend call latency.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatherbot_backend_request_duration_seconds",
			Help:    "Duration of outbound app backend requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "resolve_user", "update_rsvp"
	)

	// BackendRequestErrors counts failed outbound app backend calls.
	// A 404 from resolve_user is an expected outcome, not an error here.
	BackendRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherbot_backend_request_errors_total",
			Help: "Total number of failed app backend requests",
		},
		[]string{"operation"},
	)

	// PublishesTotal counts announcement message publishes by kind and result.
	PublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherbot_publishes_total",
			Help: "Total number of announcement message publishes",
		},
		[]string{"kind", "result"}, // kind: "create", "edit"; result: "ok", "error"
	)

	// APIRequestsTotal counts inbound API requests.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherbot_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// APIRequestDuration observes inbound API request latency.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gatherbot_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// CircuitBreakerState tracks breaker state per outbound target
	// (0 = closed, 1 = half-open, 2 = open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gatherbot_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// CircuitBreakerRequests counts breaker-mediated requests by result:
	// "success", "failure", "rejected".
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherbot_circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker",
		},
		[]string{"name", "result"},
	)

	// CircuitBreakerTransitions counts breaker state transitions.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatherbot_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)
