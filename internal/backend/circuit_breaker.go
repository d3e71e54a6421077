// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package backend

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/gatherly/gatherbot/internal/config"
	"github.com/gatherly/gatherbot/internal/logging"
	"github.com/gatherly/gatherbot/internal/metrics"
	"github.com/gatherly/gatherbot/internal/rsvp"
)

// CircuitBreakerClient wraps Client with the circuit breaker pattern,
// preventing cascading failures when the app backend is unavailable or slow.
//
// The breaker uses real time (via sony/gobreaker) for its interval and
// timeout calculations. Tests should mock the underlying Frontend rather
// than the breaker.
type CircuitBreakerClient struct {
	client Frontend
	cb     *gobreaker.CircuitBreaker[string]
	name   string
}

// breakerDefaults mirror the thresholds used across Gatherly services:
// open after a 60% failure rate over at least 10 requests, measured over a
// one-minute window, with a two-minute recovery timeout.
const (
	breakerMinRequests  = 10
	breakerFailureRatio = 0.6
	breakerInterval     = 1 * time.Minute
	breakerTimeout      = 2 * time.Minute
)

// NewCircuitBreakerClient creates an app backend client with circuit breaker
// protection.
func NewCircuitBreakerClient(cfg *config.FrontendConfig) *CircuitBreakerClient {
	return newCircuitBreakerClient(NewClient(cfg))
}

// newCircuitBreakerClient wraps an existing Frontend; split out for tests.
func newCircuitBreakerClient(client Frontend) *CircuitBreakerClient {
	cbName := "frontend-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3, // Concurrent probes allowed in half-open state
		Interval:    breakerInterval,
		Timeout:     breakerTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerMinRequests {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= breakerFailureRatio

			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute runs fn through the breaker and records request metrics.
func (cbc *CircuitBreakerClient) execute(fn func() (string, error)) (string, error) {
	result, err := cbc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		}
		return "", err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	return result, nil
}

// ResolveUser resolves a Discord user with circuit breaker protection.
//
// A not-linked lookup is a healthy backend response and must not count
// toward the failure rate, so ErrNotLinked passes through the breaker as a
// success and is restored afterwards.
func (cbc *CircuitBreakerClient) ResolveUser(ctx context.Context, discordUserID string) (string, error) {
	notLinked := false
	userID, err := cbc.execute(func() (string, error) {
		id, err := cbc.client.ResolveUser(ctx, discordUserID)
		if errors.Is(err, ErrNotLinked) {
			notLinked = true
			return "", nil
		}
		return id, err
	})
	if err != nil {
		return "", err
	}
	if notLinked {
		return "", ErrNotLinked
	}
	return userID, nil
}

// UpdateRSVP applies an attendance update with circuit breaker protection.
func (cbc *CircuitBreakerClient) UpdateRSVP(ctx context.Context, eventID, discordUserID string, status rsvp.Status) error {
	_, err := cbc.execute(func() (string, error) {
		return "", cbc.client.UpdateRSVP(ctx, eventID, discordUserID, status)
	})
	return err
}

// stateToFloat converts circuit breaker state to a numeric value for metrics.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to a string for logging.
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
