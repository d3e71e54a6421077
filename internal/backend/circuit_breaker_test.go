// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package backend

import (
	"context"
	"errors"
	"testing"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/gatherly/gatherbot/internal/rsvp"
)

type stubFrontend struct {
	resolveID  string
	resolveErr error
	updateErr  error

	resolveCalls int
	updateCalls  int
}

func (s *stubFrontend) ResolveUser(_ context.Context, _ string) (string, error) {
	s.resolveCalls++
	if s.resolveErr != nil {
		return "", s.resolveErr
	}
	return s.resolveID, nil
}

func (s *stubFrontend) UpdateRSVP(_ context.Context, _, _ string, _ rsvp.Status) error {
	s.updateCalls++
	return s.updateErr
}

func TestCircuitBreakerPassesThroughSuccess(t *testing.T) {
	t.Parallel()

	stub := &stubFrontend{resolveID: "user-1"}
	cbc := newCircuitBreakerClient(stub)

	userID, err := cbc.ResolveUser(context.Background(), "duser-1")
	if err != nil {
		t.Fatalf("ResolveUser() error = %v", err)
	}
	if userID != "user-1" {
		t.Errorf("userID = %q, want user-1", userID)
	}

	if err := cbc.UpdateRSVP(context.Background(), "evt-1", "duser-1", rsvp.StatusAttending); err != nil {
		t.Fatalf("UpdateRSVP() error = %v", err)
	}
}

func TestCircuitBreakerPreservesNotLinked(t *testing.T) {
	t.Parallel()

	stub := &stubFrontend{resolveErr: ErrNotLinked}
	cbc := newCircuitBreakerClient(stub)

	// Well past the trip threshold. Not-linked lookups are healthy backend
	// responses and must never open the circuit.
	for i := 0; i < 20; i++ {
		_, err := cbc.ResolveUser(context.Background(), "duser-1")
		if !errors.Is(err, ErrNotLinked) {
			t.Fatalf("call %d: error = %v, want ErrNotLinked", i, err)
		}
	}
	if stub.resolveCalls != 20 {
		t.Errorf("resolve calls = %d, want 20 (breaker must stay closed)", stub.resolveCalls)
	}
}

func TestCircuitBreakerOpensOnRepeatedFailures(t *testing.T) {
	t.Parallel()

	stub := &stubFrontend{updateErr: errors.New("backend down")}
	cbc := newCircuitBreakerClient(stub)

	sawOpen := false
	for i := 0; i < 30; i++ {
		err := cbc.UpdateRSVP(context.Background(), "evt-1", "duser-1", rsvp.StatusAttending)
		if errors.Is(err, gobreaker.ErrOpenState) {
			sawOpen = true
			break
		}
		if err == nil {
			t.Fatal("UpdateRSVP() expected error")
		}
	}
	if !sawOpen {
		t.Error("breaker never opened after repeated failures")
	}
	if stub.updateCalls >= 30 {
		t.Errorf("update calls = %d, want fewer (open breaker must reject)", stub.updateCalls)
	}
}

func TestCircuitBreakerStaysClosedBelowMinRequests(t *testing.T) {
	t.Parallel()

	stub := &stubFrontend{updateErr: errors.New("backend down")}
	cbc := newCircuitBreakerClient(stub)

	for i := 0; i < int(breakerMinRequests)-1; i++ {
		err := cbc.UpdateRSVP(context.Background(), "evt-1", "duser-1", rsvp.StatusAttending)
		if errors.Is(err, gobreaker.ErrOpenState) {
			t.Fatalf("breaker opened after only %d requests", i+1)
		}
	}
}
