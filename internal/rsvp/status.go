// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

// Package rsvp defines the RSVP domain model shared by the interaction
// handler, the announcement publisher, and the app backend client: the
// attendance status enum, the button control descriptors, and the custom ID
// codec that round-trips (eventID, status) through Discord component IDs.
//
// The package is pure: no I/O, no Discord types, no side effects.
package rsvp

import "fmt"

// Status is an attendance status for an event. There is no ordering between
// statuses; any status may transition to any other.
type Status string

// The three attendance statuses understood by the app backend.
const (
	StatusAttending    Status = "ATTENDING"
	StatusMaybe        Status = "MAYBE"
	StatusNotAttending Status = "NOT_ATTENDING"
)

// Statuses lists all valid statuses in presentation order.
var Statuses = []Status{StatusAttending, StatusMaybe, StatusNotAttending}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAttending, StatusMaybe, StatusNotAttending:
		return true
	}
	return false
}

// String returns the wire representation of the status.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a wire string into a Status.
func ParseStatus(value string) (Status, error) {
	s := Status(value)
	if !s.Valid() {
		return "", fmt.Errorf("unknown RSVP status %q", value)
	}
	return s, nil
}
