// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package rsvp

import (
	"errors"
	"fmt"
	"strings"
)

// Emphasis is the visual weight of a control. The discord package maps these
// to platform button styles.
type Emphasis int

// Emphasis tiers in the fixed Attend / Maybe / Not Attending row.
const (
	EmphasisAffirmative Emphasis = iota
	EmphasisNeutral
	EmphasisNegative
)

// Control describes one RSVP button: its label, visual emphasis, the status
// it requests, and the custom ID that encodes (eventID, status).
type Control struct {
	Label    string
	Emphasis Emphasis
	Status   Status
	CustomID string
}

// customIDPrefix namespaces RSVP custom IDs. Anything not carrying this
// prefix is not an RSVP control and is outside this package's scope.
const customIDPrefix = "rsvp"

// Legacy custom ID prefixes from earlier bot revisions. Accepted on parse,
// never emitted.
const (
	legacyAttendPrefix  = "rsvpattend_"
	legacyMaybePrefix   = "rsvpmaybe_"
	legacyDeclinePrefix = "rsvpdecline_"
)

// ErrNotRSVPControl reports a custom ID that does not belong to this bridge.
// Callers should ignore such interactions silently.
var ErrNotRSVPControl = errors.New("custom ID is not an RSVP control")

// EncodeCustomID builds the canonical custom ID for an (eventID, status)
// pair: "rsvp:<eventID>:<STATUS>".
func EncodeCustomID(eventID string, status Status) string {
	return fmt.Sprintf("%s:%s:%s", customIDPrefix, eventID, status)
}

// ParseCustomID decodes a component custom ID back into (eventID, status).
//
// The canonical colon-delimited form is preferred. The underscore-delimited
// legacy forms (rsvpattend_<id>, rsvpmaybe_<id>, rsvpdecline_<id>) are mapped
// explicitly for messages published by earlier bot revisions that may still
// be live. Returns ErrNotRSVPControl for anything else.
func ParseCustomID(customID string) (string, Status, error) {
	if eventID, status, ok := parseLegacyCustomID(customID); ok {
		return eventID, status, nil
	}

	if !strings.HasPrefix(customID, customIDPrefix+":") {
		return "", "", ErrNotRSVPControl
	}

	rest := customID[len(customIDPrefix)+1:]

	// The status is the final segment; the event ID is opaque and may itself
	// contain colons.
	sep := strings.LastIndex(rest, ":")
	if sep <= 0 {
		return "", "", fmt.Errorf("%w: malformed custom ID %q", ErrNotRSVPControl, customID)
	}

	eventID := rest[:sep]
	status, err := ParseStatus(rest[sep+1:])
	if err != nil {
		return "", "", fmt.Errorf("%w: malformed custom ID %q: %w", ErrNotRSVPControl, customID, err)
	}

	return eventID, status, nil
}

// parseLegacyCustomID handles the deprecated underscore forms.
func parseLegacyCustomID(customID string) (string, Status, bool) {
	switch {
	case strings.HasPrefix(customID, legacyAttendPrefix):
		return customID[len(legacyAttendPrefix):], StatusAttending, true
	case strings.HasPrefix(customID, legacyMaybePrefix):
		return customID[len(legacyMaybePrefix):], StatusMaybe, true
	case strings.HasPrefix(customID, legacyDeclinePrefix):
		return customID[len(legacyDeclinePrefix):], StatusNotAttending, true
	}
	return "", "", false
}

// Controls renders the fixed RSVP control row for an event: exactly three
// controls in Attend, Maybe, Not Attending order. Custom IDs are derived
// from the event ID on every call; they are never persisted.
//
// Pure and deterministic. The only failure mode is an empty event ID.
func Controls(eventID string) ([]Control, error) {
	if eventID == "" {
		return nil, errors.New("event ID must not be empty")
	}

	return []Control{
		{
			Label:    "Attend",
			Emphasis: EmphasisAffirmative,
			Status:   StatusAttending,
			CustomID: EncodeCustomID(eventID, StatusAttending),
		},
		{
			Label:    "Maybe",
			Emphasis: EmphasisNeutral,
			Status:   StatusMaybe,
			CustomID: EncodeCustomID(eventID, StatusMaybe),
		},
		{
			Label:    "Not Attending",
			Emphasis: EmphasisNegative,
			Status:   StatusNotAttending,
			CustomID: EncodeCustomID(eventID, StatusNotAttending),
		},
	}, nil
}
