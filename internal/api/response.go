// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/gatherly/gatherbot/internal/logging"
)

// errorResponse is the body for every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, errorResponse{Error: message})
}
