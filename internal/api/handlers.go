// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"

	"github.com/gatherly/gatherbot/internal/discord"
	"github.com/gatherly/gatherbot/internal/logging"
	"github.com/gatherly/gatherbot/internal/validation"
)

// Reconciler is the slice of the publisher the HTTP handlers need.
type Reconciler interface {
	Publish(ctx context.Context, channelID, messageID string, embed *discordgo.MessageEmbed, eventID string) (*discord.PublishResult, error)
	AddReactions(ctx context.Context, channelID, messageID string) error
}

// Handler serves the bridge's HTTP endpoints.
type Handler struct {
	reconciler Reconciler
}

func NewHandler(reconciler Reconciler) *Handler {
	return &Handler{reconciler: reconciler}
}

// Health reports liveness. Plain body, no auth, no dependencies checked;
// readiness of the gateway connection is discordgo's concern.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // HTTP response write errors are not recoverable
	w.Write([]byte("ok"))
}

type addReactionsRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
	MessageID string `json:"messageId" validate:"required"`
}

type addReactionsResponse struct {
	Success bool `json:"success"`
}

// AddReactions seeds the legacy yes/no reaction emoji on a message.
func (h *Handler) AddReactions(w http.ResponseWriter, r *http.Request) {
	var req addReactionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.reconciler.AddReactions(r.Context(), req.ChannelID, req.MessageID); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("channel_id", req.ChannelID).
			Str("message_id", req.MessageID).
			Msg("Failed to add reactions")
		if errors.Is(err, discord.ErrInvalidChannel) {
			respondError(w, r, http.StatusBadRequest, "invalid channel")
			return
		}
		respondError(w, r, http.StatusInternalServerError, "failed to add reactions")
		return
	}

	respondJSON(w, r, http.StatusOK, addReactionsResponse{Success: true})
}

type updateEventRequest struct {
	ChannelID string                  `json:"channelId" validate:"required"`
	MessageID string                  `json:"messageId"`
	EventID   string                  `json:"eventId" validate:"required"`
	Embed     *discordgo.MessageEmbed `json:"embed" validate:"required"`
}

// UpdateEvent publishes or refreshes an event announcement and returns the
// message coordinates the backend should persist for future edits.
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.reconciler.Publish(r.Context(), req.ChannelID, req.MessageID, req.Embed, req.EventID)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("channel_id", req.ChannelID).
			Str("event_id", req.EventID).
			Msg("Failed to publish announcement")
		if errors.Is(err, discord.ErrInvalidChannel) {
			respondError(w, r, http.StatusBadRequest, "invalid channel")
			return
		}
		respondError(w, r, http.StatusInternalServerError, "failed to publish announcement")
		return
	}

	respondJSON(w, r, http.StatusOK, result)
}
