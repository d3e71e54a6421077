// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/gatherly/gatherbot/internal/backend"
	"github.com/gatherly/gatherbot/internal/config"
	"github.com/gatherly/gatherbot/internal/logging"
	"github.com/gatherly/gatherbot/internal/metrics"
	"github.com/gatherly/gatherbot/internal/rsvp"
)

// InteractionConfig tunes the RSVP interaction flow.
type InteractionConfig struct {
	// Mode selects whether the backend update runs before the interaction
	// handler returns (config.ModeSync) or in a detached goroutine
	// (config.ModeDetached). Detached mode cannot report failures back to
	// the member; it only logs them.
	Mode string

	// AccountLinkURL is shown to members whose Discord account has no
	// Gatherly account attached.
	AccountLinkURL string

	// RefreshOnUpdate re-publishes the announcement after a successful
	// RSVP so the embed reflects the new attendance.
	RefreshOnUpdate bool
}

// InteractionHandler turns button presses on announcement messages into
// attendance updates. Each interaction gets exactly one initial response;
// anything reported after the deferred acknowledgement goes out as an
// ephemeral follow-up.
type InteractionHandler struct {
	session   Session
	frontend  backend.Frontend
	publisher *Publisher
	cfg       InteractionConfig
}

func NewInteractionHandler(session Session, frontend backend.Frontend, publisher *Publisher, cfg InteractionConfig) *InteractionHandler {
	return &InteractionHandler{
		session:   session,
		frontend:  frontend,
		publisher: publisher,
		cfg:       cfg,
	}
}

// HandleInteractionCreate is registered on the gateway session via
// AddHandler.
func (h *InteractionHandler) HandleInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	h.handle(context.Background(), i.Interaction)
}

func (h *InteractionHandler) handle(ctx context.Context, interaction *discordgo.Interaction) {
	customID := interaction.MessageComponentData().CustomID

	eventID, status, err := rsvp.ParseCustomID(customID)
	if err != nil {
		// Some other component on a shared message. Not ours to answer.
		metrics.InteractionsTotal.WithLabelValues("ignored").Inc()
		return
	}

	userID := interactionUserID(interaction)
	if userID == "" {
		metrics.InteractionsTotal.WithLabelValues("ignored").Inc()
		return
	}

	log := logging.Ctx(ctx).With().
		Str("event_id", eventID).
		Str("discord_user_id", userID).
		Str("status", status.String()).
		Logger()

	responded := false

	gatherlyUserID, err := h.resolveUser(ctx, userID)
	if err != nil {
		if errors.Is(err, backend.ErrNotLinked) {
			metrics.InteractionsTotal.WithLabelValues("not_linked").Inc()
			log.Info().Msg("RSVP from unlinked account")
			h.replyEphemeral(ctx, interaction, &responded,
				"Your Discord account is not linked to a Gatherly account yet. Link it here, then try again: "+h.cfg.AccountLinkURL)
			return
		}
		metrics.InteractionsTotal.WithLabelValues("resolve_failed").Inc()
		log.Error().Err(err).Msg("Failed to resolve member account")
		h.replyEphemeral(ctx, interaction, &responded,
			"Something went wrong looking up your account. Please try again in a moment.")
		return
	}

	// Acknowledge before touching the backend again so Discord's response
	// window cannot expire mid-update.
	if err := h.session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}, discordgo.WithContext(ctx)); err != nil {
		metrics.InteractionsTotal.WithLabelValues("update_failed").Inc()
		log.Error().Err(err).Msg("Failed to acknowledge interaction")
		return
	}
	responded = true

	if h.cfg.Mode == config.ModeDetached {
		go h.update(context.Background(), interaction, eventID, gatherlyUserID, status, true)
		return
	}
	h.update(ctx, interaction, eventID, gatherlyUserID, status, false)
}

// update pushes the RSVP to the backend. The interaction has already been
// acknowledged, so failures reach the member only as ephemeral follow-ups,
// and in detached mode not at all.
func (h *InteractionHandler) update(ctx context.Context, interaction *discordgo.Interaction, eventID, gatherlyUserID string, status rsvp.Status, detached bool) {
	log := logging.Ctx(ctx).With().
		Str("event_id", eventID).
		Str("user_id", gatherlyUserID).
		Str("status", status.String()).
		Logger()

	if err := h.updateRSVP(ctx, eventID, gatherlyUserID, status); err != nil {
		metrics.InteractionsTotal.WithLabelValues("update_failed").Inc()
		log.Error().Err(err).Bool("detached", detached).Msg("Failed to record RSVP")
		if !detached {
			h.followupEphemeral(ctx, interaction,
				"We couldn't save your RSVP. Please try again.")
		}
		return
	}

	metrics.InteractionsTotal.WithLabelValues("updated").Inc()
	log.Info().Msg("RSVP recorded")

	if h.cfg.RefreshOnUpdate {
		h.refresh(ctx, interaction, eventID)
	}
}

// refresh re-publishes the announcement the interaction came from, reusing
// its current embed. Best effort; the RSVP itself has already been saved.
func (h *InteractionHandler) refresh(ctx context.Context, interaction *discordgo.Interaction, eventID string) {
	if h.publisher == nil || interaction.Message == nil || len(interaction.Message.Embeds) == 0 {
		return
	}
	_, err := h.publisher.Publish(ctx, interaction.ChannelID, interaction.Message.ID, interaction.Message.Embeds[0], eventID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("event_id", eventID).
			Str("message_id", interaction.Message.ID).
			Msg("Failed to refresh announcement after RSVP")
	}
}

// resolveUser wraps the backend lookup so a panic inside the client stack
// degrades into the transport-failure path instead of killing the gateway
// event loop.
func (h *InteractionHandler) resolveUser(ctx context.Context, discordUserID string) (userID string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolve panicked: %v", r)
		}
	}()
	return h.frontend.ResolveUser(ctx, discordUserID)
}

func (h *InteractionHandler) updateRSVP(ctx context.Context, eventID, userID string, status rsvp.Status) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("update panicked: %v", r)
		}
	}()
	return h.frontend.UpdateRSVP(ctx, eventID, userID, status)
}

// replyEphemeral sends the single initial response for an interaction that
// was never deferred. The responded flag guards against a second initial
// response, which Discord rejects.
func (h *InteractionHandler) replyEphemeral(ctx context.Context, interaction *discordgo.Interaction, responded *bool, content string) {
	if *responded {
		h.followupEphemeral(ctx, interaction, content)
		return
	}
	err := h.session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to send interaction reply")
		return
	}
	*responded = true
}

func (h *InteractionHandler) followupEphemeral(ctx context.Context, interaction *discordgo.Interaction, content string) {
	_, err := h.session.FollowupMessageCreate(interaction, false, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to send interaction follow-up")
	}
}

// interactionUserID extracts the acting member regardless of whether the
// interaction arrived from a guild channel or a DM.
func interactionUserID(interaction *discordgo.Interaction) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}
