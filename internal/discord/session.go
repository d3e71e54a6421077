// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

// Package discord bridges Gatherly events onto Discord: it publishes and
// reconciles announcement messages carrying RSVP buttons, and converts
// button interactions into attendance updates against the app backend.
//
// The package depends on the Discord API only through the Session interface,
// a narrow slice of *discordgo.Session. The session handle is constructed
// once at process start and injected into every component; there is no
// package-level session state. Connection management, heartbeats, and
// reconnects are delegated to discordgo.
package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/gatherly/gatherbot/internal/config"
	"github.com/gatherly/gatherbot/internal/logging"
)

// Session is the contract the bridge needs from the Discord client: channel
// and message access for publishing, reactions for the legacy flow, and
// interaction responses for RSVP handling.
//
// Satisfied by *discordgo.Session. Tests substitute a fake.
type Session interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// NewSession constructs the gateway session with the intents the bridge
// needs. The session is not opened here; the gateway supervisor service owns
// Open/Close.
func NewSession(cfg *config.DiscordConfig) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentGuildMessageReactions

	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		logging.Info().
			Str("username", r.User.Username).
			Int("guilds", len(r.Guilds)).
			Msg("Bot logged in")
	})

	return session, nil
}

// isTextCapable reports whether messages can be posted to the channel type.
func isTextCapable(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread,
		discordgo.ChannelTypeDM:
		return true
	}
	return false
}
