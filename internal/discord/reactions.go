// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/gatherly/gatherbot/internal/logging"
)

// Reaction emoji for the legacy yes/no flow, kept for announcements posted
// before button controls existed.
const (
	reactionAttend  = "✅" // white heavy check mark
	reactionDecline = "❌" // cross mark
)

// AddReactions seeds the legacy RSVP reactions on an existing message.
// The message must live in a text-capable channel.
func (p *Publisher) AddReactions(ctx context.Context, channelID, messageID string) error {
	channel, err := p.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: fetching channel %s: %w", ErrInvalidChannel, channelID, err)
	}
	if !isTextCapable(channel.Type) {
		return fmt.Errorf("%w: channel %s has type %d", ErrInvalidChannel, channelID, channel.Type)
	}

	if _, err := p.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("fetching message %s: %w", messageID, err)
	}

	for _, emoji := range []string{reactionAttend, reactionDecline} {
		if err := p.session.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("adding reaction to message %s: %w", messageID, err)
		}
	}

	logging.Ctx(ctx).Debug().
		Str("channel_id", channelID).
		Str("message_id", messageID).
		Msg("Seeded RSVP reactions")
	return nil
}
