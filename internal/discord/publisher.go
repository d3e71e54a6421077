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

	"github.com/gatherly/gatherbot/internal/logging"
	"github.com/gatherly/gatherbot/internal/metrics"
	"github.com/gatherly/gatherbot/internal/rsvp"
)

var (
	// ErrInvalidChannel indicates the target channel could not be fetched
	// or cannot carry messages. Callers map it to a client error.
	ErrInvalidChannel = errors.New("invalid or non-text channel")

	// ErrPublishFailed indicates the announcement message could not be
	// created or updated after the channel itself checked out.
	ErrPublishFailed = errors.New("failed to publish announcement")
)

// PublishResult identifies the announcement message after a publish.
type PublishResult struct {
	ChannelID string `json:"channelId"`
	MessageID string `json:"messageId"`
}

// Publisher keeps event announcement messages in sync with the backend.
// A publish either creates a fresh announcement or edits an existing one
// in place; either way the RSVP controls are regenerated from the event id
// so stale custom ids never survive an update.
type Publisher struct {
	session Session
}

func NewPublisher(session Session) *Publisher {
	return &Publisher{session: session}
}

// Publish creates or updates the announcement for an event.
//
// When messageID is empty a new message is sent to the channel. Otherwise
// the existing message is fetched and edited in place; a message that has
// been deleted out from under us fails the publish rather than silently
// creating a duplicate announcement.
func (p *Publisher) Publish(ctx context.Context, channelID, messageID string, embed *discordgo.MessageEmbed, eventID string) (*PublishResult, error) {
	controls, err := rsvp.Controls(eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	components := componentsFor(controls)

	channel, err := p.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: fetching channel %s: %w", ErrInvalidChannel, channelID, err)
	}
	if !isTextCapable(channel.Type) {
		return nil, fmt.Errorf("%w: channel %s has type %d", ErrInvalidChannel, channelID, channel.Type)
	}

	if messageID == "" {
		return p.create(ctx, channelID, embed, components)
	}
	return p.edit(ctx, channelID, messageID, embed, components)
}

func (p *Publisher) create(ctx context.Context, channelID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (*PublishResult, error) {
	msg, err := p.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		metrics.PublishesTotal.WithLabelValues("create", "error").Inc()
		return nil, fmt.Errorf("%w: sending message: %w", ErrPublishFailed, err)
	}

	metrics.PublishesTotal.WithLabelValues("create", "ok").Inc()
	logging.Ctx(ctx).Debug().
		Str("channel_id", channelID).
		Str("message_id", msg.ID).
		Msg("Announcement created")

	return &PublishResult{ChannelID: channelID, MessageID: msg.ID}, nil
}

func (p *Publisher) edit(ctx context.Context, channelID, messageID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (*PublishResult, error) {
	// Fetch first so a deleted message surfaces as a publish failure
	// instead of an opaque edit error.
	if _, err := p.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		metrics.PublishesTotal.WithLabelValues("edit", "error").Inc()
		return nil, fmt.Errorf("%w: fetching message %s: %w", ErrPublishFailed, messageID, err)
	}

	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := p.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx)); err != nil {
		metrics.PublishesTotal.WithLabelValues("edit", "error").Inc()
		return nil, fmt.Errorf("%w: editing message %s: %w", ErrPublishFailed, messageID, err)
	}

	metrics.PublishesTotal.WithLabelValues("edit", "ok").Inc()
	logging.Ctx(ctx).Debug().
		Str("channel_id", channelID).
		Str("message_id", messageID).
		Msg("Announcement updated")

	return &PublishResult{ChannelID: channelID, MessageID: messageID}, nil
}

// componentsFor renders RSVP controls as a single button row.
func componentsFor(controls []rsvp.Control) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(controls))
	for _, c := range controls {
		buttons = append(buttons, discordgo.Button{
			Label:    c.Label,
			Style:    buttonStyle(c.Emphasis),
			CustomID: c.CustomID,
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

func buttonStyle(e rsvp.Emphasis) discordgo.ButtonStyle {
	switch e {
	case rsvp.EmphasisAffirmative:
		return discordgo.SuccessButton
	case rsvp.EmphasisNegative:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}
