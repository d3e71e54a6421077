// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package discord

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/gatherly/gatherbot/internal/rsvp"
)

func testEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Title: "Garden BBQ", Description: "Saturday at noon"}
}

func TestPublishCreatesMessage(t *testing.T) {
	t.Parallel()

	session := &fakeSession{channelType: discordgo.ChannelTypeGuildText}
	p := NewPublisher(session)

	result, err := p.Publish(context.Background(), "chan-1", "", testEmbed(), "evt-1")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if result.ChannelID != "chan-1" {
		t.Errorf("ChannelID = %q, want %q", result.ChannelID, "chan-1")
	}
	if result.MessageID != "msg-new" {
		t.Errorf("MessageID = %q, want %q", result.MessageID, "msg-new")
	}
	if len(session.sends) != 1 {
		t.Fatalf("sends = %d, want 1", len(session.sends))
	}
	if len(session.edits) != 0 {
		t.Errorf("edits = %d, want 0", len(session.edits))
	}

	row, ok := session.sends[0].Components[0].(discordgo.ActionsRow)
	if !ok {
		t.Fatalf("component type = %T, want ActionsRow", session.sends[0].Components[0])
	}
	if len(row.Components) != 3 {
		t.Fatalf("buttons = %d, want 3", len(row.Components))
	}
	wantIDs := []string{
		"rsvp:evt-1:ATTENDING",
		"rsvp:evt-1:MAYBE",
		"rsvp:evt-1:NOT_ATTENDING",
	}
	for i, want := range wantIDs {
		button, ok := row.Components[i].(discordgo.Button)
		if !ok {
			t.Fatalf("row component %d type = %T, want Button", i, row.Components[i])
		}
		if button.CustomID != want {
			t.Errorf("button %d CustomID = %q, want %q", i, button.CustomID, want)
		}
	}
}

func TestPublishEditsExistingMessage(t *testing.T) {
	t.Parallel()

	session := &fakeSession{channelType: discordgo.ChannelTypeGuildText}
	p := NewPublisher(session)

	result, err := p.Publish(context.Background(), "chan-1", "msg-5", testEmbed(), "evt-1")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if result.MessageID != "msg-5" {
		t.Errorf("MessageID = %q, want %q", result.MessageID, "msg-5")
	}
	if len(session.sends) != 0 {
		t.Errorf("sends = %d, want 0", len(session.sends))
	}
	if len(session.edits) != 1 {
		t.Fatalf("edits = %d, want 1", len(session.edits))
	}

	edit := session.edits[0]
	if edit.Channel != "chan-1" || edit.ID != "msg-5" {
		t.Errorf("edit target = %s/%s, want chan-1/msg-5", edit.Channel, edit.ID)
	}
	if edit.Components == nil || len(*edit.Components) != 1 {
		t.Error("edit did not regenerate RSVP controls")
	}
}

func TestPublishRejectsUnfetchableChannel(t *testing.T) {
	t.Parallel()

	session := &fakeSession{channelErr: errUpstream}
	p := NewPublisher(session)

	_, err := p.Publish(context.Background(), "chan-1", "", testEmbed(), "evt-1")
	if !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("Publish() error = %v, want ErrInvalidChannel", err)
	}
}

func TestPublishRejectsNonTextChannel(t *testing.T) {
	t.Parallel()

	session := &fakeSession{channelType: discordgo.ChannelTypeGuildVoice}
	p := NewPublisher(session)

	_, err := p.Publish(context.Background(), "chan-1", "", testEmbed(), "evt-1")
	if !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("Publish() error = %v, want ErrInvalidChannel", err)
	}
	if len(session.sends) != 0 {
		t.Errorf("sends = %d, want 0", len(session.sends))
	}
}

func TestPublishFailsWhenMessageDeleted(t *testing.T) {
	t.Parallel()

	session := &fakeSession{
		channelType: discordgo.ChannelTypeGuildText,
		messageErr:  errUpstream,
	}
	p := NewPublisher(session)

	_, err := p.Publish(context.Background(), "chan-1", "msg-gone", testEmbed(), "evt-1")
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
	if errors.Is(err, ErrInvalidChannel) {
		t.Error("deleted message should not report an invalid channel")
	}
	if len(session.edits) != 0 {
		t.Errorf("edits = %d, want 0", len(session.edits))
	}
}

func TestPublishFailsOnSendError(t *testing.T) {
	t.Parallel()

	session := &fakeSession{
		channelType: discordgo.ChannelTypeGuildText,
		sendErr:     errUpstream,
	}
	p := NewPublisher(session)

	_, err := p.Publish(context.Background(), "chan-1", "", testEmbed(), "evt-1")
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestPublishRequiresEventID(t *testing.T) {
	t.Parallel()

	session := &fakeSession{channelType: discordgo.ChannelTypeGuildText}
	p := NewPublisher(session)

	if _, err := p.Publish(context.Background(), "chan-1", "", testEmbed(), ""); err == nil {
		t.Error("Publish() with empty event id expected error")
	}
}

func TestButtonStyles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		emphasis rsvp.Emphasis
		want     discordgo.ButtonStyle
	}{
		{rsvp.EmphasisAffirmative, discordgo.SuccessButton},
		{rsvp.EmphasisNeutral, discordgo.SecondaryButton},
		{rsvp.EmphasisNegative, discordgo.DangerButton},
	}
	for _, tt := range tests {
		if got := buttonStyle(tt.emphasis); got != tt.want {
			t.Errorf("buttonStyle(%q) = %d, want %d", tt.emphasis, got, tt.want)
		}
	}
}

func TestAddReactions(t *testing.T) {
	t.Parallel()

	session := &fakeSession{channelType: discordgo.ChannelTypeGuildText}
	p := NewPublisher(session)

	if err := p.AddReactions(context.Background(), "chan-1", "msg-1"); err != nil {
		t.Fatalf("AddReactions() error = %v", err)
	}
	if len(session.reactions) != 2 {
		t.Fatalf("reactions = %d, want 2", len(session.reactions))
	}
	if session.reactions[0] != reactionAttend || session.reactions[1] != reactionDecline {
		t.Errorf("reactions = %v, want [%s %s]", session.reactions, reactionAttend, reactionDecline)
	}
}

func TestAddReactionsInvalidChannel(t *testing.T) {
	t.Parallel()

	session := &fakeSession{channelType: discordgo.ChannelTypeGuildVoice}
	p := NewPublisher(session)

	err := p.AddReactions(context.Background(), "chan-1", "msg-1")
	if !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("AddReactions() error = %v, want ErrInvalidChannel", err)
	}
	if len(session.reactions) != 0 {
		t.Errorf("reactions = %d, want 0", len(session.reactions))
	}
}

func TestAddReactionsFailurePropagates(t *testing.T) {
	t.Parallel()

	session := &fakeSession{
		channelType: discordgo.ChannelTypeGuildText,
		reactionErr: errUpstream,
	}
	p := NewPublisher(session)

	if err := p.AddReactions(context.Background(), "chan-1", "msg-1"); err == nil {
		t.Error("AddReactions() expected error")
	}
}
