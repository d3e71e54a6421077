// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package discord

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/gatherly/gatherbot/internal/rsvp"
)

// fakeSession records Discord API calls for assertions. Zero value serves a
// single text channel on demand.
type fakeSession struct {
	mu sync.Mutex

	channelType discordgo.ChannelType
	channelErr  error
	messageErr  error
	sendErr     error
	editErr     error
	reactionErr error
	respondErr  error
	followupErr error

	sends     []*discordgo.MessageSend
	edits     []*discordgo.MessageEdit
	reactions []string
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
}

func (f *fakeSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	return &discordgo.Channel{ID: channelID, Type: f.channelType}, nil
}

func (f *fakeSession) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if f.messageErr != nil {
		return nil, f.messageErr
	}
	return &discordgo.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sends = append(f.sends, data)
	return &discordgo.Message{ID: "msg-new", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return nil, f.editErr
	}
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeSession) MessageReactionAdd(channelID, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reactionErr != nil {
		return f.reactionErr
	}
	f.reactions = append(f.reactions, emojiID)
	return nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.followupErr != nil {
		return nil, f.followupErr
	}
	f.followups = append(f.followups, data)
	return &discordgo.Message{ID: "followup-1"}, nil
}

type recordedUpdate struct {
	eventID string
	userID  string
	status  rsvp.Status
}

// fakeFrontend stands in for the app backend client.
type fakeFrontend struct {
	mu sync.Mutex

	resolveID      string
	resolveErr     error
	updateErr      error
	panicOnResolve bool
	panicOnUpdate  bool

	resolved []string
	updates  []recordedUpdate

	updateDone chan struct{}
}

func (f *fakeFrontend) ResolveUser(_ context.Context, discordUserID string) (string, error) {
	f.mu.Lock()
	f.resolved = append(f.resolved, discordUserID)
	f.mu.Unlock()
	if f.panicOnResolve {
		panic("resolver blew up")
	}
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.resolveID, nil
}

func (f *fakeFrontend) UpdateRSVP(_ context.Context, eventID, userID string, status rsvp.Status) error {
	f.mu.Lock()
	f.updates = append(f.updates, recordedUpdate{eventID: eventID, userID: userID, status: status})
	done := f.updateDone
	f.mu.Unlock()
	if done != nil {
		defer close(done)
	}
	if f.panicOnUpdate {
		panic("update blew up")
	}
	return f.updateErr
}

var errUpstream = errors.New("upstream unavailable")
