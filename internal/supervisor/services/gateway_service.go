// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package services

import (
	"context"
	"fmt"

	"github.com/gatherly/gatherbot/internal/logging"
)

// GatewaySession matches the discordgo session lifecycle the service owns.
// The session must already be opened; the bridge treats a failed initial
// login as fatal at startup, before the tree ever runs. Reconnects after
// that are discordgo's job, so this service only holds the connection open
// and closes it on shutdown.
type GatewaySession interface {
	Close() error
}

// GatewayService ties the Discord gateway connection's lifetime to the
// supervision tree.
type GatewayService struct {
	session GatewaySession
}

func NewGatewayService(session GatewaySession) *GatewayService {
	return &GatewayService{session: session}
}

// Serve implements suture.Service.
func (g *GatewayService) Serve(ctx context.Context) error {
	<-ctx.Done()

	logging.Info().Msg("Closing Discord gateway connection")
	if err := g.session.Close(); err != nil {
		return fmt.Errorf("closing gateway session: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it in event logs.
func (g *GatewayService) String() string {
	return "discord-gateway"
}
