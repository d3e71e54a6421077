// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

// Gatherbot keeps Discord event announcements in sync with Gatherly.
//
// The bridge connects to the Discord gateway to turn RSVP button presses
// into attendance updates against the Gatherly backend, and exposes an
// HTTP surface the backend calls to publish or refresh announcement
// messages.
//
// Configuration is layered: struct defaults, then an optional YAML file
// (CONFIG_PATH or ./config.yaml), then environment variables. Minimal
// environment:
//
//	DISCORD_BOT_TOKEN=...       bot token for the gateway session
//	FRONTEND_URL=https://...    Gatherly backend base URL
//	BOT_SECRET=...              shared secret for inbound and outbound calls
//	ACCOUNT_LINK_URL=https://.. shown to members with unlinked accounts
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gatherly/gatherbot/internal/api"
	"github.com/gatherly/gatherbot/internal/backend"
	"github.com/gatherly/gatherbot/internal/config"
	"github.com/gatherly/gatherbot/internal/discord"
	"github.com/gatherly/gatherbot/internal/logging"
	"github.com/gatherly/gatherbot/internal/supervisor"
	"github.com/gatherly/gatherbot/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet, so the default logger reports this.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("frontend_url", cfg.Frontend.URL).
		Str("rsvp_mode", cfg.RSVP.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Gatherbot")

	// Backend client behind a circuit breaker. Shared by the interaction
	// handler for identity resolution and RSVP updates. The outbound secret
	// falls back to the inbound bot secret when FRONTEND_SECRET is unset.
	frontendCfg := cfg.Frontend
	frontendCfg.Secret = cfg.OutboundSecret()
	frontend := backend.NewCircuitBreakerClient(&frontendCfg)

	session, err := discord.NewSession(&cfg.Discord)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create Discord session")
	}

	publisher := discord.NewPublisher(session)
	interactions := discord.NewInteractionHandler(session, frontend, publisher, discord.InteractionConfig{
		Mode:            cfg.RSVP.Mode,
		AccountLinkURL:  cfg.RSVP.AccountLinkURL,
		RefreshOnUpdate: cfg.RSVP.RefreshOnUpdate,
	})
	session.AddHandler(interactions.HandleInteractionCreate)

	// A failed initial login is a config or credentials problem; retrying
	// under the supervisor would just loop. Reconnects after a successful
	// login are handled inside discordgo.
	if err := session.Open(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to Discord gateway")
	}

	handler := api.NewHandler(publisher)
	middleware := api.NewMiddleware(&cfg.Security)
	router := api.NewRouter(handler, middleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)

	tree.AddGatewayService(services.NewGatewayService(session))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Gatherbot stopped gracefully")
}
