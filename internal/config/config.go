// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

// Package config holds all application configuration loaded from environment
// variables and an optional YAML config file.
//
// Configuration loading order (Koanf v2, highest priority last):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config file: optional YAML file (config.yaml) for persistent settings
//  3. Environment variables: override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gatherly/gatherbot/internal/validation"
)

// RSVP handler modes. Sync blocks the interaction outcome on the backend
// update; detached acknowledges immediately and runs the update in the
// background, logging (not surfacing) its failure.
const (
	ModeSync     = "sync"
	ModeDetached = "detached"
)

// Config holds all application configuration.
type Config struct {
	Discord  DiscordConfig  `koanf:"discord"`
	Frontend FrontendConfig `koanf:"frontend"`
	RSVP     RSVPConfig     `koanf:"rsvp"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DiscordConfig holds the Discord gateway session settings.
//
// Environment Variables:
//   - DISCORD_BOT_TOKEN: bot token from the Discord developer portal (required)
type DiscordConfig struct {
	Token string `koanf:"token" validate:"required"`
}

// FrontendConfig holds the connection settings for the Gatherly app backend,
// the source of truth for events, RSVPs, and Discord account links.
//
// Environment Variables:
//   - FRONTEND_URL: base URL of the app backend (required)
//   - FRONTEND_SECRET: shared secret sent on outbound calls; defaults to
//     BOT_SECRET when unset
//   - FRONTEND_TIMEOUT: per-request timeout (default: 10s)
//   - FRONTEND_RATE_LIMIT: outbound requests per second, 0 = unlimited
type FrontendConfig struct {
	URL       string        `koanf:"url" validate:"required,url"`
	Secret    string        `koanf:"secret"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"`
}

// RSVPConfig controls the interaction handler behaviour.
//
// Environment Variables:
//   - RSVP_MODE: "sync" or "detached" (default: sync)
//   - ACCOUNT_LINK_URL: URL sent to users whose Discord account is not yet
//     linked to an app account (required)
//   - RSVP_REFRESH_ON_UPDATE: re-publish the announcement message after a
//     successful RSVP update (default: false)
type RSVPConfig struct {
	Mode            string `koanf:"mode" validate:"oneof=sync detached"`
	AccountLinkURL  string `koanf:"account_link_url" validate:"required,url"`
	RefreshOnUpdate bool   `koanf:"refresh_on_update"`
}

// ServerConfig holds the HTTP server settings.
//
// Environment Variables:
//   - PORT: listen port (default: 3001)
//   - HTTP_HOST: listen host (default: 0.0.0.0)
//   - HTTP_TIMEOUT: read/write timeout (default: 30s)
//   - SHUTDOWN_TIMEOUT: graceful shutdown deadline (default: 10s)
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// SecurityConfig holds the inbound HTTP authentication and throttle settings.
//
// Environment Variables:
//   - BOT_SECRET: shared secret required in the x-bot-secret header (required)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: per-IP limit on the API
//   - DISABLE_RATE_LIMIT: disable rate limiting (tests only)
//   - CORS_ORIGINS: comma-separated allowed origins
type SecurityConfig struct {
	BotSecret         string        `koanf:"bot_secret" validate:"required"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds log output settings.
//
// Environment Variables:
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller info (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := validateHTTPURL(c.Frontend.URL, "FRONTEND_URL"); err != nil {
		return err
	}
	if err := validateHTTPURL(c.RSVP.AccountLinkURL, "ACCOUNT_LINK_URL"); err != nil {
		return err
	}

	if c.Frontend.Timeout <= 0 {
		return fmt.Errorf("FRONTEND_TIMEOUT must be positive")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}

	return nil
}

// validateHTTPURL checks that the value parses as an absolute http(s) URL.
func validateHTTPURL(value, name string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme", name)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}

// OutboundSecret returns the secret used on calls to the app backend.
// Falls back to the inbound bot secret when FRONTEND_SECRET is unset, which
// matches deployments where both directions share one credential.
func (c *Config) OutboundSecret() string {
	if c.Frontend.Secret != "" {
		return c.Frontend.Secret
	}
	return c.Security.BotSecret
}
