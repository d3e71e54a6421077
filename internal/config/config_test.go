// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setRequiredEnv sets the minimal environment a successful Load needs.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_BOT_TOKEN", "test-token")
	t.Setenv("FRONTEND_URL", "https://gatherly.example")
	t.Setenv("BOT_SECRET", "test-secret")
	t.Setenv("ACCOUNT_LINK_URL", "https://gatherly.example/link")
	// Keep any developer config.yaml out of the test.
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Chdir(t.TempDir())
}

func TestLoadWithDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Discord.Token != "test-token" {
		t.Errorf("Discord.Token = %q, want test-token", cfg.Discord.Token)
	}
	if cfg.Server.Port != 3001 {
		t.Errorf("Server.Port = %d, want 3001", cfg.Server.Port)
	}
	if cfg.RSVP.Mode != ModeSync {
		t.Errorf("RSVP.Mode = %q, want sync", cfg.RSVP.Mode)
	}
	if cfg.Frontend.Timeout != 10*time.Second {
		t.Errorf("Frontend.Timeout = %v, want 10s", cfg.Frontend.Timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("RSVP_MODE", "detached")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.RSVP.Mode != ModeDetached {
		t.Errorf("RSVP.Mode = %q, want detached", cfg.RSVP.Mode)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != want[0] || cfg.Security.CORSOrigins[1] != want[1] {
		t.Errorf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
}

func TestLoadConfigFile(t *testing.T) {
	setRequiredEnv(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := "server:\n  port: 4000\nrsvp:\n  refresh_on_update: true\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("CONFIG_PATH", configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want 4000 from config file", cfg.Server.Port)
	}
	if !cfg.RSVP.RefreshOnUpdate {
		t.Error("RSVP.RefreshOnUpdate = false, want true from config file")
	}
}

func TestLoadEnvBeatsConfigFile(t *testing.T) {
	setRequiredEnv(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 4000\n"), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("CONFIG_PATH", configPath)
	t.Setenv("PORT", "5000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want env override 5000", cfg.Server.Port)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"missing token", "DISCORD_BOT_TOKEN"},
		{"missing frontend url", "FRONTEND_URL"},
		{"missing bot secret", "BOT_SECRET"},
		{"missing account link url", "ACCOUNT_LINK_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.unset, "")

			if _, err := Load(); err == nil {
				t.Errorf("Load() without %s expected error", tt.unset)
			}
		})
	}
}

func TestLoadRejectsBadMode(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("RSVP_MODE", "async")

	if _, err := Load(); err == nil {
		t.Error("Load() with RSVP_MODE=async expected error")
	}
}

func TestLoadRejectsNonHTTPFrontendURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FRONTEND_URL", "ftp://gatherly.example")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() with ftp frontend url expected error")
	}
	if !strings.Contains(err.Error(), "http") {
		t.Errorf("error %q should mention the scheme requirement", err)
	}
}

func TestOutboundSecretFallback(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Frontend: FrontendConfig{Secret: ""},
		Security: SecurityConfig{BotSecret: "inbound"},
	}
	if got := cfg.OutboundSecret(); got != "inbound" {
		t.Errorf("OutboundSecret() = %q, want inbound", got)
	}

	cfg.Frontend.Secret = "outbound"
	if got := cfg.OutboundSecret(); got != "outbound" {
		t.Errorf("OutboundSecret() = %q, want outbound", got)
	}
}

func TestEnvTransformDropsUnknownKeys(t *testing.T) {
	t.Parallel()

	if got := envTransformFunc("HOME"); got != "" {
		t.Errorf("envTransformFunc(HOME) = %q, want empty", got)
	}
	if got := envTransformFunc("DISCORD_BOT_TOKEN"); got != "discord.token" {
		t.Errorf("envTransformFunc(DISCORD_BOT_TOKEN) = %q, want discord.token", got)
	}
}
