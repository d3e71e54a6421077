// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

// Package backend provides the HTTP client for the Gatherly app backend, the
// external source of truth for events, attendance records, and Discord
// account links.
//
// The client covers exactly two operations:
//   - ResolveUser: map a Discord user ID to a linked app account
//   - UpdateRSVP: apply an attendance status change
//
// Neither operation retries internally; retry policy belongs to the caller.
// Idempotency of UpdateRSVP is the backend's guarantee - applying the same
// (eventID, userID, status) twice leaves backend state unchanged.
package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/gatherly/gatherbot/internal/config"
	"github.com/gatherly/gatherbot/internal/metrics"
	"github.com/gatherly/gatherbot/internal/rsvp"
)

// sharedSecretHeader authenticates bridge-to-backend calls.
const sharedSecretHeader = "x-bot-secret"

// maxErrorBodySize limits how much of an error response body is read for
// diagnostics, preventing unbounded allocation on large error responses.
const maxErrorBodySize = 64 * 1024 // 64KB

// ErrNotLinked reports that a Discord user has no linked app account.
// This is an expected outcome of ResolveUser, not a transport failure.
var ErrNotLinked = errors.New("discord account is not linked to an app account")

// Frontend is the narrow contract the bridge needs from the app backend.
//
// Implemented by Client for production use and by the circuit breaker
// wrapper; tests substitute fakes.
type Frontend interface {
	// ResolveUser returns the app user ID linked to the given Discord user,
	// ErrNotLinked if no link exists, or a transport error.
	ResolveUser(ctx context.Context, discordUserID string) (string, error)

	// UpdateRSVP applies the attendance status for (eventID, discordUserID).
	UpdateRSVP(ctx context.Context, eventID, discordUserID string, status rsvp.Status) error
}

// Client handles communication with the app backend HTTP API.
//
// Thread safety: safe for concurrent use; each call builds its own request.
type Client struct {
	baseURL string
	secret  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient creates an app backend client from the frontend configuration.
// cfg.Secret must already be resolved (see config.OutboundSecret).
func NewClient(cfg *config.FrontendConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// Zero means unlimited; the limiter then never blocks.
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		baseURL: cfg.URL,
		secret:  cfg.Secret,
		client: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// resolveUserRequest is the wire body for the identity resolution endpoint.
type resolveUserRequest struct {
	DiscordUserID string `json:"discordUserId"`
}

// resolveUserResponse carries the linked app user ID.
type resolveUserResponse struct {
	UserID string `json:"userId"`
}

// updateRSVPRequest is the wire body for the attendance update endpoint.
type updateRSVPRequest struct {
	EventID       string `json:"eventId"`
	DiscordUserID string `json:"discordUserId"`
	Status        string `json:"status"`
}

// ResolveUser performs a single POST to /api/discord/resolve-user.
//
// A 404 response means the Discord account is not linked and maps to
// ErrNotLinked. Any other non-2xx response or transport failure is an error.
func (c *Client) ResolveUser(ctx context.Context, discordUserID string) (string, error) {
	resp, err := c.post(ctx, "resolve_user", "/api/discord/resolve-user", resolveUserRequest{
		DiscordUserID: discordUserID,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", ErrNotLinked
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.BackendRequestErrors.WithLabelValues("resolve_user").Inc()
		return "", fmt.Errorf("resolve-user returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	var body resolveUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.BackendRequestErrors.WithLabelValues("resolve_user").Inc()
		return "", fmt.Errorf("failed to decode resolve-user response: %w", err)
	}

	return body.UserID, nil
}

// UpdateRSVP performs a single POST to /api/events/update.
// Any non-2xx response or transport failure is an error.
func (c *Client) UpdateRSVP(ctx context.Context, eventID, discordUserID string, status rsvp.Status) error {
	resp, err := c.post(ctx, "update_rsvp", "/api/events/update", updateRSVPRequest{
		EventID:       eventID,
		DiscordUserID: discordUserID,
		Status:        status.String(),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.BackendRequestErrors.WithLabelValues("update_rsvp").Inc()
		return fmt.Errorf("events/update returned status %d: %s", resp.StatusCode, readBodyForError(resp.Body))
	}

	return nil
}

// post performs one JSON POST to the backend with the shared secret header.
// The limiter wait is cancellable through ctx.
func (c *Client) post(ctx context.Context, operation, path string, payload interface{}) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(sharedSecretHeader, c.secret)

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestErrors.WithLabelValues(operation).Inc()
		return nil, fmt.Errorf("%s request failed: %w", operation, err)
	}

	return resp, nil
}

// readBodyForError reads up to maxErrorBodySize of a response body for error
// reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("... (truncated)")...)
	}
	return body
}
