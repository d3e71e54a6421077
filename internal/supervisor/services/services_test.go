// Gatherbot - Discord RSVP Bridge for Gatherly Events
// Copyright 2026 Gatherly Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gatherly/gatherbot

package services

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeHTTPServer struct {
	listenErr error

	shutdownCalled chan struct{}
	done           chan struct{}
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{
		shutdownCalled: make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.done
	return errors.New("http: Server closed")
}

func (f *fakeHTTPServer) Shutdown(_ context.Context) error {
	close(f.shutdownCalled)
	close(f.done)
	return nil
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	t.Parallel()

	server := newFakeHTTPServer()
	svc := NewHTTPServerService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}

	select {
	case <-server.shutdownCalled:
	default:
		t.Error("Shutdown was not called")
	}
}

func TestHTTPServerServiceStartFailure(t *testing.T) {
	t.Parallel()

	server := newFakeHTTPServer()
	server.listenErr = errors.New("bind: address already in use")
	svc := NewHTTPServerService(server, time.Second)

	if err := svc.Serve(context.Background()); err == nil {
		t.Error("Serve() expected error when listen fails")
	}
}

func TestHTTPServerServiceString(t *testing.T) {
	t.Parallel()

	if got := NewHTTPServerService(newFakeHTTPServer(), 0).String(); got != "http-server" {
		t.Errorf("String() = %q, want http-server", got)
	}
}

type fakeGatewaySession struct {
	closed   bool
	closeErr error
}

func (f *fakeGatewaySession) Close() error {
	f.closed = true
	return f.closeErr
}

func TestGatewayServiceClosesOnCancel(t *testing.T) {
	t.Parallel()

	session := &fakeGatewaySession{}
	svc := NewGatewayService(session)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancellation")
	}
	if !session.closed {
		t.Error("session was not closed")
	}
}

func TestGatewayServiceCloseFailure(t *testing.T) {
	t.Parallel()

	session := &fakeGatewaySession{closeErr: errors.New("websocket already closed")}
	svc := NewGatewayService(session)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := svc.Serve(ctx); err == nil || errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want close failure", err)
	}
}

func TestGatewayServiceString(t *testing.T) {
	t.Parallel()

	if got := NewGatewayService(&fakeGatewaySession{}).String(); got != "discord-gateway" {
		t.Errorf("String() = %q, want discord-gateway", got)
	}
}
