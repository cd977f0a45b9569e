// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/muvr/profile/internal/config"
	"github.com/muvr/profile/internal/entity"
	"github.com/muvr/profile/internal/store"
)

func testServeConfig() config.Config {
	cfg := config.Defaults()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Metrics.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestRunServe_ServesUntilCanceled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := store.NewMemoryEventLog()
	closed := false
	ready := make(chan string, 1)
	deps := &serveDeps{
		openLog: func(context.Context, config.Config, *slog.Logger) (entity.EventLog, func(), error) {
			return log, func() { closed = true }, nil
		},
		onReady: func(addr string) { ready <- addr },
	}

	done := make(chan error, 1)
	go func() { done <- runServe(ctx, testServeConfig(), slog.New(slog.DiscardHandler), deps) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("runServe returned early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not become ready")
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Post("http://"+addr+"/user", "application/json",
		strings.NewReader(`{"username":"alice","password":"secret"}`))
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	client.CloseIdleConnections()

	assert.Len(t, log.Records(entity.StreamName("alice")), 1)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runServe did not stop")
	}
	assert.True(t, closed)
}

func TestRunServe_EventLogFailure(t *testing.T) {
	deps := &serveDeps{
		openLog: func(context.Context, config.Config, *slog.Logger) (entity.EventLog, func(), error) {
			return nil, nil, errors.New("database unreachable")
		},
	}
	cfg := testServeConfig()

	err := runServe(context.Background(), cfg, slog.New(slog.DiscardHandler), deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database unreachable")
}

func TestRunServe_RejectsUnknownHasher(t *testing.T) {
	cfg := testServeConfig()
	cfg.Hasher.Algorithm = "md5"

	err := runServe(context.Background(), cfg, slog.New(slog.DiscardHandler), nil)
	require.Error(t, err)
}

func TestOpenEventLog_Memory(t *testing.T) {
	log, closeLog, err := openEventLog(context.Background(), config.Defaults(), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	defer closeLog()
	assert.IsType(t, &store.MemoryEventLog{}, log)
}
