// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/muvr/profile/pkg/errutil"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "not JSON: %s", buf.String())
	return entry
}

func TestNew_JSONDefault(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Service: "profiled", Version: "1.2.3", Writer: &buf})
	require.NoError(t, err)

	logger.Info("hello", "username", "alice")

	entry := decode(t, &buf)
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "profiled", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "alice", entry["username"])
	assert.NotContains(t, entry, "trace_id")
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Service: "profiled", Format: FormatText, Writer: &buf})
	require.NoError(t, err)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "service=profiled")
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Writer: &buf})
	require.NoError(t, err)

	logger.Info("dropped")
	assert.Empty(t, buf.String())
	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNew_RejectsBadOptions(t *testing.T) {
	_, err := New(Options{Level: "chatty"})
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")

	_, err = New(Options{Format: "xml"})
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}

func TestNew_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf})
	require.NoError(t, err)

	logger.Info("login", "password", "hunter2", "token", "abc")

	entry := decode(t, &buf)
	assert.Equal(t, "[REDACTED]", entry["password"])
	assert.Equal(t, "[REDACTED]", entry["token"])
}

func TestHandler_TraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Writer: &buf})
	require.NoError(t, err)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.With("component", "engine").InfoContext(ctx, "traced")

	entry := decode(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
	assert.Equal(t, "engine", entry["component"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
