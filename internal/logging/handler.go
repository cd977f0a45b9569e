// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

// Package logging builds the process slog.Logger. Records carry the service
// name, build version and, when the context holds a span, its trace ids.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel/trace"
)

// Formats accepted by Options.Format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Attribute keys whose values never reach the output.
var redactedKeys = map[string]struct{}{
	"password": {},
	"token":    {},
}

// Options configures New.
type Options struct {
	Service string
	Version string
	Format  string // json (default) or text
	Level   string // debug, info (default), warn, error
	Writer  io.Writer
}

// traceHandler stamps span ids from the record context.
type traceHandler struct {
	slog.Handler
}

func (h traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	//nolint:wrapcheck // pass through
	return h.Handler.Handle(ctx, r)
}

func (h traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return traceHandler{h.Handler.WithAttrs(attrs)}
}

func (h traceHandler) WithGroup(name string) slog.Handler {
	return traceHandler{h.Handler.WithGroup(name)}
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, oops.Code("CONFIG_INVALID").With("level", name).Errorf("unknown log level %q", name)
	}
}

// New builds a logger from opts. Output goes to stderr unless opts.Writer is set.
func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: level, ReplaceAttr: redact}
	var base slog.Handler
	switch opts.Format {
	case FormatText:
		base = slog.NewTextHandler(w, handlerOpts)
	case FormatJSON, "":
		base = slog.NewJSONHandler(w, handlerOpts)
	default:
		return nil, oops.Code("CONFIG_INVALID").With("format", opts.Format).Errorf("unknown log format %q", opts.Format)
	}

	logger := slog.New(traceHandler{base}).With(
		slog.String("service", opts.Service),
		slog.String("version", opts.Version),
	)
	return logger, nil
}

func redact(_ []string, a slog.Attr) slog.Attr {
	if _, ok := redactedKeys[a.Key]; ok {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}
