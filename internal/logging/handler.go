// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Escalint Contributors

// Package logging provides structured logging with OpenTelemetry trace context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// Options configures logger setup.
type Options struct {
	// Service and Version are stamped on every record.
	Service string
	Version string
	// Format is "json" or "text"; empty defaults to "json".
	Format string
	// Level is the minimum level; empty defaults to "info".
	Level string
	// Writer defaults to os.Stderr when nil.
	Writer io.Writer
}

// traceHandler wraps a slog.Handler to add service identity and trace context.
type traceHandler struct {
	handler slog.Handler
	service string
	version string
	// bound is set once service identity has been attached to handler
	// ahead of a group, so Handle does not stamp it a second time.
	bound bool
}

// Handle adds service identity and trace context to the log record.
func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.bound {
		r.AddAttrs(
			slog.String("service", h.service),
			slog.String("version", h.version),
		)
	}

	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.HasTraceID() {
		r.AddAttrs(slog.String("trace_id", spanCtx.TraceID().String()))
	}
	if spanCtx.HasSpanID() {
		r.AddAttrs(slog.String("span_id", spanCtx.SpanID().String()))
	}

	//nolint:wrapcheck // Handler interface requires unwrapped error passthrough
	return h.handler.Handle(ctx, r)
}

// Enabled returns true if the level is enabled.
func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// WithAttrs returns a new handler with the given attributes.
func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{
		handler: h.handler.WithAttrs(attrs),
		service: h.service,
		version: h.version,
		bound:   h.bound,
	}
}

// WithGroup returns a new handler with the given group. Service identity
// is attached before the first group opens, so it stays top-level.
func (h *traceHandler) WithGroup(name string) slog.Handler {
	inner := h.handler
	if !h.bound {
		inner = inner.WithAttrs([]slog.Attr{
			slog.String("service", h.service),
			slog.String("version", h.version),
		})
	}
	return &traceHandler{
		handler: inner.WithGroup(name),
		service: h.service,
		version: h.version,
		bound:   true,
	}
}

// parseLevel maps a level name to a slog.Level, defaulting to info.
func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup creates a configured slog.Logger.
func Setup(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level: parseLevel(opts.Level),
	}

	var baseHandler slog.Handler
	if opts.Format == "text" {
		baseHandler = slog.NewTextHandler(w, handlerOpts)
	} else {
		baseHandler = slog.NewJSONHandler(w, handlerOpts)
	}

	return slog.New(&traceHandler{
		handler: baseHandler,
		service: opts.Service,
		version: opts.Version,
	})
}

// SetDefault sets up and installs the default logger.
func SetDefault(opts Options) {
	slog.SetDefault(Setup(opts))
}
