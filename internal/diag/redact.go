// Package diag provides logging helpers shared by the server and CLI.
package diag

import (
	"context"
	"log/slog"
	"strings"
)

// Redacted replaces the value of a sensitive attribute.
const Redacted = "[REDACTED]"

// DefaultSensitiveKeys are the attribute keys redacted when none are given.
var DefaultSensitiveKeys = []string{"api_key", "apikey", "authorization", "token", "password", "secret"}

// RedactingHandler wraps a slog.Handler and replaces the value of any
// attribute whose key matches a sensitive key (case-insensitive), including
// attributes nested in groups.
type RedactingHandler struct {
	next slog.Handler
	keys map[string]struct{}
}

// NewRedactingHandler wraps next. With no keys, DefaultSensitiveKeys is used.
func NewRedactingHandler(next slog.Handler, keys ...string) *RedactingHandler {
	if len(keys) == 0 {
		keys = DefaultSensitiveKeys
	}
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = struct{}{}
	}
	return &RedactingHandler{next: next, keys: set}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redact(a)
	}
	return &RedactingHandler{next: h.next.WithAttrs(redacted), keys: h.keys}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{next: h.next.WithGroup(name), keys: h.keys}
}

func (h *RedactingHandler) redact(a slog.Attr) slog.Attr {
	if _, ok := h.keys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		inner := make([]any, len(group))
		for i, g := range group {
			inner[i] = h.redact(g)
		}
		return slog.Group(a.Key, inner...)
	}
	return a
}
