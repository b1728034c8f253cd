// Package logger provides structured logging for the bot.
package logger

import (
	"context"
	"log/slog"

	"github.com/freshLiver/SuperStudent/internal/ctxutil"
)

// ContextHandler decorates another slog.Handler, copying the tracing IDs
// from the context onto every record so call sites never pass them by hand.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler wraps handler with context enrichment.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds user_id, chat_id, and request_id attributes from ctx before
// delegating. Context cancellation does not affect record delivery.
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, 3)
	if userID := ctxutil.GetUserID(ctx); userID != "" {
		attrs = append(attrs, slog.String("user_id", userID))
	}
	if chatID := ctxutil.GetChatID(ctx); chatID != "" {
		attrs = append(attrs, slog.String("chat_id", chatID))
	}
	if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}
	r.AddAttrs(attrs...)

	return h.handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}
