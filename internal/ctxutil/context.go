// Package ctxutil carries per-event identifiers on the context so that logs
// emitted anywhere in a processing chain can be correlated.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	userIDKey    contextKey = "ctxutil.userID"
	chatIDKey    contextKey = "ctxutil.chatID"
	requestIDKey contextKey = "ctxutil.requestID"
)

func value(ctx context.Context, key contextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// WithUserID records the sending user's LINE ID on the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID returns the user ID, or "" when the context carries none.
func GetUserID(ctx context.Context) string {
	return value(ctx, userIDKey)
}

// WithChatID records the conversation ID (user, group, or room) on the
// context.
func WithChatID(ctx context.Context, chatID string) context.Context {
	return context.WithValue(ctx, chatIDKey, chatID)
}

// GetChatID returns the chat ID, or "" when the context carries none.
func GetChatID(ctx context.Context) string {
	return value(ctx, chatIDKey)
}

// WithRequestID records the per-event request ID used for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the request ID and whether the context carries one.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// PreserveTracing copies the tracing identifiers onto a fresh background
// context. Event processing outlives the webhook HTTP request, so handlers
// must not keep the request context, but the logs still need its IDs.
func PreserveTracing(ctx context.Context) context.Context {
	out := context.Background()
	if userID := GetUserID(ctx); userID != "" {
		out = WithUserID(out, userID)
	}
	if chatID := GetChatID(ctx); chatID != "" {
		out = WithChatID(out, chatID)
	}
	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		out = WithRequestID(out, requestID)
	}
	return out
}
