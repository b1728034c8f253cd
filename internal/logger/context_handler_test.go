package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/freshLiver/SuperStudent/internal/ctxutil"
)

func newCaptureHandler(level slog.Level) (*ContextHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
	return NewContextHandler(base), &buf
}

func TestContextHandler_Handle(t *testing.T) {
	tests := []struct {
		name     string
		ctx      func(context.Context) context.Context
		want     map[string]string
		excluded []string
	}{
		{
			name: "enriches with every tracing value",
			ctx: func(ctx context.Context) context.Context {
				ctx = ctxutil.WithUserID(ctx, "U12345")
				ctx = ctxutil.WithChatID(ctx, "C67890")
				return ctxutil.WithRequestID(ctx, "req-abc-123")
			},
			want: map[string]string{
				"user_id":    "U12345",
				"chat_id":    "C67890",
				"request_id": "req-abc-123",
			},
		},
		{
			name: "partial context yields partial attributes",
			ctx: func(ctx context.Context) context.Context {
				return ctxutil.WithUserID(ctx, "U99999")
			},
			want:     map[string]string{"user_id": "U99999"},
			excluded: []string{"chat_id", "request_id"},
		},
		{
			name:     "bare context adds nothing",
			ctx:      func(ctx context.Context) context.Context { return ctx },
			excluded: []string{"user_id", "chat_id", "request_id"},
		},
		{
			name: "empty string values are skipped",
			ctx: func(ctx context.Context) context.Context {
				ctx = ctxutil.WithUserID(ctx, "")
				return ctxutil.WithChatID(ctx, "C12345")
			},
			want:     map[string]string{"chat_id": "C12345"},
			excluded: []string{"user_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, buf := newCaptureHandler(slog.LevelDebug)
			slog.New(handler).InfoContext(tt.ctx(context.Background()), "test message")

			output := buf.String()
			for key, value := range tt.want {
				if !strings.Contains(output, `"`+key+`":"`+value+`"`) {
					t.Errorf("Missing %s=%s in output: %s", key, value, output)
				}
			}
			for _, key := range tt.excluded {
				if strings.Contains(output, `"`+key+`"`) {
					t.Errorf("Unexpected %s in output: %s", key, output)
				}
			}
		})
	}
}

func TestContextHandler_EnabledDelegates(t *testing.T) {
	handler, _ := newCaptureHandler(slog.LevelInfo)
	ctx := context.Background()

	if handler.Enabled(ctx, slog.LevelDebug) {
		t.Error("debug should be below the wrapped handler's threshold")
	}
	if !handler.Enabled(ctx, slog.LevelInfo) || !handler.Enabled(ctx, slog.LevelError) {
		t.Error("info and error should pass the wrapped handler's threshold")
	}
}

func TestContextHandler_WithAttrsAndGroup(t *testing.T) {
	handler, buf := newCaptureHandler(slog.LevelDebug)

	derived := handler.WithAttrs([]slog.Attr{slog.String("module", "webhook")}).
		WithGroup("event")
	slog.New(derived).Info("test message", "type", "message")

	output := buf.String()
	if !strings.Contains(output, `"module":"webhook"`) {
		t.Errorf("WithAttrs attribute missing from output: %s", output)
	}
	if !strings.Contains(output, `"event":{`) || !strings.Contains(output, `"type":"message"`) {
		t.Errorf("WithGroup nesting missing from output: %s", output)
	}
}

func TestContextHandler_ContextAndExplicitAttrs(t *testing.T) {
	handler, buf := newCaptureHandler(slog.LevelInfo)

	ctx := ctxutil.WithRequestID(ctxutil.WithUserID(context.Background(), "U11111"), "req-test-123")
	slog.New(handler).InfoContext(ctx, "processing event",
		slog.String("service", "search_news"),
		slog.Int("keywords", 2),
	)

	output := buf.String()
	for _, want := range []string{
		`"user_id":"U11111"`,
		`"request_id":"req-test-123"`,
		`"service":"search_news"`,
		`"keywords":2`,
		`"msg":"processing event"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Missing %s in output: %s", want, output)
		}
	}
}
