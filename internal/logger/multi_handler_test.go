package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestMultiHandler_FansOut(t *testing.T) {
	t.Parallel()

	var stdout, file bytes.Buffer
	mh := NewMultiHandler(
		slog.NewJSONHandler(&stdout, nil),
		slog.NewJSONHandler(&file, nil),
	)

	slog.New(mh).Info("event received", "intent", "SearchNews")

	for name, buf := range map[string]*bytes.Buffer{"first": &stdout, "second": &file} {
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("%s handler output is not JSON: %v", name, err)
		}
		if entry["msg"] != "event received" {
			t.Errorf("%s handler msg = %v", name, entry["msg"])
		}
		if entry["intent"] != "SearchNews" {
			t.Errorf("%s handler intent = %v", name, entry["intent"])
		}
	}
}

func TestMultiHandler_DropsNilHandlers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mh := NewMultiHandler(nil, slog.NewJSONHandler(&buf, nil), nil)

	if got := len(mh.handlers); got != 1 {
		t.Errorf("kept %d handlers, want 1", got)
	}
}

func TestMultiHandler_EnabledWhenAnyHandlerIs(t *testing.T) {
	t.Parallel()

	var debugBuf, errorBuf bytes.Buffer
	mh := NewMultiHandler(
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if !mh.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = false, want true while a debug handler is attached", level)
		}
	}
}

func TestMultiHandler_PerHandlerLevels(t *testing.T) {
	t.Parallel()

	var debugBuf, errorBuf bytes.Buffer
	mh := NewMultiHandler(
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&errorBuf, &slog.HandlerOptions{Level: slog.LevelError}),
	)

	slog.New(mh).Info("activity created")

	if debugBuf.Len() == 0 {
		t.Error("debug handler dropped an info record")
	}
	if errorBuf.Len() != 0 {
		t.Errorf("error handler wrote an info record: %s", errorBuf.String())
	}
}

func TestMultiHandler_WithAttrsAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mh := NewMultiHandler(slog.NewJSONHandler(&buf, nil))

	h := mh.WithGroup("event").WithAttrs([]slog.Attr{slog.String("type", "message")})
	slog.New(h).Info("handled")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	event, ok := entry["event"].(map[string]any)
	if !ok {
		t.Fatalf("missing event group: %v", entry)
	}
	if event["type"] != "message" {
		t.Errorf("event.type = %v, want message", event["type"])
	}
}

type failingHandler struct {
	slog.Handler
	err error
}

func (h *failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *failingHandler) Handle(context.Context, slog.Record) error { return h.err }

func TestMultiHandler_OneFailureDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mh := NewMultiHandler(
		&failingHandler{err: errors.New("disk full")},
		slog.NewJSONHandler(&buf, nil),
	)

	var rec slog.Record
	rec.Message = "snapshot saved"
	err := mh.Handle(context.Background(), rec)

	if buf.Len() == 0 {
		t.Error("healthy handler did not receive the record")
	}
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("Handle error = %v, want the failing handler's error", err)
	}
}

func TestMultiHandler_ConcurrentWrites(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var buf bytes.Buffer
	mh := NewMultiHandler(slog.NewJSONHandler(&mutexWriter{mu: &mu, buf: &buf}, nil))
	log := slog.New(mh)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			log.Info("webhook event", "seq", i)
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if got := bytes.Count(buf.Bytes(), []byte("webhook event")); got != 64 {
		t.Errorf("wrote %d records, want 64", got)
	}
}

type mutexWriter struct {
	mu  *sync.Mutex
	buf *bytes.Buffer
}

func (w *mutexWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}
