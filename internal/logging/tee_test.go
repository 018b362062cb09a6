package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type failingHandler struct{ err error }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }

func (h failingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h failingHandler) WithGroup(string) slog.Handler { return h }

func TestTeeHandlerCollapsesMembers(t *testing.T) {
	if h := TeeHandler(nil, nil); h != slog.DiscardHandler {
		t.Fatalf("expected discard handler for no members, got %T", h)
	}
	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if h := TeeHandler(nil, inner, nil); h != slog.Handler(inner) {
		t.Fatalf("expected single member returned unwrapped, got %T", h)
	}
}

func TestTeeHandlerRoutesByLevel(t *testing.T) {
	var console, file bytes.Buffer
	logger := slog.New(TeeHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	))

	logger.Debug("attribution decided", "camera_id", "S1")
	logger.Info("analysis completed", "cameras", 2)

	if strings.Contains(console.String(), "attribution decided") {
		t.Fatalf("info handler received debug record: %q", console.String())
	}
	if !strings.Contains(console.String(), "analysis completed") {
		t.Fatalf("info handler missing info record: %q", console.String())
	}
	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected both records in debug handler, got %d lines", len(lines))
	}
}

func TestTeeHandlerEnabledWhenAnyMemberIs(t *testing.T) {
	h := TeeHandler(
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected info disabled when every member is warn or above")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("expected warn enabled")
	}
}

func TestTeeHandlerPropagatesAttrsAndGroups(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(TeeHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil)))
	logger.With("run_id", "r-1").WithGroup("probe").Info("probed", "width", 3840)

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if entry["run_id"] != "r-1" {
			t.Fatalf("%s: run_id missing: %v", name, entry)
		}
		group, ok := entry["probe"].(map[string]any)
		if !ok || group["width"] != float64(3840) {
			t.Fatalf("%s: grouped attr missing: %v", name, entry)
		}
	}
}

func TestTeeHandlerJoinsErrors(t *testing.T) {
	first := errors.New("disk full")
	second := errors.New("pipe closed")
	var buf bytes.Buffer
	h := TeeHandler(failingHandler{first}, slog.NewJSONHandler(&buf, nil), failingHandler{second})

	err := h.Handle(context.Background(), slog.NewRecord(time.Time{}, slog.LevelInfo, "x", 0))
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("expected both member errors, got %v", err)
	}
	if !strings.Contains(buf.String(), `"msg":"x"`) {
		t.Fatalf("healthy member skipped after failure: %q", buf.String())
	}
}

func TestTeeHandlerConsoleAndJSON(t *testing.T) {
	var console, file bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(TeeHandler(
		newConsoleHandler(&console, lvl, false),
		newJSONHandler(&file, lvl, false),
	))

	NewComponentLogger(logger, "analysis").Info("analysis completed", String("root", "/footage"), Int("cameras", 3))

	if !strings.Contains(console.String(), "[analysis]") || !strings.Contains(console.String(), "Cameras: 3") {
		t.Fatalf("console output unexpected: %q", console.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(file.Bytes(), &entry); err != nil {
		t.Fatalf("decode json line: %v", err)
	}
	if entry[FieldComponent] != "analysis" || entry["cameras"] != float64(3) {
		t.Fatalf("json entry unexpected: %v", entry)
	}
}
