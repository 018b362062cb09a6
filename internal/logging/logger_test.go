package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"camtrace/internal/config"
	"camtrace/internal/logging"
	"camtrace/internal/services"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("analysis started", logging.String("root", "/footage"))

	content, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, logging.LogFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &entry); err != nil {
		t.Fatalf("log file is not JSON lines: %v (%q)", err, content)
	}
	if entry["msg"] != "analysis started" || entry["root"] != "/footage" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
	if entry["level"] != "info" {
		t.Fatalf("unexpected level: %v", entry["level"])
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerShowsPhaseAndFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "sidecar").Warn("descriptor skipped",
		logging.String(logging.FieldPhase, "SIDECAR_SCAN"),
		logging.String(logging.FieldFile, "/footage/A/C0001M01.XML"),
		logging.String(logging.FieldEventType, "descriptor_unparsable"),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{"WARN", "[sidecar]", "SIDECAR_SCAN · C0001M01.XML", "descriptor skipped", "Event: descriptor_unparsable"} {
		if !strings.Contains(line, want) {
			t.Fatalf("console output missing %q: %q", want, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "invalid", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("visible")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), "hidden") || !strings.Contains(string(content), "visible") {
		t.Fatalf("expected info level filtering, got %q", content)
	}
}

type captureHandler struct {
	records []slog.Record
	attrs   []slog.Attr
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &captureHandler{attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...)}
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func TestContextFieldsFromServices(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithPhase(ctx, "GROUPING")
	ctx = services.WithFile(ctx, "/footage/clip.mp4")

	fields := logging.ContextFields(ctx)
	got := map[string]string{}
	for _, f := range fields {
		got[f.Key] = f.Value.String()
	}
	if got[logging.FieldRunID] != "run-123" {
		t.Fatalf("run_id = %q", got[logging.FieldRunID])
	}
	if got[logging.FieldPhase] != "GROUPING" {
		t.Fatalf("phase = %q", got[logging.FieldPhase])
	}
	if got[logging.FieldFile] != "/footage/clip.mp4" {
		t.Fatalf("file = %q", got[logging.FieldFile])
	}

	base := &captureHandler{}
	derived := logging.WithContext(ctx, slog.New(base))
	handler, ok := derived.Handler().(*captureHandler)
	if !ok {
		t.Fatalf("unexpected handler type %T", derived.Handler())
	}
	if len(handler.attrs) != 3 {
		t.Fatalf("expected 3 context attrs, got %d", len(handler.attrs))
	}
}

func TestWithContextWithoutFieldsReturnsLogger(t *testing.T) {
	logger := slog.New(&captureHandler{})
	if logging.WithContext(context.Background(), logger) != logger {
		t.Fatal("expected the same logger when context carries no fields")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	h := &captureHandler{}
	logging.WarnWithContext(slog.New(h), "subtree skipped", "subtree_skipped", logging.String(logging.FieldImpact, "files below are not analyzed"))

	if len(h.records) != 1 {
		t.Fatalf("expected one record, got %d", len(h.records))
	}
	got := map[string]string{}
	h.records[0].Attrs(func(a slog.Attr) bool {
		got[a.Key] = a.Value.String()
		return true
	})
	if got[logging.FieldEventType] != "subtree_skipped" {
		t.Fatalf("event_type = %q", got[logging.FieldEventType])
	}
	if got[logging.FieldErrorHint] == "" {
		t.Fatal("expected default error_hint")
	}
	if got[logging.FieldImpact] != "files below are not analyzed" {
		t.Fatalf("impact overwritten: %q", got[logging.FieldImpact])
	}
}
