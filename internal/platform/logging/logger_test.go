package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"":        LevelInfo,
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil {
			t.Fatalf("ParseLevel(%q) error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseLevel(%q): got=%s want=%s", raw, got, want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unsupported level")
	}
}

func TestLogger_KeyValueArgsBecomeFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core)).With("component", "collector")

	logger.Warn("source failed", "source", "espn_nba", "error", errors.New("timeout"), "dangling")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "collector" {
		t.Fatalf("missing With field: %v", fields)
	}
	if fields["source"] != "espn_nba" {
		t.Fatalf("missing source field: %v", fields)
	}
	if fields["error"] != "timeout" {
		t.Fatalf("expected error field to be rendered, got %v", fields["error"])
	}
	if _, ok := fields["dangling"]; !ok {
		t.Fatalf("expected dangling key to be kept: %v", fields)
	}
}

func TestLogger_ContextWithoutSpanAddsNoTraceFields(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	FromZap(zap.New(core)).InfoContext(context.Background(), "run finished", "total", 3)

	fields := logs.All()[0].ContextMap()
	if _, ok := fields["trace_id"]; ok {
		t.Fatalf("unexpected trace_id without span: %v", fields)
	}
}

func TestNewConsole_WritesToGivenWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewConsole(LevelInfo, &buf)
	logger.Debug("hidden")
	logger.Info("fetching", "source", "cbs_nba")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry should be filtered: %q", out)
	}
	if !strings.Contains(out, "fetching") || !strings.Contains(out, "cbs_nba") {
		t.Fatalf("unexpected console output: %q", out)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	logger.Info("no panic")
	if logger.With("k", "v") == nil {
		t.Fatalf("With on nil logger must return a usable logger")
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]Format{"": FormatConsole, "Console": FormatConsole, " json ": FormatJSON} {
		got, err := ParseFormat(raw)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %s, %v", raw, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := New(FormatJSON, LevelInfo, &buf)
	logger.Info("injury source fetched", "source", "espn_nba", "count", 12)

	out := buf.String()
	if !strings.Contains(out, `"msg":"injury source fetched"`) || !strings.Contains(out, `"count":12`) {
		t.Fatalf("unexpected json output: %q", out)
	}
	if err := logger.Sync(); err != nil {
		t.Fatalf("sync: %v", err)
	}
}

func TestLogger_ZapFieldPassThrough(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	FromZap(zap.New(core)).Info("state saved", zap.Int("entries", 4), "backend", "file")

	fields := logs.All()[0].ContextMap()
	if fields["entries"] != int64(4) || fields["backend"] != "file" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}
