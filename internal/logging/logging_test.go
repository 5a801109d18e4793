package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelcheck/internal/services"
)

func newBufferLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)
	return slog.New(newConsoleHandler(&buf, levelVar)), &buf
}

func TestConsoleHandlerPullsComponentAndKeyForward(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	logger.Info("verification started",
		String(FieldComponent, "pipeline"),
		String(FieldWorkflowKey, "https://example.com/reel/1"),
		Int("claims", 3))

	line := buf.String()
	if !strings.Contains(line, "INF [pipeline] verification started key=https://example.com/reel/1") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "claims=3") {
		t.Fatalf("missing trailing attr in %q", line)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)

	logger.Info("quiet")
	logger.Warn("loud")

	if strings.Contains(buf.String(), "quiet") {
		t.Fatalf("info leaked past warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "WRN loud") {
		t.Fatalf("warn missing: %q", buf.String())
	}
}

func TestWithContextAddsCorrelationFields(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)

	ctx := services.WithWorkflowKey(context.Background(), "https://example.com/reel/2")
	ctx = services.WithStep(ctx, "media")
	ctx = services.WithClaimIndex(ctx, 1)

	WithContext(ctx, logger).Info("step failed")

	line := buf.String()
	for _, fragment := range []string{"key=https://example.com/reel/2", "step=media", "claim_index=1"} {
		if !strings.Contains(line, fragment) {
			t.Fatalf("missing %q in %q", fragment, line)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "reelcheck.log")
	logger, err := New(Options{Level: "debug", Format: "console", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("file sink works")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "DBG file sink works") {
		t.Fatalf("unexpected file content %q", data)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
