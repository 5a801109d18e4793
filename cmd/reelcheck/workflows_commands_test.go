package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelcheck/internal/config"
	"reelcheck/internal/stepcache"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("[paths]\ndata_dir = %q\nmedia_dir = %q\nlog_dir = %q\n",
		filepath.Join(dir, "data"),
		filepath.Join(dir, "media"),
		filepath.Join(dir, "logs"))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func seedWorkflow(t *testing.T, configPath, key string) {
	t.Helper()
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	store, err := stepcache.Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	result, err := stepcache.OK(map[string]string{"url": key})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.PutStep(context.Background(), key, stepcache.StepLink, result); err != nil {
		t.Fatal(err)
	}
}

func TestWorkflowsListShowsSeededRun(t *testing.T) {
	configPath := writeTestConfig(t)
	key := "https://www.instagram.com/reel/abc123/"
	seedWorkflow(t, configPath, key)

	out, err := runCommand(t, "--config", configPath, "workflows", "list")
	if err != nil {
		t.Fatalf("workflows list failed: %v", err)
	}
	if !strings.Contains(out, key) {
		t.Fatalf("listing missing workflow key:\n%s", out)
	}
	if !strings.Contains(out, stepcache.StepLink) {
		t.Fatalf("listing missing progress column:\n%s", out)
	}
}

func TestWorkflowsClearRemovesRun(t *testing.T) {
	configPath := writeTestConfig(t)
	key := "https://www.instagram.com/reel/abc123/"
	seedWorkflow(t, configPath, key)

	if _, err := runCommand(t, "--config", configPath, "workflows", "clear", key); err != nil {
		t.Fatalf("workflows clear failed: %v", err)
	}

	out, err := runCommand(t, "--config", configPath, "workflows", "list")
	if err != nil {
		t.Fatalf("workflows list failed: %v", err)
	}
	if !strings.Contains(out, "No cached workflows") {
		t.Fatalf("expected empty listing, got:\n%s", out)
	}
}

func TestWorkflowStageOrdersSteps(t *testing.T) {
	record := &stepcache.Record{Steps: map[string]stepcache.StepResult{}}
	if got := workflowStage(record); got != "empty" {
		t.Fatalf("empty record: got %q", got)
	}

	ok, err := stepcache.OK("x")
	if err != nil {
		t.Fatal(err)
	}
	record.Steps[stepcache.StepLink] = ok
	if got := workflowStage(record); got != stepcache.StepLink {
		t.Fatalf("link only: got %q", got)
	}
	record.Steps[stepcache.StepClaims] = ok
	if got := workflowStage(record); got != stepcache.StepClaims {
		t.Fatalf("claims present: got %q", got)
	}
}
