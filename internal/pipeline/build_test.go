package pipeline

import (
	"testing"

	"reelcheck/internal/logging"
	"reelcheck/internal/testsupport"
)

func TestBuildWiresProductionCollaborators(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Retrieval.Region = "pt-BR"
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	orch, store, err := Build(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer store.Close()

	if orch == nil {
		t.Fatal("expected orchestrator")
	}
	if orch.deps.Retriever == nil || orch.deps.Resolver == nil || orch.deps.Synthesizer == nil {
		t.Fatal("collaborators not wired")
	}
}
