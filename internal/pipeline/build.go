package pipeline

import (
	"log/slog"
	"time"

	"reelcheck/internal/config"
	"reelcheck/internal/ranking"
	"reelcheck/internal/services/embedding"
	"reelcheck/internal/services/factcheck"
	"reelcheck/internal/services/llm"
	"reelcheck/internal/services/media"
	"reelcheck/internal/services/resolver"
	"reelcheck/internal/services/searxng"
	"reelcheck/internal/services/whisper"
	"reelcheck/internal/stepcache"
	"reelcheck/internal/websearch"
)

// Build wires the production collaborators from configuration and returns a
// ready orchestrator plus the step cache store backing it. The caller owns
// closing the store.
func Build(cfg *config.Config, logger *slog.Logger) (*Orchestrator, stepcache.Store, error) {
	store, err := stepcache.Open(cfg)
	if err != nil {
		return nil, nil, err
	}

	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Title:          "reelcheck",
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	embedder := embedding.NewClient(embedding.Config{
		APIKey:         cfg.Embeddings.APIKey,
		BaseURL:        cfg.Embeddings.BaseURL,
		Model:          cfg.Embeddings.Model,
		TimeoutSeconds: cfg.Embeddings.TimeoutSeconds,
	})

	var assistant websearch.Assistant
	if cfg.Retrieval.LLMOptimizer {
		assistant = llmClient
	}
	retriever := websearch.NewRetriever(
		websearch.NewOptimizer(assistant, websearch.RegionFromLocale(cfg.Retrieval.Region), cfg.Retrieval.MaxResults, logger),
		searxng.NewClient(cfg.Retrieval.SearxURL),
		websearch.NewFetcher(cfg.Retrieval.FetchWorkers, time.Duration(cfg.Retrieval.FetchTimeout)*time.Second, logger),
		ranking.NewRanker(embedder, cfg.Retrieval.TopK, cfg.Retrieval.SnippetLength),
		logger,
	)

	orchestrator, err := New(Deps{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Resolver:    resolver.New(),
		Media:       media.NewDownloader(cfg.Paths.MediaDir, cfg.Media.FFmpegBinary, cfg.Media.DownloadTimeout),
		Transcriber: whisper.NewClient(cfg.Transcriber.URL, cfg.Transcriber.TimeoutSeconds),
		Extractor:   factcheck.NewExtractor(llmClient),
		Retriever:   retriever,
		Verifier:    factcheck.NewVerifier(llmClient),
		Synthesizer: factcheck.NewSynthesizer(llmClient),
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return orchestrator, store, nil
}
