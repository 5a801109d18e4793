package websearch

import (
	"context"
	"log/slog"

	"reelcheck/internal/logging"
	"reelcheck/internal/ranking"
	"reelcheck/internal/verify"
)

// Searcher executes a search and returns result URLs. A provider returning
// zero results yields an empty slice, not an error.
type Searcher interface {
	Search(ctx context.Context, params SearchParams) ([]string, error)
}

// Retriever runs the full evidence path for one claim: optimize the query,
// search, fetch the result pages concurrently, rank by similarity.
type Retriever struct {
	optimizer *Optimizer
	searcher  Searcher
	fetcher   *Fetcher
	ranker    *ranking.Ranker
	logger    *slog.Logger
}

// NewRetriever wires the retrieval stages together.
func NewRetriever(optimizer *Optimizer, searcher Searcher, fetcher *Fetcher, ranker *ranking.Ranker, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Retriever{
		optimizer: optimizer,
		searcher:  searcher,
		fetcher:   fetcher,
		ranker:    ranker,
		logger:    logger,
	}
}

// Gather returns ranked evidence for a claim. An empty result means the web
// had nothing relevant; only provider or embedding failures are errors.
func (r *Retriever) Gather(ctx context.Context, claim string) ([]verify.EvidenceItem, error) {
	params := r.optimizer.Optimize(ctx, claim)
	r.logger.Debug("searching for evidence",
		logging.String("component", "websearch"),
		logging.String("params", params.String()))

	urls, err := r.searcher.Search(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		r.logger.Debug("search returned no results",
			logging.String("component", "websearch"),
			logging.String("query", params.Query))
		return []verify.EvidenceItem{}, nil
	}

	docs := r.fetcher.FetchAll(ctx, urls)
	r.logger.Debug("fetched result pages",
		logging.String("component", "websearch"),
		logging.Int("urls", len(urls)),
		logging.Int("documents", len(docs)))
	if len(docs) == 0 {
		return []verify.EvidenceItem{}, nil
	}

	return r.ranker.Rank(ctx, claim, docs)
}
