package websearch

import (
	"context"
	"log/slog"
	"strings"

	"reelcheck/internal/logging"
)

// Assistant produces a structured completion for a prompt. Satisfied by the
// LLM client; the optimizer works without one.
type Assistant interface {
	CompleteJSON(ctx context.Context, system, prompt string, out any) error
}

// Optimizer turns a raw claim into validated search parameters. When an
// assistant is configured it proposes the parameters; any assistant failure
// falls back to keyword heuristics. Optimization never fails.
type Optimizer struct {
	assistant  Assistant
	region     string
	maxResults int
	logger     *slog.Logger
}

// NewOptimizer builds an optimizer. assistant may be nil for pure heuristic
// operation. region is the default search region, maxResults the default
// result budget.
func NewOptimizer(assistant Assistant, region string, maxResults int, logger *slog.Logger) *Optimizer {
	if !validRegions[region] {
		region = DefaultRegion
	}
	if maxResults < 1 || maxResults > 200 {
		maxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Optimizer{assistant: assistant, region: region, maxResults: maxResults, logger: logger}
}

const optimizerSystemPrompt = `You are an expert search query optimizer for a web search provider.
Analyze the user query and return a JSON object with optimized parameters.

Fields:
- "query": the optimized search query. Remove filler words, quote exact phrases, add recency keywords for current events.
- "region": country-language pair such as "us-en", "uk-en", "de-de", or "wt-wt" for global topics.
- "safesearch": "on", "moderate", or "off". Use "off" for research or technical queries.
- "timelimit": "d", "w", "m", "y", or null. Use "d"/"w" for breaking news, null for historical facts.
- "max_results": integer 1-200. Higher for research, lower for simple facts.
- "backend": "auto" for most cases, "wikipedia" for factual or educational queries.

Return ONLY the JSON object, no additional text.`

// Optimize always returns usable parameters for the given claim text.
func (o *Optimizer) Optimize(ctx context.Context, raw string) SearchParams {
	raw = strings.TrimSpace(raw)
	if o.assistant != nil {
		var proposed SearchParams
		err := o.assistant.CompleteJSON(ctx, optimizerSystemPrompt, "User Query: "+raw, &proposed)
		if err == nil && strings.TrimSpace(proposed.Query) != "" {
			params := proposed.Sanitize()
			o.logger.Debug("query optimized",
				logging.String("component", "websearch"),
				logging.String("query", params.Query),
				logging.String("params", params.String()))
			return params
		}
		o.logger.Warn("query optimization failed, using heuristics",
			logging.String("component", "websearch"),
			logging.Error(err))
	}
	return o.heuristic(raw)
}

var (
	recencyKeywords  = []string{"news", "latest", "breaking", "today", "current", "2025", "2026"}
	researchKeywords = []string{"research", "study", "academic", "technical", "analysis"}
)

// heuristic applies keyword cues: temporal words narrow the recency window,
// research words relax safe-search and raise the result budget.
func (o *Optimizer) heuristic(raw string) SearchParams {
	lower := strings.ToLower(raw)

	params := SearchParams{
		Query:      raw,
		Region:     o.region,
		SafeSearch: SafeSearchModerate,
		MaxResults: o.maxResults,
		Backend:    DefaultBackend,
	}
	if containsAny(lower, recencyKeywords) {
		params.TimeLimit = "w"
	}
	if containsAny(lower, researchKeywords) {
		params.SafeSearch = SafeSearchOff
		params.MaxResults = o.maxResults * 2
	}
	return params.Sanitize()
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
