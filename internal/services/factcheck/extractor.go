package factcheck

import (
	"context"
	"strings"

	"reelcheck/internal/services"
	"reelcheck/internal/verify"
)

// Completer is the slice of the LLM client the fact-checking collaborators
// need.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, out any) error
}

const extractionSystemPrompt = `You are an expert fact-checker. Extract verifiable claims from a short video transcription for authenticity verification.

TASK: Extract 2-5 SPECIFIC, EVIDENCE-BACKED claims that can be fact-checked with concrete sources.

CRITICAL REQUIREMENTS:
- Claims must include SPECIFIC details (names, dates, numbers, locations, companies)
- Avoid vague terms like "experts say", "studies show", "some people believe"
- Claims must be verifiable through official sources, databases, or documented records
- NO subjective interpretations or theoretical statements

EXTRACT ONLY:
- Specific product specifications with exact numbers or features
- Named company announcements with dates and details
- Exact statistics with sources or studies mentioned
- Specific news events with names, dates, locations
- Measurable health or medical data with study names or institutions
- Financial data with exact figures and timeframes
- Named individuals making specific statements

NEVER EXTRACT:
- "Experts think..." or "Studies suggest..." without naming the expert or study
- Theoretical explanations without concrete evidence
- Vague health benefits without specific data
- Opinions disguised as facts
- Unattributed quotes or claims

CATEGORIES: health_medical, political_news, celebrity_gossip, financial_market, scientific_fact, historical_event, product_review, social_issue, technology_tech, sports_entertainment, weather_natural, business_economy, education_academic, legal_regulatory, cultural_trend.

Respond with a JSON object: {"claims": [{"claim": "...", "category": "..."}]}.
If nothing in the transcription can be verified through official sources, return {"claims": []}.`

// Extractor pulls verifiable claims out of a transcript.
type Extractor struct {
	completer Completer
}

// NewExtractor builds a claim extractor on top of the given completer.
func NewExtractor(completer Completer) *Extractor {
	return &Extractor{completer: completer}
}

type extractionResult struct {
	Claims []struct {
		Claim    string `json:"claim"`
		Category string `json:"category"`
	} `json:"claims"`
}

// Extract returns the verifiable claims found in the transcript, in model
// order. An empty list is a valid outcome, not an error.
func (e *Extractor) Extract(ctx context.Context, transcription string) ([]verify.Claim, error) {
	transcription = strings.TrimSpace(transcription)
	if transcription == "" {
		return nil, services.Wrap(services.ErrTranscription, "claims", "extract", "transcription is empty", nil)
	}

	var result extractionResult
	prompt := "TRANSCRIPTION: " + transcription
	if err := e.completer.CompleteJSON(ctx, extractionSystemPrompt, prompt, &result); err != nil {
		return nil, services.Wrap(services.ErrTransient, "claims", "extract", "claim extraction failed", err)
	}

	claims := make([]verify.Claim, 0, len(result.Claims))
	for _, raw := range result.Claims {
		text := strings.TrimSpace(raw.Claim)
		if text == "" {
			continue
		}
		claims = append(claims, verify.Claim{
			Text:     text,
			Category: verify.ParseCategory(raw.Category),
		})
	}
	return claims, nil
}
