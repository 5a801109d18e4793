package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"reelcheck/internal/config"
	"reelcheck/internal/stepcache"
	"reelcheck/internal/verify"
)

// LinkResolver turns a post URL into a direct video link.
type LinkResolver interface {
	Resolve(ctx context.Context, postURL string) (verify.LinkInfo, error)
}

// MediaFetcher downloads the video and extracts its audio.
type MediaFetcher interface {
	Fetch(ctx context.Context, link verify.LinkInfo) (verify.MediaInfo, error)
}

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// ClaimExtractor pulls verifiable claims from a transcript. An empty result
// is a valid outcome.
type ClaimExtractor interface {
	Extract(ctx context.Context, transcription string) ([]verify.Claim, error)
}

// EvidenceRetriever gathers ranked evidence for one claim.
type EvidenceRetriever interface {
	Gather(ctx context.Context, claim string) ([]verify.EvidenceItem, error)
}

// ClaimVerifier assesses one claim against its evidence.
type ClaimVerifier interface {
	Verify(ctx context.Context, claim verify.Claim, evidence []verify.EvidenceItem) (string, error)
}

// VerdictSynthesizer produces the final narrative from all findings.
type VerdictSynthesizer interface {
	Synthesize(ctx context.Context, findings []verify.ClaimFinding) (string, error)
}

// Deps bundles everything the orchestrator needs.
type Deps struct {
	Config      *config.Config
	Logger      *slog.Logger
	Store       stepcache.Store
	Resolver    LinkResolver
	Media       MediaFetcher
	Transcriber Transcriber
	Extractor   ClaimExtractor
	Retriever   EvidenceRetriever
	Verifier    ClaimVerifier
	Synthesizer VerdictSynthesizer
}

func (d Deps) validate() error {
	switch {
	case d.Config == nil:
		return errors.New("pipeline: config is required")
	case d.Store == nil:
		return errors.New("pipeline: step cache store is required")
	case d.Resolver == nil:
		return errors.New("pipeline: link resolver is required")
	case d.Media == nil:
		return errors.New("pipeline: media fetcher is required")
	case d.Transcriber == nil:
		return errors.New("pipeline: transcriber is required")
	case d.Extractor == nil:
		return errors.New("pipeline: claim extractor is required")
	case d.Retriever == nil:
		return errors.New("pipeline: evidence retriever is required")
	case d.Verifier == nil:
		return errors.New("pipeline: claim verifier is required")
	case d.Synthesizer == nil:
		return errors.New("pipeline: verdict synthesizer is required")
	}
	return nil
}
