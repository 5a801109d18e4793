package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"reelcheck/internal/config"
	"reelcheck/internal/logging"
	"reelcheck/internal/progress"
	"reelcheck/internal/services"
	"reelcheck/internal/stepcache"
	"reelcheck/internal/verify"
)

// Orchestrator owns workflow state transitions. All record mutation funnels
// through it; the step cache stays a passive store.
type Orchestrator struct {
	deps   Deps
	logger *slog.Logger

	mu       sync.Mutex
	keyLocks map[string]*keyLock
}

// keyLock serializes runs for one workflow key. Entries are refcounted and
// dropped once the last holder unlocks, so the map stays bounded by the
// number of concurrently running keys.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// New constructs an orchestrator after validating its dependencies.
func New(deps Deps) (*Orchestrator, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		deps:     deps,
		logger:   logger.With(logging.String(logging.FieldComponent, "pipeline")),
		keyLocks: make(map[string]*keyLock),
	}, nil
}

// Run executes the verification workflow for a post URL. Domain failures
// short-circuit into a failure report; the returned error is reserved for
// context cancellation and invalid input.
func (o *Orchestrator) Run(ctx context.Context, postURL string, reporter progress.Reporter) (*verify.Report, error) {
	key := strings.TrimSpace(postURL)
	if key == "" {
		return nil, services.Wrap(services.ErrValidation, "init", "run", "post url is required", nil)
	}
	if reporter == nil {
		reporter = progress.Noop{}
	}

	unlock := o.lockKey(key)
	defer unlock()

	ctx = services.WithWorkflowKey(ctx, key)
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("verification started")

	record, err := o.deps.Store.Get(ctx, key)
	if err != nil {
		// A cache read failure degrades to recomputing everything.
		logger.Warn("step cache read failed, recomputing all steps", logging.Error(err))
		record = &stepcache.Record{Key: key, Steps: map[string]stepcache.StepResult{}}
	}

	link, report := o.resolveLink(ctx, key, record, reporter, logger)
	if report != nil {
		return report, ctx.Err()
	}

	media, report := o.fetchMedia(ctx, key, record, link, reporter, logger)
	if report != nil {
		return report, ctx.Err()
	}

	transcript, report := o.transcribe(ctx, key, record, link, media, reporter, logger)
	if report != nil {
		return report, ctx.Err()
	}

	claims, report := o.extractClaims(ctx, key, record, transcript, reporter, logger)
	if report != nil {
		return report, ctx.Err()
	}

	findings := o.checkClaims(ctx, key, record, claims, reporter, logger)

	anyEvidence := false
	for _, finding := range findings {
		if len(finding.Sources) > 0 {
			anyEvidence = true
			break
		}
	}
	if !anyEvidence {
		detail := services.Details(services.ErrNoEvidence)
		progress.Errorf(ctx, reporter, "no relevant content found for any claim")
		logger.Info("verification failed", logging.String("reason", detail.Code))
		return verify.FailureReport(services.ErrNoEvidence.Error(), detail.Code), ctx.Err()
	}

	progress.Processing(ctx, reporter, "synthesizing verdict")
	verdict, err := o.deps.Synthesizer.Synthesize(ctx, findings)
	if err != nil {
		detail := services.Details(err)
		progress.Errorf(ctx, reporter, "verdict synthesis failed: %s", detail.Message)
		logger.Error("verdict synthesis failed", logging.Error(err))
		report := verify.FailureReport(detail.Message, detail.Code)
		report.Claims = findings
		return report, ctx.Err()
	}

	progress.Completed(ctx, reporter, "verification complete")
	logger.Info("verification complete", logging.Int("claims", len(findings)))
	return &verify.Report{Success: true, Verdict: verdict, Claims: findings}, ctx.Err()
}

func (o *Orchestrator) lockKey(key string) func() {
	o.mu.Lock()
	lock, ok := o.keyLocks[key]
	if !ok {
		lock = &keyLock{}
		o.keyLocks[key] = lock
	}
	lock.refs++
	o.mu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		o.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(o.keyLocks, key)
		}
		o.mu.Unlock()
	}
}

func (o *Orchestrator) resolveLink(ctx context.Context, key string, record *stepcache.Record, reporter progress.Reporter, logger *slog.Logger) (verify.LinkInfo, *verify.Report) {
	var link verify.LinkInfo

	if result, ok := record.Step(stepcache.StepLink); ok && result.IsOK() {
		if err := result.Decode(&link); err == nil {
			progress.Success(ctx, reporter, "link resolved (cached)")
			return link, nil
		}
		logger.Warn("cached link payload unreadable, re-resolving")
	}

	progress.Processing(ctx, reporter, "resolving post link")
	link, err := o.deps.Resolver.Resolve(ctx, key)
	if err != nil {
		return link, o.failStep(ctx, key, stepcache.StepLink, err, reporter, logger)
	}
	o.putOK(ctx, key, stepcache.StepLink, link, logger)
	progress.Success(ctx, reporter, "link resolved")
	return link, nil
}

func (o *Orchestrator) fetchMedia(ctx context.Context, key string, record *stepcache.Record, link verify.LinkInfo, reporter progress.Reporter, logger *slog.Logger) (verify.MediaInfo, *verify.Report) {
	var media verify.MediaInfo

	if result, ok := record.Step(stepcache.StepMedia); ok && result.IsOK() {
		if err := result.Decode(&media); err == nil {
			progress.Success(ctx, reporter, "media ready (cached)")
			return media, nil
		}
		logger.Warn("cached media payload unreadable, re-fetching")
	}

	progress.Processing(ctx, reporter, "downloading video and extracting audio")
	media, err := o.deps.Media.Fetch(ctx, link)
	if err != nil {
		return media, o.failStep(ctx, key, stepcache.StepMedia, err, reporter, logger)
	}
	o.putOK(ctx, key, stepcache.StepMedia, media, logger)
	progress.Success(ctx, reporter, "media ready")
	return media, nil
}

func (o *Orchestrator) transcribe(ctx context.Context, key string, record *stepcache.Record, link verify.LinkInfo, media verify.MediaInfo, reporter progress.Reporter, logger *slog.Logger) (string, *verify.Report) {
	if result, ok := record.Step(stepcache.StepTranscript); ok && result.IsOK() {
		var transcript string
		if err := result.Decode(&transcript); err == nil {
			progress.Success(ctx, reporter, "transcript ready (cached)")
			return transcript, nil
		}
		logger.Warn("cached transcript payload unreadable, re-transcribing")
	}

	progress.Processing(ctx, reporter, "transcribing audio")
	transcript, err := o.deps.Transcriber.Transcribe(ctx, media.AudioPath)
	if err == nil && strings.TrimSpace(transcript) == "" {
		err = services.Wrap(services.ErrTranscription, "transcript", "transcribe", "transcript is empty", nil)
	}
	if err != nil {
		if o.deps.Config.Pipeline.TranscriptPolicy == config.TranscriptCaption && strings.TrimSpace(link.Caption) != "" {
			// Degrade to analyzing the post caption when audio yields nothing.
			caption := strings.TrimSpace(link.Caption)
			logger.Warn("transcription unavailable, falling back to caption", logging.Error(err))
			progress.Warning(ctx, reporter, "transcription unavailable, analyzing post caption instead")
			o.putOK(ctx, key, stepcache.StepTranscript, caption, logger)
			return caption, nil
		}
		return "", o.failStep(ctx, key, stepcache.StepTranscript, err, reporter, logger)
	}
	o.putOK(ctx, key, stepcache.StepTranscript, transcript, logger)
	progress.Success(ctx, reporter, "transcript ready")
	return transcript, nil
}

func (o *Orchestrator) extractClaims(ctx context.Context, key string, record *stepcache.Record, transcript string, reporter progress.Reporter, logger *slog.Logger) ([]verify.Claim, *verify.Report) {
	var claims []verify.Claim

	cached := false
	if result, ok := record.Step(stepcache.StepClaims); ok && result.IsOK() {
		if err := result.Decode(&claims); err == nil {
			cached = true
		} else {
			logger.Warn("cached claims payload unreadable, re-extracting")
		}
	}

	if !cached {
		progress.Processing(ctx, reporter, "extracting verifiable claims")
		extracted, err := o.deps.Extractor.Extract(ctx, transcript)
		if err != nil {
			return nil, o.failStep(ctx, key, stepcache.StepClaims, err, reporter, logger)
		}
		claims = extracted
		// An empty list is still a successful extraction; cache it so a
		// re-run reaches the same outcome without calling the extractor.
		o.putOK(ctx, key, stepcache.StepClaims, claims, logger)
	}

	if len(claims) == 0 {
		detail := services.Details(services.ErrNoClaims)
		progress.Errorf(ctx, reporter, "no verifiable claims found")
		logger.Info("verification failed", logging.String("reason", detail.Code))
		return nil, verify.FailureReport(services.ErrNoClaims.Error(), detail.Code)
	}
	if cached {
		progress.Success(ctx, reporter, "claims ready (cached): %d found", len(claims))
	} else {
		progress.Success(ctx, reporter, "extracted %d verifiable claims", len(claims))
	}
	return claims, nil
}

// checkClaims gathers evidence and verifies every claim. One claim's failure
// never aborts its siblings; failures land in the finding's Error field.
func (o *Orchestrator) checkClaims(ctx context.Context, key string, record *stepcache.Record, claims []verify.Claim, reporter progress.Reporter, logger *slog.Logger) []verify.ClaimFinding {
	findings := make([]verify.ClaimFinding, len(claims))

	workers := o.deps.Config.Pipeline.ClaimWorkers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, claim := range claims {
		wg.Add(1)
		go func(index int, claim verify.Claim) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			claimCtx := services.WithClaimIndex(ctx, index)
			findings[index] = o.checkClaim(claimCtx, key, record, index, claim, reporter, logging.WithContext(claimCtx, logger))
		}(i, claim)
	}
	wg.Wait()
	return findings
}

func (o *Orchestrator) checkClaim(ctx context.Context, key string, record *stepcache.Record, index int, claim verify.Claim, reporter progress.Reporter, logger *slog.Logger) verify.ClaimFinding {
	finding := verify.ClaimFinding{Claim: claim, Sources: []string{}}

	cacheEvidence := o.deps.Config.Cache.Evidence
	evidenceStep := stepcache.EvidenceStep(index)
	verifyStep := stepcache.VerificationStep(index)

	var evidence []verify.EvidenceItem
	cachedEvidence := false
	if cacheEvidence {
		if result, ok := record.Step(evidenceStep); ok && result.IsOK() {
			if err := result.Decode(&evidence); err == nil {
				cachedEvidence = true
			}
		}
	}

	if !cachedEvidence {
		progress.Processing(ctx, reporter, "gathering evidence for claim %d: %s", index+1, summarize(claim.Text))
		gathered, err := o.deps.Retriever.Gather(ctx, claim.Text)
		if err != nil {
			detail := services.Details(err)
			finding.Error = detail.Message
			logger.Warn("evidence gathering failed", logging.Error(err))
			progress.Warning(ctx, reporter, "claim %d: evidence gathering failed: %s", index+1, detail.Message)
			return finding
		}
		evidence = gathered
		if cacheEvidence {
			o.putOK(ctx, key, evidenceStep, evidence, logger)
		}
	}

	if len(evidence) == 0 {
		finding.Error = services.ErrNoEvidence.Error()
		progress.Warning(ctx, reporter, "claim %d: no relevant content found", index+1)
		return finding
	}
	finding.Evidence = evidence
	finding.Sources = finding.SourceURLs()

	if cacheEvidence {
		if result, ok := record.Step(verifyStep); ok && result.IsOK() {
			var verification string
			if err := result.Decode(&verification); err == nil {
				finding.Verification = verification
				progress.Success(ctx, reporter, "claim %d verified (cached)", index+1)
				return finding
			}
		}
	}

	progress.Processing(ctx, reporter, "verifying claim %d against %d sources", index+1, len(evidence))
	verification, err := o.deps.Verifier.Verify(ctx, claim, evidence)
	if err != nil {
		detail := services.Details(err)
		finding.Error = detail.Message
		logger.Warn("claim verification failed", logging.Error(err))
		progress.Warning(ctx, reporter, "claim %d: verification failed: %s", index+1, detail.Message)
		return finding
	}
	finding.Verification = verification
	if cacheEvidence {
		o.putOK(ctx, key, verifyStep, verification, logger)
	}
	progress.Success(ctx, reporter, "claim %d verified", index+1)
	return finding
}

// failStep records the failure durably, emits the error event, and builds
// the terminal failure report.
func (o *Orchestrator) failStep(ctx context.Context, key, step string, cause error, reporter progress.Reporter, logger *slog.Logger) *verify.Report {
	detail := services.Details(cause)
	if err := o.deps.Store.PutStep(ctx, key, step, stepcache.Failed(detail.Message)); err != nil {
		logger.Warn("recording step failure failed", logging.String(logging.FieldStep, step), logging.Error(err))
	}
	logger.Error("step failed", logging.String(logging.FieldStep, step), logging.Error(cause))
	progress.Errorf(ctx, reporter, "%s failed: %s", step, detail.Message)
	return verify.FailureReport(detail.Message, detail.Code)
}

// putOK persists a successful result. A write failure is logged but the
// in-memory result still drives this run; the next run simply recomputes.
func (o *Orchestrator) putOK(ctx context.Context, key, step string, payload any, logger *slog.Logger) {
	result, err := stepcache.OK(payload)
	if err != nil {
		logger.Warn("encoding step result failed", logging.String(logging.FieldStep, step), logging.Error(err))
		return
	}
	if err := o.deps.Store.PutStep(ctx, key, step, result); err != nil {
		logger.Warn("persisting step result failed", logging.String(logging.FieldStep, step), logging.Error(err))
	}
}

func summarize(text string) string {
	const limit = 60
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return fmt.Sprintf("%s...", string(runes[:limit]))
}
