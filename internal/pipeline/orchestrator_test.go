package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reelcheck/internal/config"
	"reelcheck/internal/progress"
	"reelcheck/internal/services"
	"reelcheck/internal/testsupport"
	"reelcheck/internal/verify"
)

type fakeResolver struct {
	calls int
	err   error
	info  verify.LinkInfo
}

func (f *fakeResolver) Resolve(context.Context, string) (verify.LinkInfo, error) {
	f.calls++
	return f.info, f.err
}

type fakeMedia struct {
	calls int
	err   error
	info  verify.MediaInfo
}

func (f *fakeMedia) Fetch(context.Context, verify.LinkInfo) (verify.MediaInfo, error) {
	f.calls++
	return f.info, f.err
}

type fakeTranscriber struct {
	calls int
	err   error
	text  string
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeExtractor struct {
	calls  int
	err    error
	claims []verify.Claim
	got    string
}

func (f *fakeExtractor) Extract(_ context.Context, transcription string) ([]verify.Claim, error) {
	f.calls++
	f.got = transcription
	return f.claims, f.err
}

type fakeRetriever struct {
	calls    int
	byClaim  map[string][]verify.EvidenceItem
	errClaim map[string]error
}

func (f *fakeRetriever) Gather(_ context.Context, claim string) ([]verify.EvidenceItem, error) {
	f.calls++
	if err, ok := f.errClaim[claim]; ok {
		return nil, err
	}
	return f.byClaim[claim], nil
}

type fakeVerifier struct {
	calls int
	err   error
}

func (f *fakeVerifier) Verify(_ context.Context, claim verify.Claim, _ []verify.EvidenceItem) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "CORRECT: " + claim.Text, nil
}

type fakeSynthesizer struct {
	calls int
	err   error
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, findings []verify.ClaimFinding) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "The video is AUTHENTIC.", nil
}

type fixture struct {
	cfg         *config.Config
	resolver    *fakeResolver
	media       *fakeMedia
	transcriber *fakeTranscriber
	extractor   *fakeExtractor
	retriever   *fakeRetriever
	verifier    *fakeVerifier
	synthesizer *fakeSynthesizer
	orch        *Orchestrator
}

func newFixture(t *testing.T, opts ...testsupport.ConfigOption) *fixture {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)

	evidence := []verify.EvidenceItem{
		{URL: "https://nasa.example/apollo", Snippet: "Apollo 11 landed in 1969", Score: 0.91},
	}
	f := &fixture{
		cfg: cfg,
		resolver: &fakeResolver{info: verify.LinkInfo{
			VideoURL: "https://cdn.example.com/v.mp4",
			Filename: "reel_abc.mp4",
			Caption:  "moon landing recap",
		}},
		media:       &fakeMedia{info: verify.MediaInfo{VideoPath: "/m/v.mp4", AudioPath: "/m/v.mp3"}},
		transcriber: &fakeTranscriber{text: "the moon landing happened in 1969"},
		extractor: &fakeExtractor{claims: []verify.Claim{
			{Text: "the moon landing happened in 1969", Category: verify.CategoryHistoricalEvent},
		}},
		retriever: &fakeRetriever{byClaim: map[string][]verify.EvidenceItem{
			"the moon landing happened in 1969": evidence,
		}},
		verifier:    &fakeVerifier{},
		synthesizer: &fakeSynthesizer{},
	}

	orch, err := New(Deps{
		Config:      cfg,
		Store:       store,
		Resolver:    f.resolver,
		Media:       f.media,
		Transcriber: f.transcriber,
		Extractor:   f.extractor,
		Retriever:   f.retriever,
		Verifier:    f.verifier,
		Synthesizer: f.synthesizer,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	f.orch = orch
	return f
}

const testURL = "https://www.instagram.com/reel/abc123/"

func TestRunHappyPath(t *testing.T) {
	f := newFixture(t)

	report, err := f.orch.Run(context.Background(), testURL, progress.Noop{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected success, got %+v", report)
	}
	if report.Verdict == "" {
		t.Fatal("missing verdict")
	}
	if len(report.Claims) != 1 {
		t.Fatalf("expected 1 claim finding, got %d", len(report.Claims))
	}
	finding := report.Claims[0]
	if finding.Verification == "" || len(finding.Sources) != 1 {
		t.Fatalf("unexpected finding %+v", finding)
	}
}

func TestRunSecondRunReusesCachedSteps(t *testing.T) {
	f := newFixture(t)

	if _, err := f.orch.Run(context.Background(), testURL, nil); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	report, err := f.orch.Run(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected success, got %+v", report)
	}

	if f.resolver.calls != 1 || f.media.calls != 1 || f.transcriber.calls != 1 || f.extractor.calls != 1 {
		t.Fatalf("cached steps were recomputed: resolver=%d media=%d transcriber=%d extractor=%d",
			f.resolver.calls, f.media.calls, f.transcriber.calls, f.extractor.calls)
	}
	// Evidence and verification are recomputed each run by default.
	if f.retriever.calls != 2 || f.verifier.calls != 2 {
		t.Fatalf("expected fresh evidence per run: retriever=%d verifier=%d", f.retriever.calls, f.verifier.calls)
	}
}

func TestRunEvidenceCachingSkipsRecompute(t *testing.T) {
	f := newFixture(t, testsupport.WithEvidenceCaching())

	if _, err := f.orch.Run(context.Background(), testURL, nil); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if _, err := f.orch.Run(context.Background(), testURL, nil); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if f.retriever.calls != 1 || f.verifier.calls != 1 {
		t.Fatalf("evidence caching did not stick: retriever=%d verifier=%d", f.retriever.calls, f.verifier.calls)
	}
}

func TestRunNoClaimsShortCircuits(t *testing.T) {
	f := newFixture(t)
	f.extractor.claims = nil

	report, err := f.orch.Run(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Success {
		t.Fatalf("expected failure report, got %+v", report)
	}
	if report.Message != "no verifiable claims" {
		t.Fatalf("unexpected message %q", report.Message)
	}
	if f.retriever.calls != 0 || f.verifier.calls != 0 || f.synthesizer.calls != 0 {
		t.Fatal("no evidence or verification work should run without claims")
	}
}

func TestRunOneClaimFailsEvidenceOtherSucceeds(t *testing.T) {
	f := newFixture(t)
	f.extractor.claims = []verify.Claim{
		{Text: "the moon landing happened in 1969", Category: verify.CategoryHistoricalEvent},
		{Text: "the moon is made of cheese", Category: verify.CategoryScientificFact},
	}
	// Second claim finds nothing on the web.

	report, err := f.orch.Run(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected success, got %+v", report)
	}
	if len(report.Claims) != 2 {
		t.Fatalf("expected both claims in report, got %d", len(report.Claims))
	}
	succeeded, failed := report.Claims[0], report.Claims[1]
	if succeeded.Verification == "" || len(succeeded.Sources) == 0 {
		t.Fatalf("first claim should verify: %+v", succeeded)
	}
	if failed.Error != "no relevant content found" || len(failed.Sources) != 0 {
		t.Fatalf("second claim should fail with empty sources: %+v", failed)
	}
	if f.synthesizer.calls != 1 {
		t.Fatal("verdict synthesis should still run")
	}
}

func TestRunAllClaimsWithoutEvidenceFails(t *testing.T) {
	f := newFixture(t)
	f.retriever.byClaim = map[string][]verify.EvidenceItem{}

	report, err := f.orch.Run(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Success {
		t.Fatalf("expected failure, got %+v", report)
	}
	if report.Message != "no relevant content found" {
		t.Fatalf("unexpected message %q", report.Message)
	}
	if f.synthesizer.calls != 0 {
		t.Fatal("verdict must not run without any evidence")
	}
}

func TestRunResumeAfterMediaFailureSkipsLink(t *testing.T) {
	f := newFixture(t)
	f.media.err = services.Wrap(services.ErrMedia, "media", "download", "cdn returned status 403", nil)

	report, err := f.orch.Run(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Success || report.Code != "media" {
		t.Fatalf("expected media failure, got %+v", report)
	}

	// The media source recovers; the re-run must reuse the cached link.
	f.media.err = nil
	report, err = f.orch.Run(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("resume Run failed: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected success on resume, got %+v", report)
	}
	if f.resolver.calls != 1 {
		t.Fatalf("link resolution should be cached, got %d calls", f.resolver.calls)
	}
	if f.media.calls != 2 {
		t.Fatalf("media fetch should rerun, got %d calls", f.media.calls)
	}
}

func TestRunLinkFailureSurfacedVerbatim(t *testing.T) {
	f := newFixture(t)
	f.resolver.err = services.Wrap(services.ErrResolution, "link", "resolve",
		"video link for this post is not public or accessible", nil)

	report, err := f.orch.Run(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Success || report.Code != "resolution" {
		t.Fatalf("expected resolution failure, got %+v", report)
	}
	if !strings.Contains(report.Message, "not public or accessible") {
		t.Fatalf("collaborator reason not surfaced: %q", report.Message)
	}
	if f.media.calls != 0 {
		t.Fatal("media must not run after link failure")
	}
}

func TestRunTranscriptFailureIsTerminalByDefault(t *testing.T) {
	f := newFixture(t)
	f.transcriber.text = ""

	report, err := f.orch.Run(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Success {
		t.Fatalf("expected failure, got %+v", report)
	}
	if report.Code != "transcription_unavailable" {
		t.Fatalf("unexpected code %q", report.Code)
	}
	if f.extractor.calls != 0 {
		t.Fatal("claim extraction must not run without a transcript")
	}
}

func TestRunCaptionPolicyDegradesToCaption(t *testing.T) {
	f := newFixture(t, testsupport.WithTranscriptPolicy(config.TranscriptCaption))
	f.transcriber.err = services.Wrap(services.ErrTranscription, "transcript", "transcribe", "asr offline", nil)
	f.extractor.claims = []verify.Claim{
		{Text: "the moon landing happened in 1969", Category: verify.CategoryHistoricalEvent},
	}

	report, err := f.orch.Run(context.Background(), testURL, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.Success {
		t.Fatalf("expected success via caption fallback, got %+v", report)
	}
	if f.extractor.got != "moon landing recap" {
		t.Fatalf("extractor should receive the caption, got %q", f.extractor.got)
	}
}

func TestRunEmptyURLIsAnError(t *testing.T) {
	f := newFixture(t)
	if _, err := f.orch.Run(context.Background(), "   ", nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRunReleasesKeyLockEntry(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		if _, err := f.orch.Run(context.Background(), testURL, nil); err != nil {
			t.Fatalf("Run %d failed: %v", i, err)
		}
	}

	f.orch.mu.Lock()
	held := len(f.orch.keyLocks)
	f.orch.mu.Unlock()
	if held != 0 {
		t.Fatalf("expected key lock map to drain after runs, %d entries remain", held)
	}
}

func TestRunEmitsOrderedProgressEvents(t *testing.T) {
	f := newFixture(t)
	stream := progress.NewStream(64)

	done := make(chan []progress.Event)
	go func() {
		var events []progress.Event
		for event := range stream.Events() {
			events = append(events, event)
		}
		done <- events
	}()

	if _, err := f.orch.Run(context.Background(), testURL, stream); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	stream.Close()
	events := <-done

	if len(events) == 0 {
		t.Fatal("no progress events emitted")
	}
	if events[len(events)-1].Phase != progress.PhaseCompleted {
		t.Fatalf("last event should be completed, got %+v", events[len(events)-1])
	}
	var processing int
	for _, event := range events {
		if event.Phase == progress.PhaseProcessing {
			processing++
		}
	}
	if processing < 4 {
		t.Fatalf("expected at least one processing event per step, got %d", processing)
	}
}
