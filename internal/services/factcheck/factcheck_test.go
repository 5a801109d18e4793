package factcheck

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reelcheck/internal/services"
	"reelcheck/internal/services/llm"
	"reelcheck/internal/verify"
)

type stubCompleter struct {
	response string
	err      error
	prompt   string
}

func (s *stubCompleter) Complete(_ context.Context, _, userPrompt string) (string, error) {
	s.prompt = userPrompt
	return s.response, s.err
}

func (s *stubCompleter) CompleteJSON(_ context.Context, _, userPrompt string, out any) error {
	s.prompt = userPrompt
	if s.err != nil {
		return s.err
	}
	return llm.DecodeJSON(s.response, out)
}

func TestExtractParsesClaimsAndCategories(t *testing.T) {
	completer := &stubCompleter{response: `{"claims":[
		{"claim":"iPhone 15 Pro has a 48MP main camera","category":"technology_tech"},
		{"claim":"Tesla stock dropped 12% on March 15, 2024","category":"financial_market"},
		{"claim":"","category":"scientific_fact"}
	]}`}
	extractor := NewExtractor(completer)

	claims, err := extractor.Extract(context.Background(), "some transcription")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims (blank skipped), got %d", len(claims))
	}
	if claims[0].Category != verify.CategoryTechnology {
		t.Fatalf("unexpected category %q", claims[0].Category)
	}
}

func TestExtractEmptyClaimListIsValid(t *testing.T) {
	extractor := NewExtractor(&stubCompleter{response: `{"claims":[]}`})

	claims, err := extractor.Extract(context.Background(), "nothing checkable here")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(claims) != 0 {
		t.Fatalf("expected no claims, got %v", claims)
	}
}

func TestExtractRejectsEmptyTranscription(t *testing.T) {
	extractor := NewExtractor(&stubCompleter{})
	if _, err := extractor.Extract(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty transcription")
	}
}

func TestVerifyBuildsEvidencePrompt(t *testing.T) {
	completer := &stubCompleter{response: "The claim is CORRECT based on the evidence."}
	verifier := NewVerifier(completer)

	result, err := verifier.Verify(context.Background(),
		verify.Claim{Text: "the moon landing happened in 1969"},
		[]verify.EvidenceItem{
			{URL: "https://a.example", Snippet: "Apollo 11 landed on July 20, 1969"},
			{URL: "https://b.example", Snippet: "NASA confirms the 1969 landing"},
		})
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if VerificationLabel(result) != LabelCorrect {
		t.Fatalf("unexpected label for %q", result)
	}
	if !strings.Contains(completer.prompt, "Apollo 11 landed") {
		t.Fatalf("evidence missing from prompt: %q", completer.prompt)
	}
}

func TestVerifyWithoutEvidenceFails(t *testing.T) {
	verifier := NewVerifier(&stubCompleter{})
	_, err := verifier.Verify(context.Background(), verify.Claim{Text: "claim"}, nil)
	if !errors.Is(err, services.ErrNoEvidence) {
		t.Fatalf("expected no-evidence error, got %v", err)
	}
}

func TestVerificationLabelOrdering(t *testing.T) {
	cases := map[string]string{
		"This is PARTIALLY CORRECT because...": LabelPartiallyCorrect,
		"The claim is INCORRECT.":              LabelIncorrect,
		"Verdict: CORRECT.":                    LabelCorrect,
		"hard to say":                          "",
	}
	for response, want := range cases {
		if got := VerificationLabel(response); got != want {
			t.Errorf("VerificationLabel(%q) = %q, want %q", response, got, want)
		}
	}
}

func TestSynthesizeIncludesFailedClaims(t *testing.T) {
	completer := &stubCompleter{response: "Overall the video is PARTIALLY AUTHENTIC..."}
	synthesizer := NewSynthesizer(completer)

	verdict, err := synthesizer.Synthesize(context.Background(), []verify.ClaimFinding{
		{Claim: verify.Claim{Text: "claim one"}, Verification: "CORRECT"},
		{Claim: verify.Claim{Text: "claim two"}, Error: "no relevant content found"},
	})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if VerdictLabel(verdict) != verify.VerdictPartiallyAuthentic {
		t.Fatalf("unexpected verdict label for %q", verdict)
	}
	if !strings.Contains(completer.prompt, "verification unavailable (no relevant content found)") {
		t.Fatalf("failed claim missing from prompt: %q", completer.prompt)
	}
}

func TestVerdictLabelOrdering(t *testing.T) {
	cases := map[string]string{
		"the video is PARTIALLY AUTHENTIC": verify.VerdictPartiallyAuthentic,
		"the video is INAUTHENTIC":         verify.VerdictInauthentic,
		"the video is AUTHENTIC":           verify.VerdictAuthentic,
		"inconclusive":                     "",
	}
	for response, want := range cases {
		if got := VerdictLabel(response); got != want {
			t.Errorf("VerdictLabel(%q) = %q, want %q", response, got, want)
		}
	}
}

func TestSynthesizeFailurePropagates(t *testing.T) {
	synthesizer := NewSynthesizer(&stubCompleter{err: errors.New("model offline")})
	_, err := synthesizer.Synthesize(context.Background(), []verify.ClaimFinding{
		{Claim: verify.Claim{Text: "claim"}},
	})
	if !errors.Is(err, services.ErrVerdict) {
		t.Fatalf("expected verdict error, got %v", err)
	}
}
