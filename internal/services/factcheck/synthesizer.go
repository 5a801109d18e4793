package factcheck

import (
	"context"
	"strings"

	"reelcheck/internal/services"
	"reelcheck/internal/verify"
)

const verdictSystemPrompt = `You are a video authenticity analyst. After thoroughly examining a video's content and fact-checking its claims, provide your final assessment.

INSTRUCTIONS:
- Write as if you have analyzed the entire video content, not just individual claims
- Conclude whether the video is AUTHENTIC, PARTIALLY AUTHENTIC, or INAUTHENTIC
- Focus on the video's overall credibility and trustworthiness
- Avoid mentioning claim counts or statistical breakdowns
- Write a cohesive assessment about the video's content quality and reliability
- Keep your entire response between 1000 and 1500 characters including spaces`

// Synthesizer turns the per-claim findings into one narrative verdict.
type Synthesizer struct {
	completer Completer
}

// NewSynthesizer builds a verdict synthesizer on top of the given completer.
func NewSynthesizer(completer Completer) *Synthesizer {
	return &Synthesizer{completer: completer}
}

// Synthesize produces the final narrative verdict from the findings.
// Findings whose verification failed are included with their error so the
// model can weigh the missing coverage.
func (s *Synthesizer) Synthesize(ctx context.Context, findings []verify.ClaimFinding) (string, error) {
	if len(findings) == 0 {
		return "", services.Wrap(services.ErrVerdict, "verdict", "synthesize", "no findings to synthesize", nil)
	}

	var prompt strings.Builder
	prompt.WriteString("VIDEO FACT-CHECK RESULTS:\n")
	for _, finding := range findings {
		prompt.WriteString("Claim: ")
		prompt.WriteString(finding.Claim.Text)
		prompt.WriteString("\nVerification Result: ")
		if finding.Verification != "" {
			prompt.WriteString(finding.Verification)
		} else if finding.Error != "" {
			prompt.WriteString("verification unavailable (" + finding.Error + ")")
		} else {
			prompt.WriteString("verification unavailable")
		}
		prompt.WriteString("\n")
	}

	response, err := s.completer.Complete(ctx, verdictSystemPrompt, prompt.String())
	if err != nil {
		return "", services.Wrap(services.ErrVerdict, "verdict", "synthesize", "verdict synthesis failed", err)
	}
	return strings.TrimSpace(response), nil
}

// VerdictLabel extracts the authenticity label from a verdict narrative.
// Unknown responses yield an empty string.
func VerdictLabel(response string) string {
	upper := strings.ToUpper(response)
	switch {
	case strings.Contains(upper, verify.VerdictPartiallyAuthentic):
		return verify.VerdictPartiallyAuthentic
	case strings.Contains(upper, verify.VerdictInauthentic):
		return verify.VerdictInauthentic
	case strings.Contains(upper, verify.VerdictAuthentic):
		return verify.VerdictAuthentic
	default:
		return ""
	}
}
