package factcheck

import (
	"context"
	"strings"

	"reelcheck/internal/services"
	"reelcheck/internal/verify"
)

// Verification labels embedded in the verifier's response text.
const (
	LabelCorrect          = "CORRECT"
	LabelPartiallyCorrect = "PARTIALLY CORRECT"
	LabelIncorrect        = "INCORRECT"
)

const verificationSystemPrompt = `You are a fact-checking assistant. Analyze the claim against the provided evidence and determine if it is correct, partially correct, or incorrect.

INSTRUCTIONS:
- Base your analysis ONLY on the evidence provided
- Do not use external knowledge unless the evidence is insufficient
- Classify the claim as: CORRECT, PARTIALLY CORRECT, or INCORRECT
- Provide a brief explanation for your classification
- Keep your response under 700 characters including spaces`

// Verifier compares one claim against its ranked evidence snippets.
type Verifier struct {
	completer Completer
}

// NewVerifier builds a claim verifier on top of the given completer.
func NewVerifier(completer Completer) *Verifier {
	return &Verifier{completer: completer}
}

// Verify returns the model's assessment of the claim, a short text that
// includes one of the verification labels.
func (v *Verifier) Verify(ctx context.Context, claim verify.Claim, evidence []verify.EvidenceItem) (string, error) {
	if len(evidence) == 0 {
		return "", services.Wrap(services.ErrNoEvidence, "verify", "verify", "no evidence to verify against", nil)
	}

	var prompt strings.Builder
	prompt.WriteString("CLAIM: ")
	prompt.WriteString(claim.Text)
	prompt.WriteString("\n\nEVIDENCE:\n")
	for _, item := range evidence {
		prompt.WriteString("- ")
		prompt.WriteString(item.Snippet)
		prompt.WriteString("\n")
	}

	response, err := v.completer.Complete(ctx, verificationSystemPrompt, prompt.String())
	if err != nil {
		return "", services.Wrap(services.ErrVerification, "verify", "verify", "claim verification failed", err)
	}
	return strings.TrimSpace(response), nil
}

// VerificationLabel extracts the classification label from a verification
// response. Unknown responses yield an empty string.
func VerificationLabel(response string) string {
	upper := strings.ToUpper(response)
	switch {
	case strings.Contains(upper, LabelPartiallyCorrect):
		return LabelPartiallyCorrect
	case strings.Contains(upper, LabelIncorrect):
		return LabelIncorrect
	case strings.Contains(upper, LabelCorrect):
		return LabelCorrect
	default:
		return ""
	}
}
