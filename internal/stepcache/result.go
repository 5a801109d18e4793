package stepcache

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status tags a StepResult outcome.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Well-known step names. Per-claim steps are derived with EvidenceStep and
// VerificationStep.
const (
	StepLink       = "link"
	StepMedia      = "media"
	StepTranscript = "transcript"
	StepClaims     = "claims"
	StepVerdict    = "verdict"
)

// EvidenceStep names the evidence-gathering step for one claim ordinal.
func EvidenceStep(claimIndex int) string {
	return fmt.Sprintf("evidence.%d", claimIndex)
}

// VerificationStep names the verification step for one claim ordinal.
func VerificationStep(claimIndex int) string {
	return fmt.Sprintf("verification.%d", claimIndex)
}

// StepResult is the tagged outcome of one pipeline step.
type StepResult struct {
	Status    Status          `json:"status"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OK builds a successful StepResult from a JSON-marshalable payload.
func OK(payload any) (StepResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return StepResult{}, fmt.Errorf("marshal step payload: %w", err)
	}
	return StepResult{Status: StatusOK, Payload: data, UpdatedAt: time.Now().UTC()}, nil
}

// Failed builds a failed StepResult carrying a human-readable reason.
func Failed(reason string) StepResult {
	return StepResult{Status: StatusFailed, Reason: strings.TrimSpace(reason), UpdatedAt: time.Now().UTC()}
}

// IsOK reports whether the result carries a successful payload.
func (r StepResult) IsOK() bool {
	return r.Status == StatusOK
}

// Decode unmarshals the payload of a successful result into v.
func (r StepResult) Decode(v any) error {
	if !r.IsOK() {
		return fmt.Errorf("step result is %s, not ok", r.Status)
	}
	if len(r.Payload) == 0 {
		return fmt.Errorf("step result has no payload")
	}
	return json.Unmarshal(r.Payload, v)
}

// Record is everything cached for one workflow key.
type Record struct {
	Key       string
	Steps     map[string]StepResult
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Step returns the cached result for a step, if any.
func (r *Record) Step(name string) (StepResult, bool) {
	if r == nil || r.Steps == nil {
		return StepResult{}, false
	}
	result, ok := r.Steps[name]
	return result, ok
}

// HasOK reports whether a step completed successfully in a prior run.
func (r *Record) HasOK(name string) bool {
	result, ok := r.Step(name)
	return ok && result.IsOK()
}
