package verify

import "strings"

// Verdict labels produced by the synthesizer.
const (
	VerdictAuthentic          = "AUTHENTIC"
	VerdictPartiallyAuthentic = "PARTIALLY AUTHENTIC"
	VerdictInauthentic        = "INAUTHENTIC"
)

// ClaimFinding is the per-claim slice of the final report. Order matches
// claim extraction order regardless of how evidence gathering completed.
type ClaimFinding struct {
	Claim        Claim          `json:"claim"`
	Verification string         `json:"verification,omitempty"`
	Evidence     []EvidenceItem `json:"-"`
	Sources      []string       `json:"sources"`
	Error        string         `json:"error,omitempty"`
}

// Report is the terminal result of one verification run.
type Report struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Code    string         `json:"code,omitempty"`
	Verdict string         `json:"verdict,omitempty"`
	Claims  []ClaimFinding `json:"claims,omitempty"`
}

// FailureReport builds the terminal report for a run that short-circuited.
func FailureReport(message, code string) *Report {
	return &Report{Success: false, Message: strings.TrimSpace(message), Code: code}
}

// SourceURLs collects the evidence source URLs for a finding, preserving
// rank order.
func (f ClaimFinding) SourceURLs() []string {
	if len(f.Sources) > 0 {
		return f.Sources
	}
	urls := make([]string, 0, len(f.Evidence))
	for _, item := range f.Evidence {
		urls = append(urls, item.URL)
	}
	return urls
}
