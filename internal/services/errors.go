package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the pipeline failure taxonomy. Wrap tags errors with
// one of these so callers can classify without inspecting message text.
var (
	ErrValidation    = errors.New("validation error")
	ErrResolution    = errors.New("resolution error")
	ErrMedia         = errors.New("media error")
	ErrTranscription = errors.New("transcription unavailable")
	ErrNoClaims      = errors.New("no verifiable claims")
	ErrSearch        = errors.New("search error")
	ErrNoEvidence    = errors.New("no relevant content found")
	ErrVerification  = errors.New("verification error")
	ErrVerdict       = errors.New("verdict error")
	ErrConfiguration = errors.New("configuration error")
	ErrTransient     = errors.New("transient failure")
)

var kindCodes = map[error]string{
	ErrValidation:    "validation",
	ErrResolution:    "resolution",
	ErrMedia:         "media",
	ErrTranscription: "transcription_unavailable",
	ErrNoClaims:      "no_claims",
	ErrSearch:        "search",
	ErrNoEvidence:    "no_evidence",
	ErrVerification:  "verification",
	ErrVerdict:       "verdict",
	ErrConfiguration: "configuration",
	ErrTransient:     "transient",
}

// markerOrder fixes classification precedence in pipeline order. An error
// carrying more than one marker (a tagged error re-wrapped with a second
// marker) always resolves to the earliest match.
var markerOrder = []error{
	ErrValidation,
	ErrResolution,
	ErrMedia,
	ErrTranscription,
	ErrNoClaims,
	ErrSearch,
	ErrNoEvidence,
	ErrVerification,
	ErrVerdict,
	ErrConfiguration,
	ErrTransient,
}

// Wrap builds an error message that includes step context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, step, operation, message string, err error) error {
	detail := buildDetail(step, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Detail is the presentation form of a tagged pipeline error.
type Detail struct {
	Code    string
	Message string
}

// Details extracts the stable kind code and a human-readable message from a
// tagged error. Untagged errors map to the transient code.
func Details(err error) Detail {
	if err == nil {
		return Detail{Code: kindCodes[ErrTransient]}
	}
	for _, marker := range markerOrder {
		if errors.Is(err, marker) {
			return Detail{Code: kindCodes[marker], Message: trimMarkerPrefix(err.Error(), marker.Error())}
		}
	}
	return Detail{Code: kindCodes[ErrTransient], Message: err.Error()}
}

func trimMarkerPrefix(message, marker string) string {
	trimmed := strings.TrimPrefix(message, marker+": ")
	if strings.TrimSpace(trimmed) == "" {
		return marker
	}
	return trimmed
}

func buildDetail(step, operation, message string) string {
	parts := make([]string, 0, 3)
	if step = strings.TrimSpace(step); step != "" {
		parts = append(parts, step)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
