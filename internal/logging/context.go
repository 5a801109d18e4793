package logging

import (
	"context"
	"log/slog"

	"reelcheck/internal/services"
)

// WithContext returns a logger annotated with the workflow key, step, claim
// index, and request id carried by ctx. Passing a nil logger yields a no-op
// logger so call sites never need nil checks.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	if ctx == nil {
		return logger
	}
	attrs := make([]Attr, 0, 4)
	if key, ok := services.WorkflowKeyFromContext(ctx); ok {
		attrs = append(attrs, String(FieldWorkflowKey, key))
	}
	if step, ok := services.StepFromContext(ctx); ok {
		attrs = append(attrs, String(FieldStep, step))
	}
	if index, ok := services.ClaimIndexFromContext(ctx); ok {
		attrs = append(attrs, Int(FieldClaimIndex, index))
	}
	if id, ok := services.RequestIDFromContext(ctx); ok {
		attrs = append(attrs, String(FieldRequestID, id))
	}
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(Args(attrs...)...)
}
