package services

import "context"

type contextKey string

const (
	workflowKeyKey contextKey = "workflow_key"
	stepKey        contextKey = "step"
	claimIndexKey  contextKey = "claim_index"
	requestIDKey   contextKey = "request_id"
)

// WithWorkflowKey annotates context with the workflow key (the trimmed
// source URL).
func WithWorkflowKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, workflowKeyKey, key)
}

// WorkflowKeyFromContext extracts the workflow key if present.
func WorkflowKeyFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(workflowKeyKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStep annotates context with the pipeline step name.
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return context.WithValue(ctx, stepKey, step)
}

// StepFromContext returns the step name if present.
func StepFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stepKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithClaimIndex annotates context with the claim ordinal for per-claim steps.
func WithClaimIndex(ctx context.Context, index int) context.Context {
	if index < 0 {
		return ctx
	}
	return context.WithValue(ctx, claimIndexKey, index)
}

// ClaimIndexFromContext extracts the claim ordinal if present.
func ClaimIndexFromContext(ctx context.Context) (int, bool) {
	switch v := ctx.Value(claimIndexKey).(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
