package llm

import "context"

type contextKey string

const purposeKey contextKey = "llm_purpose"

// PurposeUnknown labels calls made without WithPurpose.
const PurposeUnknown = "unknown"

// WithPurpose labels the calls made with ctx in the LLM event log, e.g.
// "path-gen" or "assist".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or PurposeUnknown.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok && v != "" {
		return v
	}
	return PurposeUnknown
}
