package llm

import "context"

type contextKey string

const purposeKey contextKey = "llm_purpose"

// Purposes recorded against every request. The offline provider answers
// by purpose, and llm_events rows can be filtered on it.
const (
	PurposeReformat  = "rc-reformat"
	PurposeQuestions = "rc-questions"
	PurposeUnknown   = "unknown"
)

// WithPurpose labels the requests made under ctx.
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
