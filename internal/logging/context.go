package logging

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are structured fields added to every record logged with a context that carries them.
type LogFields struct {
	CandidateID *string // Candidate being scored
	RequestID   *string // Request correlation ID
	Component   string  // Dotted component name, e.g. "talent_pool.recompute"
}

// WithLogFields enriches ctx with fields. Newer non-empty values take precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := GetLogFields(ctx)
	if fields.CandidateID != nil {
		merged.CandidateID = fields.CandidateID
	}
	if fields.RequestID != nil {
		merged.RequestID = fields.RequestID
	}
	if fields.Component != "" {
		merged.Component = fields.Component
	}
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns the fields stored in ctx, or empty LogFields.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
