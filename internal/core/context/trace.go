package context

import (
	"context"
)

// Trace identifies the request a context belongs to.
// SpanID is empty when no tracer provider is installed.
type Trace struct {
	TraceID   string
	SpanID    string
	RequestID string
}

// LogFields returns the trace as zap key-value pairs.
func (t Trace) LogFields() []any {
	fields := []any{"trace_id", t.TraceID, "request_id", t.RequestID}
	if t.SpanID != "" {
		fields = append(fields, "span_id", t.SpanID)
	}
	return fields
}

type traceKey struct{}

// WithTrace stores the request trace in ctx.
func WithTrace(ctx context.Context, t Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// TraceFrom returns the request trace stored in ctx.
func TraceFrom(ctx context.Context) (Trace, bool) {
	t, ok := ctx.Value(traceKey{}).(Trace)
	return t, ok
}

// GetRequestID returns the request id, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	t, _ := TraceFrom(ctx)
	return t.RequestID
}
