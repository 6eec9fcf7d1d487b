package submissions

import (
	"context"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// WorkflowID builds a unique workflow id for prefix, carrying the caller's trace id when
// one is active.
func WorkflowID(ctx context.Context, prefix string) string {
	if traceID := TraceID(ctx); traceID != "" {
		return prefix + "-" + traceID + "-" + uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}

// TraceID returns the active trace id or "".
func TraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
