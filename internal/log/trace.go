package log

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// WithTraceContext returns a logger enriched with the active span's trace and
// span IDs so log lines can be correlated with exported traces. When no valid
// span is present the base logger is returned unchanged.
func WithTraceContext(ctx context.Context) zerolog.Logger {
	l := Base()
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return l
	}
	return l.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
}
