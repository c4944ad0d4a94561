package observability

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// LoggerWithTrace returns the global zerolog logger enriched with
// trace_id (and span_id, when present) whenever ctx carries a trace ID, plus
// trace_sampled=true when that span is sampled. Every boundary log call in this module (job failures, LLM fallback
// paths, caption failures) goes through this so a log line can be joined
// back to the trace that produced it.
func LoggerWithTrace(ctx context.Context) *zerolog.Logger {
	l := log.Logger
	if ctx == nil {
		return &l
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return &l
	}
	l = l.With().Str("trace_id", sc.TraceID().String()).Logger()
	if sc.HasSpanID() {
		l = l.With().Str("span_id", sc.SpanID().String()).Logger()
	}
	if sc.IsSampled() {
		l = l.With().Bool("trace_sampled", true).Logger()
	}
	return &l
}
