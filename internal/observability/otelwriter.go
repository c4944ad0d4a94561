package observability

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/trace"
)

// OTelWriter is an io.Writer that bridges zerolog's JSON output to OTLP log
// records: each Write call is one zerolog line, parsed back into a map and
// re-emitted as a structured log.Record through the global OTel log
// provider, so a log line and the trace it belongs to end up in the same
// backend without duplicating zerolog's formatting logic.
type OTelWriter struct {
	name string
}

// NewOTelWriter creates a writer that emits through the global OTLP log
// provider. The provider is resolved per emission, not at construction, so
// the writer can be wired into the logger before InitOTel has installed the
// real provider.
func NewOTelWriter(name string) *OTelWriter {
	return &OTelWriter{name: name}
}

func (w *OTelWriter) logger() log.Logger {
	return global.GetLoggerProvider().Logger(w.name)
}

// Write implements io.Writer. It parses a zerolog JSON line and emits an
// OTLP log record; an unparseable line is emitted raw at info severity.
func (w *OTelWriter) Write(p []byte) (n int, err error) {
	n = len(p)

	var entry map[string]any
	if err := json.Unmarshal(p, &entry); err != nil {
		var rec log.Record
		rec.SetTimestamp(time.Now())
		rec.SetBody(log.StringValue(string(p)))
		rec.SetSeverity(log.SeverityInfo)
		w.logger().Emit(context.Background(), rec)
		return n, nil
	}

	w.emit(entry)
	return n, nil
}

func (w *OTelWriter) emit(entry map[string]any) {
	var rec log.Record

	if ts, ok := entry["time"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			rec.SetTimestamp(t)
		}
		delete(entry, "time")
	}
	if rec.Timestamp().IsZero() {
		rec.SetTimestamp(time.Now())
	}

	if lvl, ok := entry["level"].(string); ok {
		rec.SetSeverity(zerologLevelToSeverity(lvl))
		rec.SetSeverityText(lvl)
		delete(entry, "level")
	} else {
		rec.SetSeverity(log.SeverityInfo)
		rec.SetSeverityText("info")
	}

	if msg, ok := entry["message"].(string); ok {
		rec.SetBody(log.StringValue(msg))
		delete(entry, "message")
	}

	// LoggerWithTrace stamps trace_id/span_id onto every boundary log line;
	// rebuilding a span context from them lets the backend correlate the
	// record with its trace instead of carrying the ids as plain attributes.
	ctx := context.Background()
	if sc, ok := spanContextFromEntry(entry); ok {
		ctx = trace.ContextWithSpanContext(ctx, sc)
		delete(entry, "trace_id")
		delete(entry, "span_id")
		delete(entry, "trace_sampled")
	}

	attrs := make([]log.KeyValue, 0, len(entry))
	for k, v := range entry {
		attrs = append(attrs, log.KeyValue{Key: k, Value: anyToLogValue(v)})
	}
	rec.AddAttributes(attrs...)

	w.logger().Emit(ctx, rec)
}

func spanContextFromEntry(entry map[string]any) (trace.SpanContext, bool) {
	raw, ok := entry["trace_id"].(string)
	if !ok {
		return trace.SpanContext{}, false
	}
	traceID, err := trace.TraceIDFromHex(raw)
	if err != nil {
		return trace.SpanContext{}, false
	}
	cfg := trace.SpanContextConfig{TraceID: traceID}
	if rawSpan, ok := entry["span_id"].(string); ok {
		if spanID, err := trace.SpanIDFromHex(rawSpan); err == nil {
			cfg.SpanID = spanID
		}
	}
	if sampled, ok := entry["trace_sampled"].(bool); ok && sampled {
		cfg.TraceFlags = trace.FlagsSampled
	}
	sc := trace.NewSpanContext(cfg)
	return sc, sc.IsValid()
}

func zerologLevelToSeverity(level string) log.Severity {
	switch level {
	case "trace":
		return log.SeverityTrace
	case "debug":
		return log.SeverityDebug
	case "info":
		return log.SeverityInfo
	case "warn", "warning":
		return log.SeverityWarn
	case "error":
		return log.SeverityError
	case "fatal":
		return log.SeverityFatal
	case "panic":
		return log.SeverityFatal4
	default:
		return log.SeverityInfo
	}
}

func anyToLogValue(v any) log.Value {
	switch val := v.(type) {
	case string:
		return log.StringValue(val)
	case int:
		return log.IntValue(val)
	case int64:
		return log.Int64Value(val)
	case float64:
		return log.Float64Value(val)
	case bool:
		return log.BoolValue(val)
	case nil:
		return log.StringValue("")
	default:
		// For complex types, marshal to JSON string
		if b, err := json.Marshal(val); err == nil {
			return log.StringValue(string(b))
		}
		return log.StringValue("")
	}
}
