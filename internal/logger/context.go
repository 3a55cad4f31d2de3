package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID
	SpanID    string    // OpenTelemetry span ID
	Operation string    // Drive operation (mkdir, cat, rm, etc.)
	Principal string    // Username the request runs as
	Path      string    // Path the request targets
	StartTime time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext for an operation run by principal.
func NewLogContext(operation, principal string) *LogContext {
	return &LogContext{
		Operation: operation,
		Principal: principal,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithPath returns a copy with the path set
func (lc *LogContext) WithPath(path string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Path = path
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

// fields renders the non-empty fields as slog attributes, trace first.
func (lc *LogContext) fields() []any {
	out := make([]any, 0, 5)
	if lc.TraceID != "" {
		out = append(out, TraceID(lc.TraceID))
	}
	if lc.SpanID != "" {
		out = append(out, SpanID(lc.SpanID))
	}
	if lc.Operation != "" {
		out = append(out, Operation(lc.Operation))
	}
	if lc.Principal != "" {
		out = append(out, Principal(lc.Principal))
	}
	if lc.Path != "" {
		out = append(out, Path(lc.Path))
	}
	return out
}
