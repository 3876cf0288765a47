package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds capture-scoped logging fields. Fields left at their zero
// value are not logged.
type LogContext struct {
	TraceID   string // OpenTelemetry trace ID
	SpanID    string // OpenTelemetry span ID
	SessionID string // acquisition session
	Source    string // producer name: demo, usb, ...
	Group     int    // backend group, logged when HasGroup is set
	HasGroup  bool
	StartTime time.Time
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

// NewLogContext creates a LogContext for an acquisition session.
func NewLogContext(sessionID string) *LogContext {
	return &LogContext{
		SessionID: sessionID,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	c := *lc
	return &c
}

// WithGroup returns a copy bound to a backend group.
func (lc *LogContext) WithGroup(group int) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Group = group
		clone.HasGroup = true
	}
	return clone
}

// WithSource returns a copy with the producer name set.
func (lc *LogContext) WithSource(source string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Source = source
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
