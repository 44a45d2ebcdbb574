package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds request-scoped logging context for one dispatch cycle:
// routing a single incoming frame to its handler, or one outstanding method
// call awaiting a response.
type LogContext struct {
	ClientID  string    // Process-unique client identifier
	NodeID    uint64    // Node being routed to
	Aspect    string    // Aspect name
	Member    string    // Signal/method name
	CallID    uint64    // Method call correlation id (0 for signals)
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

// NewLogContext creates a new LogContext for a client.
func NewLogContext(clientID string) *LogContext {
	return &LogContext{
		ClientID:  clientID,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		ClientID:  lc.ClientID,
		NodeID:    lc.NodeID,
		Aspect:    lc.Aspect,
		Member:    lc.Member,
		CallID:    lc.CallID,
		StartTime: lc.StartTime,
	}
}

// WithRoute returns a copy with the routing fields set.
func (lc *LogContext) WithRoute(nodeID uint64, aspect, member string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.NodeID = nodeID
		clone.Aspect = aspect
		clone.Member = member
	}
	return clone
}

// WithCall returns a copy with the method call id set.
func (lc *LogContext) WithCall(callID uint64) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.CallID = callID
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
