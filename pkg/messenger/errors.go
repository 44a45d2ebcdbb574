package messenger

import "errors"

// Transport/application sentinel errors (§7 taxonomy: Transport, Application).
var (
	// ErrConnectionClosed is returned by SendSignal/CallMethod once the
	// Messenger has shut down, and is the resolution value for every
	// pending call when shutdown happens mid-flight.
	ErrConnectionClosed = errors.New("messenger: connection closed")

	// ErrQueueFull is returned by SendSignal/CallMethod when the outbound
	// queue is bounded and at capacity.
	ErrQueueFull = errors.New("messenger: outbound queue full")

	// ErrUnknownCallID is logged (never returned to a caller) when a
	// method_response_* frame's call_id has no pending entry — it may be a
	// racing cancellation, not a protocol violation (§4.D).
	ErrUnknownCallID = errors.New("messenger: unknown call id")
)

// MethodError is the typed application error carried in a
// method_response_err frame (§7 Application errors).
type MethodError struct {
	Message string
}

func (e *MethodError) Error() string { return e.Message }
