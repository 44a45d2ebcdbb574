package node

import "errors"

var (
	// ErrHandlerAlreadyRegistered guards against two generated stubs
	// claiming the same (aspect_id, opcode) slot on one node.
	ErrHandlerAlreadyRegistered = errors.New("node: handler already registered for this aspect/opcode")

	// ErrEventQueueClosed is returned by PushEvent once a node has been
	// destroyed; events for a dead node are dropped, not buffered.
	ErrEventQueueClosed = errors.New("node: event queue closed")
)
