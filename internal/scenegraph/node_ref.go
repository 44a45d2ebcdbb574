package scenegraph

import "github.com/stardust-xr/stardust/pkg/datamap/fdctx"

// NodeRef is the surface the scenegraph registry needs from a live node —
// just enough to route a frame to its handler table (§4.E). pkg/node
// implements this; scenegraph never imports pkg/node, avoiding a cycle
// (node registers itself with the registry, not the other way around).
type NodeRef interface {
	ID() uint64

	// Dispatch routes one (aspect_id, opcode) invocation to the node's
	// handler table. tok is an fd-deserialization context already entered
	// by the caller, covering the lifetime of this single call — handlers
	// deserialize payload using tok, never their own. isMethod selects
	// which "not found" error applies (signal vs. method). Dispatch
	// returns ErrSignalNotFound/ErrMethodNotFound if no handler is
	// registered, or the handler's own application error otherwise.
	Dispatch(tok fdctx.Token, aspectID, opcode uint64, payload []byte, isMethod bool) (respPayload []byte, respFds []int, err error)
}
