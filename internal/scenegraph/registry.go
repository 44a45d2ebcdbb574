// Package scenegraph implements the client-side registry mapping node
// paths/ids to live node references, and the incoming-frame dispatch loop
// that routes signals and method calls to their handler tables (§4.E).
//
// Dispatch-by-(aspect_id, opcode) is grounded on the teacher's
// internal/protocol/nfs/dispatch.go HandlerResult-returning design, adapted
// from NFS-procedure dispatch to aspect/opcode dispatch.
package scenegraph

import (
	"sync"
	"sync/atomic"

	"github.com/stardust-xr/stardust/internal/logger"
	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
	"github.com/stardust-xr/stardust/pkg/messenger"
	"github.com/stardust-xr/stardust/pkg/wire"
)

// InterfaceNodeID is the synthetic node (id=0) that receives every
// create_* signal and DESKTOP_STARTUP_ID handling (§3, §4.F, §6).
const InterfaceNodeID uint64 = 0

// Registry maintains nodes (by id) and paths (by string), and implements
// messenger.Handler by routing incoming frames to the referenced node
// (§4.E, §5: lock protects the maps; handler invocation happens outside
// the lock after the ref is read).
type Registry struct {
	mu    sync.RWMutex
	nodes map[uint64]NodeRef
	paths map[string]uint64

	nextToken atomic.Uint64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		nodes: make(map[uint64]NodeRef),
		paths: make(map[string]uint64),
	}
}

// Register adds ref under its id, and additionally under path if non-empty
// (legacy/interface-node routing, §4.E).
func (r *Registry) Register(ref NodeRef, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes[ref.ID()] = ref
	if path != "" {
		r.paths[path] = ref.ID()
	}
}

// Unregister removes a node's entries. Safe to call on an id that is not
// present (a concurrent destroy racing a drop).
func (r *Registry) Unregister(id uint64, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.nodes, id)
	if path != "" {
		delete(r.paths, path)
	}
}

// Lookup resolves a node by id.
func (r *Registry) Lookup(id uint64) (NodeRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.nodes[id]
	return ref, ok
}

// LookupPath resolves a node by its canonical path (interface node and
// legacy routing, §4.E).
func (r *Registry) LookupPath(path string) (NodeRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.paths[path]
	if !ok {
		return nil, false
	}
	ref, ok := r.nodes[id]
	return ref, ok
}

// Len reports the number of registered nodes (diagnostics/tests).
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// HandleFrame implements messenger.Handler (§4.E dispatch pseudocode):
// look up the node, enter a dedicated fd-deserialization context scoped to
// this one call, invoke the handler, and translate errors to the fixed
// routing taxonomy.
func (r *Registry) HandleFrame(f wire.Frame, fds []int) messenger.HandlerResult {
	ref, ok := r.Lookup(f.NodeID)
	if !ok {
		logger.Warn("frame for unknown node", logger.NodeID(f.NodeID), logger.Err(ErrNodeNotFound))
		return messenger.HandlerResult{Err: ErrNodeNotFound}
	}

	tok := fdctx.Token(r.nextToken.Add(1))
	if _, err := fdctx.EnterWithFds(tok, fds); err != nil {
		return messenger.HandlerResult{Err: err}
	}
	defer fdctx.Exit(tok)

	payload, respFds, err := ref.Dispatch(tok, f.AspectID, f.Opcode, f.Payload, f.Type == wire.FrameMethodCall)
	if err != nil {
		logger.Warn("handler error",
			logger.NodeID(f.NodeID), logger.AspectID(f.AspectID), logger.Opcode(f.Opcode), logger.Err(err))
		return messenger.HandlerResult{Err: err}
	}
	return messenger.HandlerResult{Payload: payload, Fds: respFds}
}
