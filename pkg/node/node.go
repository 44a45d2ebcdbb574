package node

import (
	"context"
	"fmt"
	"sync"

	"github.com/stardust-xr/stardust/internal/logger"
	"github.com/stardust-xr/stardust/pkg/datamap"
	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
)

// InterfaceNodeID is the well-known id of the root interface node every
// client announces on connect (same value as
// internal/scenegraph.InterfaceNodeID, which this package also imports).
const InterfaceNodeID uint64 = 0

// Handle is a reference to a node: either owning (destruction propagates on
// Close, construction path 1 in §4.F) or an alias (Close is silent,
// construction paths 2-3). Handler registration and event access go
// through the shared *state so owning and alias handles to the same id
// observe one handler table (§3 Node, §4.F).
type Handle struct {
	client *Client
	state  *state
	owned  bool

	closeOnce sync.Once
}

// NewOwning allocates a local id (construction path 1, §4.F), registers it
// with the client's registry, and returns an owning handle. The caller is
// responsible for sending the create_* signal — NewOwning only performs
// local bookkeeping.
func NewOwning(c *Client, path string) *Handle {
	return registerOwning(c, c.AllocID(), path)
}

func registerOwning(c *Client, id uint64, path string) *Handle {
	st := newState(id, path)
	c.registry.Register(st, path)
	return &Handle{client: c, state: st, owned: true}
}

// Announce registers a server-originated node id lazily on first reference
// (construction path 2, §4.F) and returns a non-owning handle.
func Announce(c *Client, id uint64, path string) *Handle {
	if ref, ok := c.registry.Lookup(id); ok {
		if st, ok := ref.(*state); ok {
			return &Handle{client: c, state: st, owned: false}
		}
	}
	st := newState(id, path)
	c.registry.Register(st, path)
	return &Handle{client: c, state: st, owned: false}
}

// Alias duplicates h as a non-owning handle to the same node (construction
// path 3, §4.F): dropping it never sends destroy.
func (h *Handle) Alias() *Handle {
	return &Handle{client: h.client, state: h.state, owned: false}
}

// ID returns the node's routing id.
func (h *Handle) ID() uint64 { return h.state.id }

// Path returns the node's canonical path, if it has one.
func (h *Handle) Path() string { return h.state.path }

// Owned reports whether this handle is the owning reference.
func (h *Handle) Owned() bool { return h.owned }

// Live reports whether the node has not yet been destroyed.
func (h *Handle) Live() bool { return !h.state.isDestroyed() }

// RegisterHandler installs a handler for one (aspect_id, opcode) member on
// the shared node state; generated As* bindings call this once per event
// (peer-side) member when binding a handle to an aspect.
func (h *Handle) RegisterHandler(aspectID, opcode uint64, fn Handler) error {
	return h.state.RegisterHandler(aspectID, opcode, fn)
}

// RecvEvent is the non-blocking pull backing generated recv_<aspect>_event
// stubs (§4.E).
func (h *Handle) RecvEvent(aspectID uint64) (any, bool) {
	return h.state.RecvEvent(aspectID)
}

// PushEvent enqueues a decoded peer-side event; called by generated event
// parsers running on the dispatch loop.
func (h *Handle) PushEvent(aspectID uint64, ev any) error {
	return h.state.PushEvent(aspectID, ev)
}

// Close implements ownership drop semantics (§4.F): an owning handle that
// is still live enqueues a destroy signal (OwnedAspectID, DestroyOpcode)
// and unregisters the node locally; an alias close is silent. Close is
// idempotent.
func (h *Handle) Close() error {
	var sendErr error
	h.closeOnce.Do(func() {
		if !h.owned {
			return
		}
		if h.state.isDestroyed() {
			return
		}
		h.state.markDestroyed()
		h.client.registry.Unregister(h.state.id, h.state.path)

		if err := h.client.msgr.SendSignal(h.state.id, OwnedAspectID, DestroyOpcode, nil, nil); err != nil {
			logger.Warn("failed to send destroy signal", logger.NodeID(h.state.id), logger.Err(err))
			sendErr = err
		}
	})
	return sendErr
}

// MarkRemoteDestroyed records that the peer destroyed this node (e.g. the
// server announced destruction of a non-owned handle, or EOF on the
// Client's connection); it unregisters the node and closes its event
// rings without sending anything.
func (h *Handle) MarkRemoteDestroyed() {
	if h.state.isDestroyed() {
		return
	}
	h.state.markDestroyed()
	h.client.registry.Unregister(h.state.id, h.state.path)
}

// CallMethod is a convenience wrapper threading the Handle's node id
// through Client.Messenger().CallMethod, used by generated method stubs.
func (h *Handle) CallMethod(ctx context.Context, aspectID, opcode uint64, payload []byte, fds []int) ([]byte, []int, error) {
	res, err := h.client.msgr.CallMethod(ctx, h.state.id, aspectID, opcode, payload, fds)
	if err != nil {
		return nil, nil, err
	}
	return res.Payload, res.Fds, nil
}

// SendSignal is a convenience wrapper used by generated signal stubs.
func (h *Handle) SendSignal(aspectID, opcode uint64, payload []byte, fds []int) error {
	return h.client.msgr.SendSignal(h.state.id, aspectID, opcode, payload, fds)
}

// InterfaceHandle returns the alias handle for the root interface node,
// used by generated Create* constructor functions to invoke interface
// members (§4.H.5).
func (c *Client) InterfaceHandle() *Handle {
	return Announce(c, InterfaceNodeID, "")
}

// DecodeCreatedHandle decodes a node_id field out of a constructor
// response payload and returns an owning handle to it (construction path 1,
// §4.F: this client is the node's authoritative creator, so Close sends
// destroy); generated Create* functions call this to wrap the freshly
// created node.
func DecodeCreatedHandle(c *Client, payload []byte) (*Handle, error) {
	m, err := datamap.Unmarshal(payload, fdctx.Token(0))
	if err != nil {
		return nil, fmt.Errorf("node: decode created handle: %w", err)
	}
	id, err := datamap.GetUint64(m, "node_id")
	if err != nil {
		return nil, fmt.Errorf("node: decode created handle: %w", err)
	}
	return registerOwning(c, id, ""), nil
}
