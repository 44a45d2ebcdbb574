// Package node implements the node/aspect runtime (§4.F): typed node
// handles, owning vs. alias semantics, and the handler/event-queue storage
// that backs internal/scenegraph's dispatch.
package node

import (
	"sync/atomic"

	"github.com/stardust-xr/stardust/internal/scenegraph"
	"github.com/stardust-xr/stardust/pkg/messenger"
)

// Client is the per-process connection context shared by every Node: the
// Messenger used to send frames, the Registry used to route incoming
// ones, and the monotonic id allocator for client-originated nodes (§3
// Node.Identity, §4.F construction path 1).
type Client struct {
	msgr     *messenger.Messenger
	registry *scenegraph.Registry
	nextID   atomic.Uint64
}

// NewClient builds a Client over an already-connected Messenger and an
// empty Registry.
func NewClient(msgr *messenger.Messenger, registry *scenegraph.Registry) *Client {
	return &Client{msgr: msgr, registry: registry}
}

// Messenger returns the underlying Messenger, for generated stubs that
// send signals/method calls directly.
func (c *Client) Messenger() *messenger.Messenger { return c.msgr }

// Registry returns the underlying scenegraph Registry.
func (c *Client) Registry() *scenegraph.Registry { return c.registry }

// AllocID allocates the next client-originated node id (§3: "monotonically
// allocated 64-bit id, unique per client process").
func (c *Client) AllocID() uint64 {
	return c.nextID.Add(1)
}
