// Package facade is the client-side entrypoint: Connect wires a socket
// connection into a Messenger and Registry pair, starts the flush/dispatch
// cooperative loop pair, and hands back a Client plus the server-announced
// root and HMD nodes. Grounded on the teacher's pkg/adapter/base.go
// lifecycle (sync.Once shutdown, context-cancelled goroutine pair) and its
// cobra-based cmd/* entrypoints for what a "connect, run, shut down"
// surface looks like from outside the package.
package facade

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/stardust-xr/stardust/internal/logger"
	"github.com/stardust-xr/stardust/internal/scenegraph"
	"github.com/stardust-xr/stardust/pkg/datamap"
	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
	"github.com/stardust-xr/stardust/pkg/fnv1a"
	"github.com/stardust-xr/stardust/pkg/messenger"
	"github.com/stardust-xr/stardust/pkg/node"
	"github.com/stardust-xr/stardust/pkg/socket"
	"github.com/stardust-xr/stardust/pkg/wire"
)

const (
	rootNodePath = "/"
	hmdNodePath  = "/hmd"
)

// applyDesktopStartupIDOpcode is the interface member's wire opcode, hashed
// the same way the IDL resolver hashes every other member name (§4.G).
var applyDesktopStartupIDOpcode = fnv1a.Hash64("applyDesktopStartupID")

// Client is a connected Stardust session: the messenger driving the wire
// connection, the scenegraph registry routing inbound frames, and handles
// to the two synthetic nodes every server announces on connect (§4.I).
type Client struct {
	node *node.Client
	conn *wire.Conn

	// clientID is a process-unique identifier minted at Connect time and
	// attached to every log line this client emits, the Go-side analogue
	// of the generated id fusion's Node::new threads through every create
	// call (original_source/fusion/src/startup_settings.rs).
	clientID string

	Root *node.Handle
	HMD  *node.Handle

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// ClientID returns the process-unique id minted for this connection,
// useful for correlating this client's frames across server-side logs.
func (c *Client) ClientID() string { return c.clientID }

// Connect dials the active Stardust instance, performs the handshake
// implicit in announcing the root and HMD nodes, applies
// DESKTOP_STARTUP_ID if present in the environment, and starts the
// messenger's flush/dispatch loops on background goroutines.
func Connect(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, o := range opts {
		o(&cfg)
	}

	uc, err := socket.ConnectClient()
	if err != nil {
		return nil, fmt.Errorf("facade: connect: %w", err)
	}
	conn := wire.NewConn(uc)

	registry := scenegraph.New()
	msgr := messenger.New(conn, registry, cfg.messengerOpts...)
	nc := node.NewClient(msgr, registry)

	runCtx, cancel := context.WithCancel(ctx)
	c := &Client{
		node:     nc,
		conn:     conn,
		clientID: uuid.NewString(),
		Root:     node.Announce(nc, scenegraph.InterfaceNodeID, rootNodePath),
		HMD:      node.Announce(nc, hmdNodeID(), hmdNodePath),
		cancel:   cancel,
	}
	logger.Debug("connected", logger.ClientID(c.clientID))

	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		if err := msgr.RunFlush(runCtx); err != nil {
			logger.Debug("messenger flush loop stopped", logger.ClientID(c.clientID), logger.Err(err))
		}
	}()
	go func() {
		defer c.wg.Done()
		if err := msgr.RunDispatch(runCtx); err != nil {
			logger.Debug("messenger dispatch loop stopped", logger.ClientID(c.clientID), logger.Err(err))
		}
	}()

	if startupID := os.Getenv("DESKTOP_STARTUP_ID"); startupID != "" {
		if err := c.applyDesktopStartupID(startupID); err != nil {
			logger.Warn("failed to apply desktop startup id", logger.Err(err))
		}
	}

	return c, nil
}

// hmdNodeID is the well-known id of the synthetic HMD node every server
// announces alongside the interface node (§4.I).
func hmdNodeID() uint64 { return 1 }

func (c *Client) applyDesktopStartupID(id string) error {
	m := datamap.NewMap(map[string]datamap.Value{"startup_id": datamap.String(id)})
	payload, err := datamap.Marshal(m, fdctx.Token(0))
	if err != nil {
		return fmt.Errorf("facade: encode startup id: %w", err)
	}
	return c.Root.SendSignal(scenegraph.InterfaceNodeID, applyDesktopStartupIDOpcode, payload, nil)
}

// NodeClient returns the underlying node.Client for generated Create*
// constructors and aspect bindings.
func (c *Client) NodeClient() *node.Client { return c.node }

// Close stops the flush/dispatch loops and closes the wire connection.
// Idempotent.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.node.Messenger().Close()
		c.wg.Wait()
	})
	return err
}
