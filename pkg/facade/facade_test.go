package facade

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stardust-xr/stardust/internal/scenegraph"
	"github.com/stardust-xr/stardust/pkg/datamap"
	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
	"github.com/stardust-xr/stardust/pkg/messenger"
	"github.com/stardust-xr/stardust/pkg/node"
	"github.com/stardust-xr/stardust/pkg/wire"
)

// loopbackFacade builds a Client wired to a live socketpair, bypassing
// socket.ConnectClient so the test doesn't need a real Stardust instance
// on the host (mirrors pkg/node's loopbackClient helper).
func loopbackFacade(t *testing.T) (*Client, *wire.Conn) {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/facade-test.sock"

	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan *net.UnixConn, 1)
	go func() {
		c, err := l.Accept()
		require.NoError(t, err)
		accepted <- c.(*net.UnixConn)
	}()

	clientRaw, err := net.Dial("unix", path)
	require.NoError(t, err)
	serverRaw := <-accepted

	clientConn := wire.NewConn(clientRaw.(*net.UnixConn))
	peerConn := wire.NewConn(serverRaw)

	registry := scenegraph.New()
	msgr := messenger.New(clientConn, registry)
	nc := node.NewClient(msgr, registry)

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		node:   nc,
		conn:   clientConn,
		Root:   node.Announce(nc, scenegraph.InterfaceNodeID, rootNodePath),
		HMD:    node.Announce(nc, hmdNodeID(), hmdNodePath),
		cancel: cancel,
	}
	c.wg.Add(2)
	go func() { defer c.wg.Done(); msgr.RunFlush(ctx) }()
	go func() { defer c.wg.Done(); msgr.RunDispatch(ctx) }()

	t.Cleanup(func() { peerConn.Close() })
	return c, peerConn
}

func TestApplyDesktopStartupIDSendsSignal(t *testing.T) {
	c, peer := loopbackFacade(t)

	require.NoError(t, c.applyDesktopStartupID("stardust/1-abc123"))

	f, _, err := peer.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, wire.FrameSignal, f.Type)
	require.Equal(t, scenegraph.InterfaceNodeID, f.NodeID)
	require.Equal(t, applyDesktopStartupIDOpcode, f.Opcode)

	m, err := datamap.Unmarshal(f.Payload, fdctx.Token(0))
	require.NoError(t, err)
	v, ok := m.Get("startup_id")
	require.True(t, ok)
	require.Equal(t, datamap.String("stardust/1-abc123"), v)
}

func TestCloseIsIdempotent(t *testing.T) {
	c, _ := loopbackFacade(t)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}
