package node

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stardust-xr/stardust/internal/scenegraph"
	"github.com/stardust-xr/stardust/pkg/datamap"
	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
	"github.com/stardust-xr/stardust/pkg/messenger"
	"github.com/stardust-xr/stardust/pkg/wire"
)

// loopbackClient builds a Client whose Messenger is wired to a live
// socketpair so Close()'s destroy signal actually has somewhere to go.
func loopbackClient(t *testing.T) (*Client, *wire.Conn) {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/node-test.sock"

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
	serverConn := wire.NewConn(serverRaw)

	registry := scenegraph.New()
	msgr := messenger.New(clientConn, registry)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go msgr.RunFlush(ctx)
	go msgr.RunDispatch(ctx)

	return NewClient(msgr, registry), serverConn
}

func TestOwningCloseSendsDestroy(t *testing.T) {
	client, peer := loopbackClient(t)
	defer peer.Close()

	h := NewOwning(client, "/root/spatial-1")
	require.True(t, h.Owned())
	require.True(t, h.Live())

	require.NoError(t, h.Close())
	require.False(t, h.Live())

	f, _, err := peer.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, wire.FrameSignal, f.Type)
	require.Equal(t, OwnedAspectID, f.AspectID)
	require.Equal(t, DestroyOpcode, f.Opcode)
}

func TestAliasCloseIsSilent(t *testing.T) {
	client, peer := loopbackClient(t)
	defer peer.Close()

	owning := NewOwning(client, "/root/spatial-2")
	alias := owning.Alias()
	require.False(t, alias.Owned())

	require.NoError(t, alias.Close())
	require.True(t, owning.Live(), "aliasing a node and dropping the alias must not destroy it")

	_, ok := client.Registry().Lookup(owning.ID())
	require.True(t, ok)
}

func TestCloseIsIdempotent(t *testing.T) {
	client, peer := loopbackClient(t)
	defer peer.Close()

	h := NewOwning(client, "/root/spatial-3")
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	// Only one destroy signal should have gone out.
	done := make(chan struct{})
	go func() {
		peer.ReadFrame()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected exactly one destroy frame")
	}
}

func TestHandlerDispatchRoundTrip(t *testing.T) {
	client, peer := loopbackClient(t)
	defer peer.Close()

	h := NewOwning(client, "/root/spatial-4")
	require.NoError(t, h.RegisterHandler(0xAAAA, 0xBBBB, func(tok fdctx.Token, payload []byte) ([]byte, []int, error) {
		return append([]byte("echo:"), payload...), nil, nil
	}))

	res := client.Registry().HandleFrame(wire.Frame{
		Type: wire.FrameMethodCall, NodeID: h.ID(), AspectID: 0xAAAA, Opcode: 0xBBBB, Payload: []byte("hi"),
	}, nil)
	require.NoError(t, res.Err)
	require.Equal(t, "echo:hi", string(res.Payload))
}

func TestHandlerNotFoundDistinguishesSignalAndMethod(t *testing.T) {
	client, peer := loopbackClient(t)
	defer peer.Close()
	h := NewOwning(client, "")

	res := client.Registry().HandleFrame(wire.Frame{Type: wire.FrameSignal, NodeID: h.ID()}, nil)
	require.ErrorIs(t, res.Err, scenegraph.ErrSignalNotFound)

	res = client.Registry().HandleFrame(wire.Frame{Type: wire.FrameMethodCall, NodeID: h.ID()}, nil)
	require.ErrorIs(t, res.Err, scenegraph.ErrMethodNotFound)
}

func TestDecodeCreatedHandleIsOwning(t *testing.T) {
	client, peer := loopbackClient(t)
	defer peer.Close()

	payload, err := datamap.Marshal(datamap.NewMap(map[string]datamap.Value{
		"node_id": datamap.Uint64(7),
	}), fdctx.Token(0))
	require.NoError(t, err)

	h, err := DecodeCreatedHandle(client, payload)
	require.NoError(t, err)
	require.True(t, h.Owned())
	require.Equal(t, uint64(7), h.ID())

	require.NoError(t, h.Close())
	f, _, err := peer.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, wire.FrameSignal, f.Type)
	require.Equal(t, uint64(7), f.NodeID)
	require.Equal(t, OwnedAspectID, f.AspectID)
	require.Equal(t, DestroyOpcode, f.Opcode)
}

func TestEventRingNonBlocking(t *testing.T) {
	client, peer := loopbackClient(t)
	defer peer.Close()
	h := NewOwning(client, "")

	_, ok := h.RecvEvent(0x1)
	require.False(t, ok)

	require.NoError(t, h.PushEvent(0x1, "frame-event"))
	ev, ok := h.RecvEvent(0x1)
	require.True(t, ok)
	require.Equal(t, "frame-event", ev)

	_, ok = h.RecvEvent(0x1)
	require.False(t, ok)
}
