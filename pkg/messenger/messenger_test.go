package messenger

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stardust-xr/stardust/pkg/wire"
)

func connPair(t *testing.T) (*wire.Conn, *wire.Conn) {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/messenger-test.sock"

	l, err := net.Listen("unix", path)
	require.NoError(t, err)
	defer l.Close()

	accepted := make(chan *net.UnixConn, 1)
	go func() {
		c, err := l.Accept()
		require.NoError(t, err)
		accepted <- c.(*net.UnixConn)
	}()

	client, err := net.Dial("unix", path)
	require.NoError(t, err)

	server := <-accepted
	return wire.NewConn(client.(*net.UnixConn)), wire.NewConn(server)
}

// echoHandler answers every method_call with the same payload, and records
// every signal it receives.
type echoHandler struct {
	signals chan wire.Frame
	reject  bool
}

func newEchoHandler() *echoHandler {
	return &echoHandler{signals: make(chan wire.Frame, 16)}
}

func (h *echoHandler) HandleFrame(f wire.Frame, fds []int) HandlerResult {
	if f.Type == wire.FrameSignal {
		h.signals <- f
		return HandlerResult{}
	}
	if h.reject {
		return HandlerResult{Err: &MethodError{Message: "not allowed"}}
	}
	return HandlerResult{Payload: f.Payload, Fds: fds}
}

func TestMethodSuccessRoundTrip(t *testing.T) {
	clientConn, serverConn := connPair(t)

	serverHandler := newEchoHandler()
	server := New(serverConn, serverHandler)
	client := New(clientConn, new(echoHandler))
	defer client.Close()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.RunDispatch(ctx)
	go server.RunFlush(ctx)
	go client.RunDispatch(ctx)
	go client.RunFlush(ctx)

	res, err := client.CallMethod(context.Background(), 1, 0xABCD, 0x1234, []byte(`{"x":1}`), nil)
	require.NoError(t, err)
	require.Equal(t, `{"x":1}`, string(res.Payload))
}

func TestMethodErrorPropagationThenSuccess(t *testing.T) {
	clientConn, serverConn := connPair(t)

	serverHandler := newEchoHandler()
	serverHandler.reject = true
	server := New(serverConn, serverHandler)
	client := New(clientConn, new(echoHandler))
	defer client.Close()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.RunDispatch(ctx)
	go server.RunFlush(ctx)
	go client.RunDispatch(ctx)
	go client.RunFlush(ctx)

	_, err := client.CallMethod(context.Background(), 1, 0, 0, []byte("x"), nil)
	require.Error(t, err)
	var methodErr *MethodError
	require.ErrorAs(t, err, &methodErr)
	require.Equal(t, "not allowed", methodErr.Message)

	// The connection remains usable for a subsequent call.
	serverHandler.reject = false
	res, err := client.CallMethod(context.Background(), 1, 0, 0, []byte("ok"), nil)
	require.NoError(t, err)
	require.Equal(t, "ok", string(res.Payload))
}

func TestSendSignalDelivered(t *testing.T) {
	clientConn, serverConn := connPair(t)

	serverHandler := newEchoHandler()
	server := New(serverConn, serverHandler)
	client := New(clientConn, new(echoHandler))
	defer client.Close()
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go server.RunDispatch(ctx)
	go server.RunFlush(ctx)
	go client.RunFlush(ctx)

	require.NoError(t, client.SendSignal(7, 0x1, 0x2, []byte("hi"), nil))

	select {
	case f := <-serverHandler.signals:
		require.Equal(t, uint64(7), f.NodeID)
		require.Equal(t, "hi", string(f.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("signal not delivered")
	}
}

func TestGracefulShutdownFailsPendingCalls(t *testing.T) {
	clientConn, serverConn := connPair(t)

	server := New(serverConn, newEchoHandler())
	client := New(clientConn, new(echoHandler))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Only the client's loops run; the server never responds, so the call
	// stays pending until the client is closed out from under it.
	go client.RunDispatch(ctx)
	go client.RunFlush(ctx)

	resultCh := make(chan error, 1)
	go func() {
		_, err := client.CallMethod(context.Background(), 1, 0, 0, nil, nil)
		resultCh <- err
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, client.Close())

	select {
	case err := <-resultCh:
		require.ErrorIs(t, err, ErrConnectionClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("pending call was not failed on shutdown")
	}
}
