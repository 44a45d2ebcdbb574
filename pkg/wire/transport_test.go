package wire

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func socketpairConns(t *testing.T) (*Conn, *Conn) {
	t.Helper()
	a, b, err := socketpair(t)
	require.NoError(t, err)
	return NewConn(a), NewConn(b)
}

// socketpair returns a connected pair of *net.UnixConn backed by a local
// listener, since net doesn't expose socketpair(2) directly.
func socketpair(t *testing.T) (*net.UnixConn, *net.UnixConn, error) {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/wire-test.sock"

	l, err := net.Listen("unix", path)
	if err != nil {
		return nil, nil, err
	}
	defer l.Close()

	var server *net.UnixConn
	accepted := make(chan struct{})
	go func() {
		c, err := l.Accept()
		if err == nil {
			server = c.(*net.UnixConn)
		}
		close(accepted)
	}()

	client, err := net.Dial("unix", path)
	if err != nil {
		return nil, nil, err
	}
	<-accepted
	return client.(*net.UnixConn), server, nil
}

func TestConnWriteReadFrameNoFds(t *testing.T) {
	client, server := socketpairConns(t)
	defer client.Close()
	defer server.Close()

	f := Frame{Type: FrameSignal, NodeID: 5, AspectID: 9, Opcode: 3, Payload: []byte("hello")}
	require.NoError(t, client.WriteFrame(f, nil))

	got, fds, err := server.ReadFrame()
	require.NoError(t, err)
	require.Empty(t, fds)
	require.Equal(t, f, got)
}

func TestConnWriteReadFrameWithFd(t *testing.T) {
	client, server := socketpairConns(t)
	defer client.Close()
	defer server.Close()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer w.Close()

	f := Frame{Type: FrameSignal, NodeID: 1, FdCount: 1}
	require.NoError(t, client.WriteFrame(f, []int{int(r.Fd())}))
	r.Close() // the sender's copy; the duplicate crossing SCM_RIGHTS stays live

	got, fds, err := server.ReadFrame()
	require.NoError(t, err)
	require.Len(t, fds, 1)
	require.Equal(t, uint32(1), got.FdCount)

	recvEnd := os.NewFile(uintptr(fds[0]), "recv")
	defer recvEnd.Close()

	_, err = w.WriteString("hello")
	require.NoError(t, err)
	w.Close()

	buf := make([]byte, 5)
	n, err := recvEnd.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
}

func TestConnSequentialFrames(t *testing.T) {
	client, server := socketpairConns(t)
	defer client.Close()
	defer server.Close()

	frames := []Frame{
		{Type: FrameSignal, NodeID: 1, Opcode: 1, Payload: []byte{1}},
		{Type: FrameMethodCall, NodeID: 2, Opcode: 2, CallID: 1, Payload: []byte{2, 2}},
		{Type: FrameMethodResponseOK, CallID: 1, Payload: []byte{3, 3, 3}},
	}
	for _, f := range frames {
		require.NoError(t, client.WriteFrame(f, nil))
	}
	for _, want := range frames {
		got, fds, err := server.ReadFrame()
		require.NoError(t, err)
		require.Empty(t, fds)
		require.Equal(t, want, got)
	}
}
