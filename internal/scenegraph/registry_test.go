package scenegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
	"github.com/stardust-xr/stardust/pkg/wire"
)

type fakeNode struct {
	id      uint64
	reply   []byte
	replyFn func(tok fdctx.Token, aspectID, opcode uint64, payload []byte) ([]byte, []int, error)
}

func (f *fakeNode) ID() uint64 { return f.id }

func (f *fakeNode) Dispatch(tok fdctx.Token, aspectID, opcode uint64, payload []byte, isMethod bool) ([]byte, []int, error) {
	if f.replyFn != nil {
		return f.replyFn(tok, aspectID, opcode, payload)
	}
	return f.reply, nil, nil
}

func TestRegistryBijection(t *testing.T) {
	r := New()
	n := &fakeNode{id: 42}
	r.Register(n, "/root/spatial-42")

	byID, ok := r.Lookup(42)
	require.True(t, ok)
	assert.Equal(t, n, byID)

	byPath, ok := r.LookupPath("/root/spatial-42")
	require.True(t, ok)
	assert.Equal(t, n, byPath)

	r.Unregister(42, "/root/spatial-42")
	_, ok = r.Lookup(42)
	assert.False(t, ok)
	_, ok = r.LookupPath("/root/spatial-42")
	assert.False(t, ok)
}

func TestHandleFrameNodeNotFound(t *testing.T) {
	r := New()
	res := r.HandleFrame(wire.Frame{NodeID: 99}, nil)
	assert.ErrorIs(t, res.Err, ErrNodeNotFound)
}

func TestHandleFrameRoutesToNode(t *testing.T) {
	r := New()
	n := &fakeNode{id: 1, reply: []byte("ok")}
	r.Register(n, "")

	res := r.HandleFrame(wire.Frame{NodeID: 1, AspectID: 7, Opcode: 9, Payload: []byte("in")}, nil)
	require.NoError(t, res.Err)
	assert.Equal(t, "ok", string(res.Payload))
}

func TestHandleFrameEntersFreshFdContextPerCall(t *testing.T) {
	r := New()
	var seenTokens []fdctx.Token
	n := &fakeNode{id: 1, replyFn: func(tok fdctx.Token, _, _ uint64, _ []byte) ([]byte, []int, error) {
		seenTokens = append(seenTokens, tok)
		// Using the context a second time from inside the same call must
		// not collide with the Registry's own Enter for this frame.
		_, err := fdctx.Get(tok)
		assert.NoError(t, err)
		return nil, nil, nil
	}}
	r.Register(n, "")

	r.HandleFrame(wire.Frame{NodeID: 1}, nil)
	r.HandleFrame(wire.Frame{NodeID: 1}, nil)

	require.Len(t, seenTokens, 2)
	assert.NotEqual(t, seenTokens[0], seenTokens[1])
}
