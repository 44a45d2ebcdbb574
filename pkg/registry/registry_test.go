package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeRef struct {
	id   uint64
	path string
}

func (f fakeRef) ID() uint64   { return f.id }
func (f fakeRef) Path() string { return f.path }

func TestRegisterResolveUnregister(t *testing.T) {
	tbl := New()
	tbl.Register("panel-1", fakeRef{id: 7, path: "/item/panel/1"})

	ref, ok := tbl.Resolve("panel-1")
	assert.True(t, ok)
	assert.Equal(t, uint64(7), ref.ID())
	assert.Equal(t, 1, tbl.Len())

	tbl.Unregister("panel-1")
	_, ok = tbl.Resolve("panel-1")
	assert.False(t, ok)
	assert.Equal(t, 0, tbl.Len())
}

func TestResolveUnknownUID(t *testing.T) {
	tbl := New()
	_, ok := tbl.Resolve("missing")
	assert.False(t, ok)
}
