package datamap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
)

func TestMapRoundTrip(t *testing.T) {
	t.Run("ScalarsAndNested", func(t *testing.T) {
		inner := NewMap(map[string]Value{
			"enabled": Bool(true),
		})
		m := NewMap(map[string]Value{
			"x":      Int64(-7),
			"y":      Uint64(42),
			"name":   String("spatial/root"),
			"nested": inner,
			"vec":    Vector{Int32(1), Int32(2), Int32(3)},
			"absent": Null{},
		})

		dm, err := FromTyped(m, 0)
		require.NoError(t, err)

		got, err := dm.Deserialize(0)
		require.NoError(t, err)

		x, err := GetInt64(got, "x")
		require.NoError(t, err)
		assert.EqualValues(t, -7, x)

		assert.True(t, IsNull(got, "absent"))

		sub, err := GetMap(got, "nested")
		require.NoError(t, err)
		enabled, err := GetBool(sub, "enabled")
		require.NoError(t, err)
		assert.True(t, enabled)

		vec, err := GetVector(got, "vec")
		require.NoError(t, err)
		assert.Len(t, vec, 3)
	})

	t.Run("MissingKeyVsNull", func(t *testing.T) {
		m := NewMap(map[string]Value{"present_null": Null{}})
		dm, err := FromTyped(m, 0)
		require.NoError(t, err)
		got, err := dm.Deserialize(0)
		require.NoError(t, err)

		_, ok := got.Get("missing")
		assert.False(t, ok)

		v, ok := got.Get("present_null")
		require.True(t, ok)
		_, isNull := v.(Null)
		assert.True(t, isNull)
	})

	t.Run("KeysStaySorted", func(t *testing.T) {
		m := NewMap(map[string]Value{"z": Int8(1), "a": Int8(2), "m": Int8(3)})
		assert.Equal(t, []string{"a", "m", "z"}, m.Keys())
	})

	t.Run("RejectsNonMapTopLevel", func(t *testing.T) {
		// A bare vector tag followed by a zero-length count: not a map.
		raw := []byte{byte(TagVector), 0, 0, 0, 0}
		_, err := Unmarshal(raw, 0)
		assert.Error(t, err)
	})
}

func TestSpatialRoundTrip(t *testing.T) {
	t.Run("Vec3", func(t *testing.T) {
		v := Vec3{X: 1, Y: 2, Z: 3}
		back, err := Vec3FromValue(v.ToValue())
		require.NoError(t, err)
		assert.Equal(t, v, back)
	})

	t.Run("Quat", func(t *testing.T) {
		q := IdentityQuat()
		back, err := QuatFromValue(q.ToValue())
		require.NoError(t, err)
		assert.Equal(t, q, back)
	})

	t.Run("Color", func(t *testing.T) {
		c := Color{R: 0.1, G: 0.2, B: 0.3, A: 1}
		back, err := ColorFromValue(c.ToValue())
		require.NoError(t, err)
		assert.Equal(t, c, back)
	})

	t.Run("TransformAllPresent", func(t *testing.T) {
		tr := IdentityTransform()
		back, err := TransformFromValue(tr.ToValue())
		require.NoError(t, err)
		require.NotNil(t, back.Position)
		require.NotNil(t, back.Rotation)
		require.NotNil(t, back.Scale)
		assert.Equal(t, *tr.Position, *back.Position)
	})

	t.Run("TransformPartialNone", func(t *testing.T) {
		tr := Transform{} // all nil: "inherit/unchanged" on every component
		back, err := TransformFromValue(tr.ToValue())
		require.NoError(t, err)
		assert.Nil(t, back.Position)
		assert.Nil(t, back.Rotation)
		assert.Nil(t, back.Scale)
	})

	t.Run("ResourceIDNamespaced", func(t *testing.T) {
		r := ResourceID{Namespace: "stardust", Path: "models/cube.glb"}
		back, err := ResourceIDFromValue(r.ToValue())
		require.NoError(t, err)
		assert.Equal(t, r, back)
	})

	t.Run("ResourceIDRawPath", func(t *testing.T) {
		r := ResourceID{Path: "/home/user/model.glb", Raw: true}
		back, err := ResourceIDFromValue(r.ToValue())
		require.NoError(t, err)
		assert.Equal(t, r, back)
	})
}

func TestFdConservation(t *testing.T) {
	t.Run("SerializeRequiresContext", func(t *testing.T) {
		m := NewMap(map[string]Value{"fd": Fd(5)})
		_, err := Marshal(m, 999)
		assert.Error(t, err)
	})

	t.Run("RoundTripMovesFdExactlyOnce", func(t *testing.T) {
		const tok fdctx.Token = 1
		ctx, err := fdctx.Enter(tok)
		require.NoError(t, err)

		m := NewMap(map[string]Value{"pipe": Fd(17)})
		enc, err := Marshal(m, tok)
		require.NoError(t, err)
		pushed := ctx.PushedFds()
		fdctx.Exit(tok)
		require.Equal(t, []int{17}, pushed)

		// Deserialize as the peer would, installing the fds carried by the frame.
		rctx, err := fdctx.EnterWithFds(tok, pushed)
		require.NoError(t, err)
		defer fdctx.Exit(tok)

		got, err := Unmarshal(enc, tok)
		require.NoError(t, err)
		fd, err := GetFd(got, "pipe")
		require.NoError(t, err)
		assert.EqualValues(t, 17, fd)
		assert.Empty(t, rctx.Unconsumed())
	})

	t.Run("DoubleTakeFails", func(t *testing.T) {
		const tok fdctx.Token = 2
		ctx, err := fdctx.EnterWithFds(tok, []int{9})
		require.NoError(t, err)
		defer fdctx.Exit(tok)

		_, err = ctx.Take(0)
		require.NoError(t, err)
		_, err = ctx.Take(0)
		assert.ErrorIs(t, err, fdctx.ErrAlreadyConsumed)
	})

	t.Run("NestingForbidden", func(t *testing.T) {
		const tok fdctx.Token = 3
		_, err := fdctx.Enter(tok)
		require.NoError(t, err)
		defer fdctx.Exit(tok)

		_, err = fdctx.Enter(tok)
		assert.ErrorIs(t, err, fdctx.ErrAlreadyActive)
	})
}
