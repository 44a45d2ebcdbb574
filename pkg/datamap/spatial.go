package datamap

import (
	"fmt"
	"strings"
)

// Vec2 is a 2-component float vector, encoded as a homogeneous [f32, f32]
// vector (§4.B).
type Vec2 struct{ X, Y float32 }

func (v Vec2) ToValue() Value {
	return Vector{Float32(v.X), Float32(v.Y)}
}

func Vec2FromValue(v Value) (Vec2, error) {
	vec, err := asFixedVector(v, 2)
	if err != nil {
		return Vec2{}, fmt.Errorf("vec2: %w", err)
	}
	x, err := asFloat32(vec[0])
	if err != nil {
		return Vec2{}, err
	}
	y, err := asFloat32(vec[1])
	if err != nil {
		return Vec2{}, err
	}
	return Vec2{X: x, Y: y}, nil
}

// Vec3 is a 3-component float vector, encoded as [f32, f32, f32].
type Vec3 struct{ X, Y, Z float32 }

func (v Vec3) ToValue() Value {
	return Vector{Float32(v.X), Float32(v.Y), Float32(v.Z)}
}

func Vec3FromValue(v Value) (Vec3, error) {
	vec, err := asFixedVector(v, 3)
	if err != nil {
		return Vec3{}, fmt.Errorf("vec3: %w", err)
	}
	x, err := asFloat32(vec[0])
	if err != nil {
		return Vec3{}, err
	}
	y, err := asFloat32(vec[1])
	if err != nil {
		return Vec3{}, err
	}
	z, err := asFloat32(vec[2])
	if err != nil {
		return Vec3{}, err
	}
	return Vec3{X: x, Y: y, Z: z}, nil
}

// Quat is a rotation quaternion, encoded as [x, y, z, w].
type Quat struct{ X, Y, Z, W float32 }

func (q Quat) ToValue() Value {
	return Vector{Float32(q.X), Float32(q.Y), Float32(q.Z), Float32(q.W)}
}

func QuatFromValue(v Value) (Quat, error) {
	vec, err := asFixedVector(v, 4)
	if err != nil {
		return Quat{}, fmt.Errorf("quat: %w", err)
	}
	vals := [4]float32{}
	for i := range vals {
		vals[i], err = asFloat32(vec[i])
		if err != nil {
			return Quat{}, err
		}
	}
	return Quat{X: vals[0], Y: vals[1], Z: vals[2], W: vals[3]}, nil
}

// IdentityQuat is the no-rotation quaternion.
func IdentityQuat() Quat { return Quat{W: 1} }

// Color is linear-space RGBA, encoded as [r, g, b, a].
type Color struct{ R, G, B, A float32 }

func (c Color) ToValue() Value {
	return Vector{Float32(c.R), Float32(c.G), Float32(c.B), Float32(c.A)}
}

func ColorFromValue(v Value) (Color, error) {
	vec, err := asFixedVector(v, 4)
	if err != nil {
		return Color{}, fmt.Errorf("color: %w", err)
	}
	vals := [4]float32{}
	for i := range vals {
		vals[i], err = asFloat32(vec[i])
		if err != nil {
			return Color{}, err
		}
	}
	return Color{R: vals[0], G: vals[1], B: vals[2], A: vals[3]}, nil
}

// Transform is an optional position/rotation/scale triple. A nil component
// means "inherit/unchanged"; the wire encodes each slot as either its value
// or a typed-null placeholder (§3 Transform).
type Transform struct {
	Position *Vec3
	Rotation *Quat
	Scale    *Vec3
}

// IdentityTransform returns an all-present, identity transform (position
// zero, rotation identity, scale one) — distinct from an all-nil Transform,
// which means "unchanged" on every component.
func IdentityTransform() Transform {
	pos := Vec3{}
	rot := IdentityQuat()
	scale := Vec3{X: 1, Y: 1, Z: 1}
	return Transform{Position: &pos, Rotation: &rot, Scale: &scale}
}

func (t Transform) ToValue() Value {
	slot := func(v Value, present bool) Value {
		if !present {
			return Null{}
		}
		return v
	}
	return Vector{
		slot(vec3ToValueSafe(t.Position), t.Position != nil),
		slot(quatToValueSafe(t.Rotation), t.Rotation != nil),
		slot(vec3ToValueSafe(t.Scale), t.Scale != nil),
	}
}

func vec3ToValueSafe(v *Vec3) Value {
	if v == nil {
		return Null{}
	}
	return v.ToValue()
}

func quatToValueSafe(q *Quat) Value {
	if q == nil {
		return Null{}
	}
	return q.ToValue()
}

func TransformFromValue(v Value) (Transform, error) {
	vec, ok := v.(Vector)
	if !ok || len(vec) != 3 {
		return Transform{}, fmt.Errorf("transform: expected a 3-element vector, got %v", v)
	}
	var out Transform
	if _, isNull := vec[0].(Null); !isNull {
		pos, err := Vec3FromValue(vec[0])
		if err != nil {
			return Transform{}, fmt.Errorf("transform.position: %w", err)
		}
		out.Position = &pos
	}
	if _, isNull := vec[1].(Null); !isNull {
		rot, err := QuatFromValue(vec[1])
		if err != nil {
			return Transform{}, fmt.Errorf("transform.rotation: %w", err)
		}
		out.Rotation = &rot
	}
	if _, isNull := vec[2].(Null); !isNull {
		scale, err := Vec3FromValue(vec[2])
		if err != nil {
			return Transform{}, fmt.Errorf("transform.scale: %w", err)
		}
		out.Scale = &scale
	}
	return out, nil
}

// ResourceID is either a "namespace:path" pair or a raw absolute path
// (§3 ResourceID, §3.E).
type ResourceID struct {
	Namespace string // empty if Raw is set
	Path      string
	Raw       bool
}

func (r ResourceID) String() string {
	if r.Raw {
		return r.Path
	}
	return r.Namespace + ":" + r.Path
}

func (r ResourceID) ToValue() Value {
	return String(r.String())
}

func ResourceIDFromValue(v Value) (ResourceID, error) {
	s, ok := v.(String)
	if !ok {
		return ResourceID{}, fmt.Errorf("resource_id: expected a string, got %s", v.Tag())
	}
	text := string(s)
	if strings.HasPrefix(text, "/") {
		return ResourceID{Path: text, Raw: true}, nil
	}
	ns, path, found := strings.Cut(text, ":")
	if !found {
		return ResourceID{}, fmt.Errorf("resource_id: %q is neither an absolute path nor namespace:path", text)
	}
	return ResourceID{Namespace: ns, Path: path}, nil
}

func asFixedVector(v Value, n int) (Vector, error) {
	vec, ok := v.(Vector)
	if !ok {
		return nil, fmt.Errorf("expected a vector, got %s", v.Tag())
	}
	if len(vec) != n {
		return nil, fmt.Errorf("expected %d elements, got %d", n, len(vec))
	}
	return vec, nil
}

func asFloat32(v Value) (float32, error) {
	f, ok := v.(Float32)
	if !ok {
		return 0, fmt.Errorf("expected float32, got %s", v.Tag())
	}
	return float32(f), nil
}
