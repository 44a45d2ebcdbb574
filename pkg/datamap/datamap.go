package datamap

import (
	"fmt"

	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
)

// Datamap is an immutable owned byte buffer guaranteed to parse as a
// top-level map (§4.B). It is the transport form every signal/method
// payload takes on the wire.
type Datamap struct {
	raw []byte
}

// FromRaw wraps already-encoded bytes without validating them; use
// Deserialize or WithReader to confirm they parse.
func FromRaw(b []byte) Datamap {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Datamap{raw: cp}
}

// FromTyped encodes a *Map into a Datamap. tok is the caller's active fd
// context (0 if the map carries no Fd values).
func FromTyped(m *Map, tok fdctx.Token) (Datamap, error) {
	if m == nil {
		m = NewMap(nil)
	}
	b, err := Marshal(m, tok)
	if err != nil {
		return Datamap{}, err
	}
	return Datamap{raw: b}, nil
}

// RawBytes returns the encoded form.
func (d Datamap) RawBytes() []byte {
	return d.raw
}

// Deserialize parses the buffer into a *Map, using tok's fd context.
func (d Datamap) Deserialize(tok fdctx.Token) (*Map, error) {
	return Unmarshal(d.raw, tok)
}

// WithReader parses the buffer and invokes fn with the resulting map,
// surfacing parse errors without requiring the caller to pre-validate.
func (d Datamap) WithReader(tok fdctx.Token, fn func(*Map) error) error {
	m, err := d.Deserialize(tok)
	if err != nil {
		return err
	}
	return fn(m)
}

// Get* accessors perform a schema-free type-checked lookup on a map,
// returning an error naming the key and the expected type when the key is
// missing or holds a value of another type — the
// shape generated aspect code relies on to decode arguments.

func GetBool(m *Map, key string) (bool, error) {
	v, ok := typed[Bool](m, key)
	if !ok {
		return false, fmt.Errorf("datamap: key %q missing or not a bool", key)
	}
	return bool(v), nil
}

func GetString(m *Map, key string) (string, error) {
	v, ok := typed[String](m, key)
	if !ok {
		return "", fmt.Errorf("datamap: key %q missing or not a string", key)
	}
	return string(v), nil
}

func GetUint64(m *Map, key string) (uint64, error) {
	v, ok := typed[Uint64](m, key)
	if !ok {
		return 0, fmt.Errorf("datamap: key %q missing or not a uint64", key)
	}
	return uint64(v), nil
}

func GetInt64(m *Map, key string) (int64, error) {
	v, ok := typed[Int64](m, key)
	if !ok {
		return 0, fmt.Errorf("datamap: key %q missing or not an int64", key)
	}
	return int64(v), nil
}

func GetFloat32(m *Map, key string) (float32, error) {
	v, ok := typed[Float32](m, key)
	if !ok {
		return 0, fmt.Errorf("datamap: key %q missing or not a float32", key)
	}
	return float32(v), nil
}

func GetFloat64(m *Map, key string) (float64, error) {
	v, ok := typed[Float64](m, key)
	if !ok {
		return 0, fmt.Errorf("datamap: key %q missing or not a float64", key)
	}
	return float64(v), nil
}

func GetMap(m *Map, key string) (*Map, error) {
	v, ok := m.Get(key)
	if !ok {
		return nil, fmt.Errorf("datamap: key %q missing", key)
	}
	sub, ok := v.(*Map)
	if !ok {
		return nil, fmt.Errorf("datamap: key %q is %s, not a map", key, v.Tag())
	}
	return sub, nil
}

func GetVector(m *Map, key string) (Vector, error) {
	v, ok := m.Get(key)
	if !ok {
		return nil, fmt.Errorf("datamap: key %q missing", key)
	}
	vec, ok := v.(Vector)
	if !ok {
		return nil, fmt.Errorf("datamap: key %q is %s, not a vector", key, v.Tag())
	}
	return vec, nil
}

func GetFd(m *Map, key string) (Fd, error) {
	v, ok := typed[Fd](m, key)
	if !ok {
		return 0, fmt.Errorf("datamap: key %q missing or not an fd", key)
	}
	return v, nil
}

// IsNull reports whether key is present with an explicit null value,
// distinct from the key not existing at all (§3 Datamap typed-null).
func IsNull(m *Map, key string) bool {
	v, ok := m.Get(key)
	if !ok {
		return false
	}
	_, isNull := v.(Null)
	return isNull
}

func typed[T Value](m *Map, key string) (T, bool) {
	var zero T
	v, ok := m.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
