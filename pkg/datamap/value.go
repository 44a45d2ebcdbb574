package datamap

import "sort"

// Value is any value that can live inside a Datamap. Concrete types below
// implement it; a type switch over the concrete type (not the Tag) is the
// idiomatic way to inspect a decoded Value, matching how callers build one
// structurally with From* constructors.
type Value interface {
	Tag() Tag
}

// Null represents a present key whose value is explicitly absent — distinct
// from the key not existing in the map at all.
type Null struct{}

func (Null) Tag() Tag { return TagNull }

type Bool bool

func (Bool) Tag() Tag { return TagBool }

type Int8 int8

func (Int8) Tag() Tag { return TagInt8 }

type Int16 int16

func (Int16) Tag() Tag { return TagInt16 }

type Int32 int32

func (Int32) Tag() Tag { return TagInt32 }

type Int64 int64

func (Int64) Tag() Tag { return TagInt64 }

type Uint8 uint8

func (Uint8) Tag() Tag { return TagUint8 }

type Uint16 uint16

func (Uint16) Tag() Tag { return TagUint16 }

type Uint32 uint32

func (Uint32) Tag() Tag { return TagUint32 }

type Uint64 uint64

func (Uint64) Tag() Tag { return TagUint64 }

type Float32 float32

func (Float32) Tag() Tag { return TagFloat32 }

type Float64 float64

func (Float64) Tag() Tag { return TagFloat64 }

type String string

func (String) Tag() Tag { return TagString }

type Blob []byte

func (Blob) Tag() Tag { return TagBlob }

// Vector is an ordered list of values. Elements need not share a tag; the
// spec allows both homogeneous and heterogeneous vectors and a reader must
// not assume uniformity.
type Vector []Value

func (Vector) Tag() Tag { return TagVector }

// Fd is a value of type fd: an owned file descriptor awaiting serialization
// into the per-frame fd table (§3 "File descriptor table", §4.B). Decoded
// Fd values hold the descriptor already resolved from the incoming frame's
// table.
type Fd int

func (Fd) Tag() Tag { return TagFd }

// entry is one key/value pair of a Map, kept in key-sorted order so readers
// can binary search without touching a schema.
type entry struct {
	key   string
	value Value
}

// Map is a tagged map keyed by interned, sorted strings. The zero value is
// an empty map.
type Map struct {
	entries []entry
}

func (*Map) Tag() Tag { return TagMap }

// NewMap builds a Map from key/value pairs, sorting and validating no
// duplicate keys exist.
func NewMap(pairs map[string]Value) *Map {
	m := &Map{entries: make([]entry, 0, len(pairs))}
	for k, v := range pairs {
		m.entries = append(m.entries, entry{key: k, value: v})
	}
	sort.Slice(m.entries, func(i, j int) bool { return m.entries[i].key < m.entries[j].key })
	return m
}

// Set inserts or replaces the value for key, keeping entries sorted.
func (m *Map) Set(key string, v Value) {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].key >= key })
	if i < len(m.entries) && m.entries[i].key == key {
		m.entries[i].value = v
		return
	}
	m.entries = append(m.entries, entry{})
	copy(m.entries[i+1:], m.entries[i:])
	m.entries[i] = entry{key: key, value: v}
}

// Get performs a binary search for key. The second return is false if the
// key is absent; a present key with a Null value returns (Null{}, true).
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].key >= key })
	if i < len(m.entries) && m.entries[i].key == key {
		return m.entries[i].value, true
	}
	return nil, false
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Keys returns the sorted key list.
func (m *Map) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

// Range calls fn for every entry in sorted key order.
func (m *Map) Range(fn func(key string, v Value)) {
	if m == nil {
		return
	}
	for _, e := range m.entries {
		fn(e.key, e.value)
	}
}
