// Package datamap implements the tagged binary map payload that carries
// every signal and method argument/return on the Stardust wire.
//
// The format is flexbuffer-style rather than XDR: every value is
// self-describing (a one-byte tag followed by its body), keys are interned
// strings kept sorted so a reader can binary-search a map without a schema,
// and a dedicated null tag distinguishes "key present, value absent" from
// "key missing" (§3 Datamap, §4.B).
package datamap

import "fmt"

// Tag identifies the shape of the value that follows it on the wire.
type Tag byte

const (
	TagNull Tag = iota
	TagBool
	TagInt8
	TagInt16
	TagInt32
	TagInt64
	TagUint8
	TagUint16
	TagUint32
	TagUint64
	TagFloat32
	TagFloat64
	TagString
	TagBlob
	TagVector
	TagMap
	TagFd
)

func (t Tag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagBool:
		return "bool"
	case TagInt8:
		return "int8"
	case TagInt16:
		return "int16"
	case TagInt32:
		return "int32"
	case TagInt64:
		return "int64"
	case TagUint8:
		return "uint8"
	case TagUint16:
		return "uint16"
	case TagUint32:
		return "uint32"
	case TagUint64:
		return "uint64"
	case TagFloat32:
		return "float32"
	case TagFloat64:
		return "float64"
	case TagString:
		return "string"
	case TagBlob:
		return "blob"
	case TagVector:
		return "vector"
	case TagMap:
		return "map"
	case TagFd:
		return "fd"
	default:
		return fmt.Sprintf("tag(%d)", byte(t))
	}
}
