package datamap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
)

// encoder writes a Value tree to its tagged binary form. Scalar encoding
// (fixed-width, big-endian) mirrors the teacher's XDR write helpers
// (internal/protocol/xdr/encode.go in the original tree); there is no
// 4-byte alignment padding here, since every value is tag-prefixed and a
// reader never needs to guess a field's width from position alone.
type encoder struct {
	buf *bytes.Buffer
	tok fdctx.Token
}

// Marshal encodes m (a *Map per §3's "guaranteed to parse as a
// top-level map") into its wire form. tok identifies the caller's active fd
// context (see fdctx); pass 0 when the payload carries no Fd values.
func Marshal(m *Map, tok fdctx.Token) ([]byte, error) {
	e := &encoder{buf: &bytes.Buffer{}, tok: tok}
	if err := e.writeValue(m); err != nil {
		return nil, fmt.Errorf("datamap: marshal: %w", err)
	}
	return e.buf.Bytes(), nil
}

func (e *encoder) writeValue(v Value) error {
	if v == nil {
		v = Null{}
	}
	if err := e.buf.WriteByte(byte(v.Tag())); err != nil {
		return err
	}
	switch val := v.(type) {
	case Null:
		return nil
	case Bool:
		b := byte(0)
		if val {
			b = 1
		}
		return e.buf.WriteByte(b)
	case Int8:
		return e.buf.WriteByte(byte(val))
	case Uint8:
		return e.buf.WriteByte(byte(val))
	case Int16:
		return binary.Write(e.buf, binary.BigEndian, int16(val))
	case Uint16:
		return binary.Write(e.buf, binary.BigEndian, uint16(val))
	case Int32:
		return binary.Write(e.buf, binary.BigEndian, int32(val))
	case Uint32:
		return binary.Write(e.buf, binary.BigEndian, uint32(val))
	case Int64:
		return binary.Write(e.buf, binary.BigEndian, int64(val))
	case Uint64:
		return binary.Write(e.buf, binary.BigEndian, uint64(val))
	case Float32:
		return binary.Write(e.buf, binary.BigEndian, math.Float32bits(float32(val)))
	case Float64:
		return binary.Write(e.buf, binary.BigEndian, math.Float64bits(float64(val)))
	case String:
		return e.writeBytes([]byte(val))
	case Blob:
		return e.writeBytes([]byte(val))
	case Vector:
		if err := binary.Write(e.buf, binary.BigEndian, uint32(len(val))); err != nil {
			return err
		}
		for _, elem := range val {
			if err := e.writeValue(elem); err != nil {
				return err
			}
		}
		return nil
	case *Map:
		if err := binary.Write(e.buf, binary.BigEndian, uint32(val.Len())); err != nil {
			return err
		}
		var werr error
		val.Range(func(key string, mv Value) {
			if werr != nil {
				return
			}
			if werr = e.writeBytes([]byte(key)); werr != nil {
				return
			}
			werr = e.writeValue(mv)
		})
		return werr
	case Fd:
		c, err := fdctx.Get(e.tok)
		if err != nil {
			return fmt.Errorf("serializing fd without an active context: %w", err)
		}
		idx := c.Push(int(val))
		return binary.Write(e.buf, binary.BigEndian, idx)
	default:
		return fmt.Errorf("datamap: unknown value type %T", v)
	}
}

func (e *encoder) writeBytes(b []byte) error {
	if err := binary.Write(e.buf, binary.BigEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := e.buf.Write(b)
	return err
}
