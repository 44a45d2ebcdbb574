package datamap

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
)

// maxCollectionLen guards against a corrupt/hostile length prefix inflating
// an allocation; Stardust frames are capped at 16 MiB (§4.C) so no single
// string/blob/vector/map body can legitimately exceed that.
const maxCollectionLen = 16 << 20

type decoder struct {
	r   *bytes.Reader
	tok fdctx.Token
}

// Unmarshal parses raw as a top-level Map (§4.B "guaranteed to parse as a
// top-level map"). tok must name the fd context installed (via
// fdctx.EnterWithFds) for the fds accompanying this frame, or 0 if the
// payload carries none.
func Unmarshal(raw []byte, tok fdctx.Token) (*Map, error) {
	d := &decoder{r: bytes.NewReader(raw), tok: tok}
	v, err := d.readValue()
	if err != nil {
		return nil, fmt.Errorf("datamap: unmarshal: %w", err)
	}
	m, ok := v.(*Map)
	if !ok {
		return nil, fmt.Errorf("datamap: top-level value is %s, not a map", v.Tag())
	}
	if d.r.Len() != 0 {
		return nil, fmt.Errorf("datamap: %d trailing bytes after top-level map", d.r.Len())
	}
	return m, nil
}

func (d *decoder) readValue() (Value, error) {
	tagByte, err := d.r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("read tag: %w", err)
	}
	tag := Tag(tagByte)
	switch tag {
	case TagNull:
		return Null{}, nil
	case TagBool:
		b, err := d.r.ReadByte()
		if err != nil {
			return nil, err
		}
		return Bool(b != 0), nil
	case TagInt8:
		b, err := d.r.ReadByte()
		if err != nil {
			return nil, err
		}
		return Int8(int8(b)), nil
	case TagUint8:
		b, err := d.r.ReadByte()
		if err != nil {
			return nil, err
		}
		return Uint8(b), nil
	case TagInt16:
		var v int16
		if err := binary.Read(d.r, binary.BigEndian, &v); err != nil {
			return nil, err
		}
		return Int16(v), nil
	case TagUint16:
		var v uint16
		if err := binary.Read(d.r, binary.BigEndian, &v); err != nil {
			return nil, err
		}
		return Uint16(v), nil
	case TagInt32:
		var v int32
		if err := binary.Read(d.r, binary.BigEndian, &v); err != nil {
			return nil, err
		}
		return Int32(v), nil
	case TagUint32:
		var v uint32
		if err := binary.Read(d.r, binary.BigEndian, &v); err != nil {
			return nil, err
		}
		return Uint32(v), nil
	case TagInt64:
		var v int64
		if err := binary.Read(d.r, binary.BigEndian, &v); err != nil {
			return nil, err
		}
		return Int64(v), nil
	case TagUint64:
		var v uint64
		if err := binary.Read(d.r, binary.BigEndian, &v); err != nil {
			return nil, err
		}
		return Uint64(v), nil
	case TagFloat32:
		var bits uint32
		if err := binary.Read(d.r, binary.BigEndian, &bits); err != nil {
			return nil, err
		}
		return Float32(math.Float32frombits(bits)), nil
	case TagFloat64:
		var bits uint64
		if err := binary.Read(d.r, binary.BigEndian, &bits); err != nil {
			return nil, err
		}
		return Float64(math.Float64frombits(bits)), nil
	case TagString:
		b, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		return String(b), nil
	case TagBlob:
		b, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		return Blob(b), nil
	case TagVector:
		n, err := d.readLen()
		if err != nil {
			return nil, err
		}
		vec := make(Vector, n)
		for i := range vec {
			vec[i], err = d.readValue()
			if err != nil {
				return nil, fmt.Errorf("vector element %d: %w", i, err)
			}
		}
		return vec, nil
	case TagMap:
		n, err := d.readLen()
		if err != nil {
			return nil, err
		}
		m := &Map{entries: make([]entry, n)}
		for i := 0; i < n; i++ {
			key, err := d.readBytes()
			if err != nil {
				return nil, fmt.Errorf("map key %d: %w", i, err)
			}
			val, err := d.readValue()
			if err != nil {
				return nil, fmt.Errorf("map value for %q: %w", key, err)
			}
			m.entries[i] = entry{key: string(key), value: val}
		}
		return m, nil
	case TagFd:
		var idx uint32
		if err := binary.Read(d.r, binary.BigEndian, &idx); err != nil {
			return nil, err
		}
		c, err := fdctx.Get(d.tok)
		if err != nil {
			return nil, fmt.Errorf("deserializing fd without an active context: %w", err)
		}
		fd, err := c.Take(idx)
		if err != nil {
			return nil, err
		}
		return Fd(fd), nil
	default:
		return nil, fmt.Errorf("datamap: unknown tag %d", tagByte)
	}
}

func (d *decoder) readLen() (int, error) {
	var n uint32
	if err := binary.Read(d.r, binary.BigEndian, &n); err != nil {
		return 0, err
	}
	if n > maxCollectionLen {
		return 0, fmt.Errorf("length %d exceeds maximum %d", n, maxCollectionLen)
	}
	return int(n), nil
}

func (d *decoder) readBytes() ([]byte, error) {
	n, err := d.readLen()
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		return nil, fmt.Errorf("read %d bytes: %w", n, err)
	}
	return b, nil
}
