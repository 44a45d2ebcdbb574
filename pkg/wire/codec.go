package wire

import (
	"encoding/binary"
	"fmt"
)

// Encode serializes f into a length-prefixed byte buffer ready for a single
// Write/Sendmsg call (§4.C). The first four bytes are the big-endian length
// of everything that follows, excluding themselves.
func Encode(f Frame) ([]byte, error) {
	body := headerSize + len(f.Payload)
	if body > MaxFrameSize {
		return nil, &ErrFrameTooLarge{Size: body}
	}

	buf := make([]byte, 4+body)
	binary.BigEndian.PutUint32(buf[0:4], uint32(body))
	binary.BigEndian.PutUint32(buf[4:8], uint32(f.Type))
	binary.BigEndian.PutUint64(buf[8:16], f.NodeID)
	binary.BigEndian.PutUint64(buf[16:24], f.AspectID)
	binary.BigEndian.PutUint64(buf[24:32], f.Opcode)
	binary.BigEndian.PutUint64(buf[32:40], f.CallID)
	binary.BigEndian.PutUint32(buf[40:44], f.FdCount)
	copy(buf[44:], f.Payload)
	return buf, nil
}

// DecodeHeader reads the length prefix and header fields from buf, which
// must hold at least 4+headerSize bytes. It returns the frame (with
// Payload unset) and the total number of bytes (length prefix included)
// the full frame occupies, so the caller can decide how many more bytes to
// read before calling DecodeBody.
func DecodeHeader(buf []byte) (Frame, int, error) {
	if len(buf) < 4 {
		return Frame{}, 0, ErrTruncated
	}
	body := int(binary.BigEndian.Uint32(buf[0:4]))
	total := 4 + body
	if body > MaxFrameSize {
		return Frame{}, 0, &ErrFrameTooLarge{Size: body}
	}
	if len(buf) < 4+headerSize {
		return Frame{}, 0, ErrTruncated
	}

	f := Frame{
		Type:     FrameType(binary.BigEndian.Uint32(buf[4:8])),
		NodeID:   binary.BigEndian.Uint64(buf[8:16]),
		AspectID: binary.BigEndian.Uint64(buf[16:24]),
		Opcode:   binary.BigEndian.Uint64(buf[24:32]),
		CallID:   binary.BigEndian.Uint64(buf[32:40]),
		FdCount:  binary.BigEndian.Uint32(buf[40:44]),
	}
	return f, total, nil
}

// Decode parses a complete frame (length prefix + header + payload) from
// buf, which must hold exactly the bytes reported by a prior DecodeHeader
// call (or more; trailing bytes are ignored by the caller's framing loop).
func Decode(buf []byte) (Frame, error) {
	f, total, err := DecodeHeader(buf)
	if err != nil {
		return Frame{}, err
	}
	if len(buf) < total {
		return Frame{}, ErrTruncated
	}
	payloadStart := 4 + headerSize
	f.Payload = append([]byte(nil), buf[payloadStart:total]...)
	return f, nil
}

// FrameLen reports the total wire length (length prefix included) for a
// frame carrying the given payload size, or an error if it would exceed
// MaxFrameSize.
func FrameLen(payloadSize int) (int, error) {
	body := headerSize + payloadSize
	if body > MaxFrameSize {
		return 0, &ErrFrameTooLarge{Size: body}
	}
	return 4 + body, nil
}

// ValidateFdCount checks that a decoded frame's declared fd_count matches
// the number of ancillary fds actually received for it, surfacing a
// descriptive error rather than silently truncating or padding.
func ValidateFdCount(f Frame, gotFds int) error {
	if int(f.FdCount) != gotFds {
		return fmt.Errorf("wire: frame declared %d fds, received %d", f.FdCount, gotFds)
	}
	return nil
}
