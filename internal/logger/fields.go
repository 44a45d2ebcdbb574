package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Wire routing
	// ========================================================================
	KeyNodeID   = "node_id"   // Node routing key (u64 on the wire)
	KeyPath     = "path"      // Canonical node path
	KeyAspectID = "aspect_id" // FNV-1a aspect id
	KeyAspect   = "aspect"    // Aspect name
	KeyOpcode   = "opcode"    // FNV-1a member opcode
	KeyMember   = "member"    // Member name
	KeyCallID   = "call_id"   // Method call correlation id
	KeyFrame    = "frame"     // Frame type: signal, method_call, method_response_ok, method_response_err

	// ========================================================================
	// Client / instance
	// ========================================================================
	KeyClientID = "client_id" // Process-unique client identifier
	KeyInstance = "instance"  // Socket instance number (stardust-N)
	KeySocket   = "socket"    // Socket path

	// ========================================================================
	// Fd transport
	// ========================================================================
	KeyFdCount = "fd_count" // Number of ancillary fds carried by a frame
	KeyFdIndex = "fd_index" // Index into the per-frame fd table

	// ========================================================================
	// Operation metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Taxonomy error code (§7)
	KeyBytes      = "bytes"       // Payload size in bytes

	// ========================================================================
	// IDL / codegen
	// ========================================================================
	KeySchema   = "schema"   // Schema file path
	KeyProtocol = "protocol" // Protocol name from a schema document
)

// NodeID returns a slog.Attr for a node routing key.
func NodeID(id uint64) slog.Attr {
	return slog.Uint64(KeyNodeID, id)
}

// Path returns a slog.Attr for a canonical node path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// AspectID returns a slog.Attr for an FNV-1a aspect id, hex-formatted.
func AspectID(id uint64) slog.Attr {
	return slog.String(KeyAspectID, fmt.Sprintf("0x%016x", id))
}

// Aspect returns a slog.Attr for an aspect name.
func Aspect(name string) slog.Attr {
	return slog.String(KeyAspect, name)
}

// Opcode returns a slog.Attr for an FNV-1a member opcode, hex-formatted.
func Opcode(op uint64) slog.Attr {
	return slog.String(KeyOpcode, fmt.Sprintf("0x%016x", op))
}

// Member returns a slog.Attr for a member name.
func Member(name string) slog.Attr {
	return slog.String(KeyMember, name)
}

// CallID returns a slog.Attr for a method call correlation id.
func CallID(id uint64) slog.Attr {
	return slog.Uint64(KeyCallID, id)
}

// Frame returns a slog.Attr for a frame type name.
func Frame(kind string) slog.Attr {
	return slog.String(KeyFrame, kind)
}

// ClientID returns a slog.Attr for a process-unique client identifier.
func ClientID(id string) slog.Attr {
	return slog.String(KeyClientID, id)
}

// Instance returns a slog.Attr for a socket instance number.
func Instance(n int) slog.Attr {
	return slog.Int(KeyInstance, n)
}

// Socket returns a slog.Attr for a socket path.
func Socket(path string) slog.Attr {
	return slog.String(KeySocket, path)
}

// FdCount returns a slog.Attr for an ancillary fd count.
func FdCount(n int) slog.Attr {
	return slog.Int(KeyFdCount, n)
}

// FdIndex returns a slog.Attr for a per-frame fd table index.
func FdIndex(i uint32) slog.Attr {
	return slog.Any(KeyFdIndex, i)
}

// DurationMs returns a slog.Attr for duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a taxonomy error code.
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// Bytes returns a slog.Attr for a payload size.
func Bytes(n int) slog.Attr {
	return slog.Int(KeyBytes, n)
}

// Schema returns a slog.Attr for a schema file path.
func Schema(path string) slog.Attr {
	return slog.String(KeySchema, path)
}

// Protocol returns a slog.Attr for a protocol name.
func Protocol(name string) slog.Attr {
	return slog.String(KeyProtocol, name)
}
