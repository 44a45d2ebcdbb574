package messenger

import "github.com/stardust-xr/stardust/pkg/wire"

// Handler resolves an incoming signal or method_call frame to a result,
// mirroring the teacher's dispatch-returns-a-result pattern
// (internal/protocol/nfs/dispatch.go HandlerResult) adapted from
// NFS-procedure dispatch to (aspect_id, opcode) dispatch (§4.E).
//
// The dispatch loop passes the frame's received fds as they are; installing
// them in an fd-deserialization context (§4.B, §4.E) is up to the
// implementation (scenegraph.Registry.HandleFrame does so).
type Handler interface {
	HandleFrame(f wire.Frame, fds []int) HandlerResult
}

// HandlerResult carries a handler's outcome back to the dispatch loop. For
// signals, Err (if non-nil) is logged and dropped — there is no response
// channel. For method calls, a non-nil Err becomes a method_response_err
// frame; otherwise Payload/Fds become a method_response_ok frame.
type HandlerResult struct {
	Payload []byte
	Fds     []int
	Err     error
}
