package messenger

import (
	"context"
	"errors"

	"github.com/stardust-xr/stardust/internal/logger"
	"github.com/stardust-xr/stardust/pkg/wire"
)

// RunFlush drives the flush half (§4.D): it awaits outbound items and
// writes frames until ctx is cancelled or the Messenger closes. Intended to
// run as its own goroutine, the same cooperative-task shape as the
// teacher's accept loop (pkg/adapter/base.go ServeWithFactory).
func (m *Messenger) RunFlush(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.closed:
			return ErrConnectionClosed
		case item := <-m.outbound:
			if err := m.flushOne(item); err != nil {
				m.Close()
				return err
			}
		}
	}
}

// flushOne writes a single outbound frame; on failure the caller's fds are
// the Messenger's responsibility to close, since enqueue already
// transferred ownership on successful send (§5 "caller relinquishes
// ownership on successful enqueue; on send failure the buffered fds are
// closed").
func (m *Messenger) flushOne(item outboundItem) error {
	if err := m.conn.WriteFrame(item.frame, item.fds); err != nil {
		closeFds(item.fds)
		return err
	}
	m.metrics.RecordFrameSent(item.frame.Type.String())
	if len(item.fds) > 0 {
		m.metrics.RecordFdsSent(len(item.fds))
	}
	return nil
}

// RunDispatch drives the dispatch half (§4.D): it reads frames, routes
// method_response_* to pending callers, and hands signal/method_call
// frames to the Handler, until ctx is cancelled or the Messenger closes.
func (m *Messenger) RunDispatch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.closed:
			return ErrConnectionClosed
		default:
		}

		f, fds, err := m.conn.ReadFrame()
		if err != nil {
			m.Close()
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		m.metrics.RecordFrameReceived(f.Type.String())
		if len(fds) > 0 {
			m.metrics.RecordFdsReceived(len(fds))
		}

		m.dispatchOne(f, fds)
	}
}

func (m *Messenger) dispatchOne(f wire.Frame, fds []int) {
	switch f.Type {
	case wire.FrameMethodResponseOK, wire.FrameMethodResponseErr:
		m.resolveResponse(f, fds)
	case wire.FrameSignal:
		result := m.handler.HandleFrame(f, fds)
		if result.Err != nil {
			logger.Warn("signal handler error", logger.Err(result.Err), logger.NodeID(f.NodeID), logger.Opcode(f.Opcode))
			closeFds(result.Fds)
		}
	case wire.FrameMethodCall:
		result := m.handler.HandleFrame(f, fds)
		m.respond(f, result)
	default:
		logger.Warn("dropping frame of unknown type", logger.Opcode(uint64(f.Type)))
		closeFds(fds)
	}
}

// resolveResponse looks up call_id (carried in Opcode for response frames,
// §4.C), removes the pending slot, and fulfils it. An unknown call_id is
// dropped with a warning — it may be a racing cancellation, never fatal
// (§4.D).
func (m *Messenger) resolveResponse(f wire.Frame, fds []int) {
	callID := f.CallID
	m.pendingMu.Lock()
	ch, ok := m.pending[callID]
	if ok {
		delete(m.pending, callID)
		m.metrics.SetPendingCalls(len(m.pending))
	}
	m.pendingMu.Unlock()

	if !ok {
		logger.Warn("response for unknown call id", logger.CallID(callID))
		closeFds(fds)
		return
	}

	res := CallResult{Payload: f.Payload, Fds: fds}
	if f.Type == wire.FrameMethodResponseErr {
		res.Err = &MethodError{Message: string(f.Payload)}
	}
	ch <- res
}

func (m *Messenger) respond(call wire.Frame, result HandlerResult) {
	respType := wire.FrameMethodResponseOK
	payload := result.Payload
	fds := result.Fds
	if result.Err != nil {
		respType = wire.FrameMethodResponseErr
		payload = []byte(result.Err.Error())
		fds = nil
	}

	frame := wire.Frame{
		Type:    respType,
		NodeID:  call.NodeID,
		CallID:  call.CallID,
		Opcode:  call.CallID, // response frames carry the original call_id in Opcode (§4.C)
		FdCount: uint32(len(fds)),
		Payload: payload,
	}
	if err := m.enqueue(outboundItem{frame: frame, fds: fds}); err != nil {
		logger.Warn("failed to enqueue method response", logger.Err(err), logger.CallID(call.CallID))
		closeFds(fds)
	}
}

func closeFds(fds []int) {
	for _, fd := range fds {
		_ = closeFd(fd)
	}
}
