// Package messenger implements the symmetrical duplex pipeline (§4.D): it
// serializes outgoing signals and method calls, correlates method
// responses, and dispatches incoming frames to a Handler.
//
// Lifecycle is grounded on the teacher's connection-adapter pattern
// (pkg/adapter/base.go BaseAdapter): a sync.Once-guarded shutdown, an
// atomic connection/call counter, and a context cancelled on shutdown to
// unblock in-flight operations.
package messenger

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stardust-xr/stardust/internal/logger"
	"github.com/stardust-xr/stardust/pkg/wire"
)

// outboundQueueSize bounds the outbound MPSC queue. The spec requires at
// minimum a high-water-mark signal (§4.D); this implementation additionally
// bounds the queue so a wedged peer cannot grow it without limit, and
// surfaces ErrQueueFull to signal producers once full.
const outboundQueueSize = 4096

// highWaterMark is the outbound queue depth at which Metrics.SetOutboundQueueDepth
// observations are worth a warning log in addition to the metric (§4.D backpressure).
const highWaterMark = outboundQueueSize * 3 / 4

type outboundItem struct {
	frame wire.Frame
	fds   []int
}

// Messenger owns one wire.Conn and runs the flush/dispatch loop pair
// described in §4.D/§5.
type Messenger struct {
	conn    *wire.Conn
	handler Handler
	metrics Metrics

	nextCallID atomic.Uint64

	pendingMu sync.Mutex
	pending   map[uint64]chan CallResult

	outbound chan outboundItem

	shutdownOnce sync.Once
	closed       chan struct{}
	shutdownCtx  context.Context
	cancel       context.CancelFunc
}

// CallResult is the resolution of a CallMethod future: either Payload/Fds
// (method_response_ok) or a non-nil Err (method_response_err, or
// ErrConnectionClosed on shutdown/cancellation).
type CallResult struct {
	Payload []byte
	Fds     []int
	Err     error
}

// Option configures a Messenger at construction.
type Option func(*Messenger)

// WithMetrics attaches a Metrics recorder. Unset, Messenger uses a no-op
// implementation (zero overhead), matching the teacher's nil-Metrics
// convention.
func WithMetrics(m Metrics) Option {
	return func(msn *Messenger) { msn.metrics = m }
}

// New wraps conn, dispatching incoming signals/method_calls to handler.
func New(conn *wire.Conn, handler Handler, opts ...Option) *Messenger {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Messenger{
		conn:        conn,
		handler:     handler,
		metrics:     noopMetrics{},
		pending:     make(map[uint64]chan CallResult),
		outbound:    make(chan outboundItem, outboundQueueSize),
		closed:      make(chan struct{}),
		shutdownCtx: ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Done returns a channel closed once the Messenger has shut down.
func (m *Messenger) Done() <-chan struct{} { return m.closed }

// SendSignal enqueues a fire-and-forget frame (§4.D send_signal). It never
// blocks: a full outbound queue returns ErrQueueFull instead of waiting.
func (m *Messenger) SendSignal(nodeID, aspectID, opcode uint64, payload []byte, fds []int) error {
	select {
	case <-m.closed:
		return ErrConnectionClosed
	default:
	}

	item := outboundItem{
		frame: wire.Frame{
			Type:     wire.FrameSignal,
			NodeID:   nodeID,
			AspectID: aspectID,
			Opcode:   opcode,
			FdCount:  uint32(len(fds)),
			Payload:  payload,
		},
		fds: fds,
	}
	return m.enqueue(item)
}

// CallMethod enqueues a method_call frame, allocates a call_id, and blocks
// until a response arrives, ctx is cancelled, or the Messenger shuts down
// (§4.D call_method).
func (m *Messenger) CallMethod(ctx context.Context, nodeID, aspectID, opcode uint64, payload []byte, fds []int) (CallResult, error) {
	callID := m.nextCallID.Add(1)
	respCh := make(chan CallResult, 1)

	m.pendingMu.Lock()
	m.pending[callID] = respCh
	m.metrics.SetPendingCalls(len(m.pending))
	m.pendingMu.Unlock()

	item := outboundItem{
		frame: wire.Frame{
			Type:     wire.FrameMethodCall,
			NodeID:   nodeID,
			AspectID: aspectID,
			Opcode:   opcode,
			CallID:   callID,
			FdCount:  uint32(len(fds)),
			Payload:  payload,
		},
		fds: fds,
	}
	if err := m.enqueue(item); err != nil {
		m.removePending(callID)
		return CallResult{}, err
	}

	select {
	case res := <-respCh:
		return res, res.Err
	case <-ctx.Done():
		m.removePending(callID)
		return CallResult{}, ctx.Err()
	case <-m.closed:
		m.removePending(callID)
		return CallResult{}, ErrConnectionClosed
	}
}

func (m *Messenger) removePending(callID uint64) {
	m.pendingMu.Lock()
	delete(m.pending, callID)
	m.metrics.SetPendingCalls(len(m.pending))
	m.pendingMu.Unlock()
}

func (m *Messenger) enqueue(item outboundItem) error {
	select {
	case m.outbound <- item:
		depth := len(m.outbound)
		m.metrics.SetOutboundQueueDepth(depth)
		if depth >= highWaterMark {
			logger.Warn("outbound queue above high-water mark", logger.Bytes(depth))
		}
		return nil
	case <-m.closed:
		return ErrConnectionClosed
	default:
		return ErrQueueFull
	}
}

// Close initiates shutdown: both loops are unblocked by closing the
// underlying connection, and every pending call resolves to
// ErrConnectionClosed (§4.D Shutdown, §7 "A crashed peer manifests as
// ConnectionClosed on every pending future").
func (m *Messenger) Close() error {
	var err error
	m.shutdownOnce.Do(func() {
		close(m.closed)
		m.cancel()
		err = m.conn.Close()
		m.failAllPending(ErrConnectionClosed)
	})
	return err
}

func (m *Messenger) failAllPending(cause error) {
	m.pendingMu.Lock()
	defer m.pendingMu.Unlock()
	for id, ch := range m.pending {
		ch <- CallResult{Err: cause}
		delete(m.pending, id)
	}
	m.metrics.SetPendingCalls(0)
}
