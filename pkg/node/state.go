package node

import (
	"sync"
	"sync/atomic"

	"github.com/stardust-xr/stardust/internal/scenegraph"
	"github.com/stardust-xr/stardust/pkg/datamap/fdctx"
)

// Handler serializes one member invocation's result. tok is the
// fd-deserialization context already active for this call (§4.B); the
// handler decodes payload with it and, for a reply carrying fds, encodes
// with it too.
type Handler func(tok fdctx.Token, payload []byte) (respPayload []byte, respFds []int, err error)

// state is the single shared object behind every Handle (owning or alias)
// referring to one node id: handler tables, event queues, and the
// destroyed flag live here so aliasing doesn't fragment them (§3 Node).
// state implements scenegraph.NodeRef and is what gets registered.
type state struct {
	id   uint64
	path string

	handlersMu sync.RWMutex
	handlers   map[uint64]map[uint64]Handler // aspect_id -> opcode -> Handler

	eventsMu sync.Mutex
	events   map[uint64]*eventRing // aspect_id -> ring of peer-side events

	destroyed atomic.Bool
}

var _ scenegraph.NodeRef = (*state)(nil)

func newState(id uint64, path string) *state {
	return &state{
		id:       id,
		path:     path,
		handlers: make(map[uint64]map[uint64]Handler),
		events:   make(map[uint64]*eventRing),
	}
}

func (s *state) ID() uint64 { return s.id }

// RegisterHandler installs a handler for (aspectID, opcode), used by
// generated stubs for event (peer-side) signal/method members (§4.H.2).
func (s *state) RegisterHandler(aspectID, opcode uint64, h Handler) error {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	table, ok := s.handlers[aspectID]
	if !ok {
		table = make(map[uint64]Handler)
		s.handlers[aspectID] = table
	}
	if _, exists := table[opcode]; exists {
		return ErrHandlerAlreadyRegistered
	}
	table[opcode] = h
	return nil
}

// ringFor returns (creating if absent) the event ring for aspectID, used
// by generated stubs that register a peer-side event parser and by
// recv_<aspect>_event() callers (§4.E "Aspect event queues").
func (s *state) ringFor(aspectID uint64) *eventRing {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	r, ok := s.events[aspectID]
	if !ok {
		r = newEventRing()
		s.events[aspectID] = r
	}
	return r
}

// PushEvent enqueues an already decoded peer-side event; called by generated
// event parsers from within Dispatch (so it runs on the dispatch loop, but
// only does an O(1) enqueue — user code runs later via RecvEvent).
func (s *state) PushEvent(aspectID uint64, ev any) error {
	return s.ringFor(aspectID).Push(ev)
}

// RecvEvent is the non-blocking pull generated recv_<aspect>_event()
// wraps; ok is false when the ring is empty.
func (s *state) RecvEvent(aspectID uint64) (any, bool) {
	return s.ringFor(aspectID).Pop()
}

// Dispatch implements scenegraph.NodeRef (§4.E dispatch pseudocode).
func (s *state) Dispatch(tok fdctx.Token, aspectID, opcode uint64, payload []byte, isMethod bool) ([]byte, []int, error) {
	s.handlersMu.RLock()
	table, ok := s.handlers[aspectID]
	var h Handler
	if ok {
		h, ok = table[opcode]
	}
	s.handlersMu.RUnlock()

	if !ok {
		if isMethod {
			return nil, nil, scenegraph.ErrMethodNotFound
		}
		return nil, nil, scenegraph.ErrSignalNotFound
	}
	return h(tok, payload)
}

func (s *state) markDestroyed() {
	s.destroyed.Store(true)
	s.eventsMu.Lock()
	for _, r := range s.events {
		r.close()
	}
	s.eventsMu.Unlock()
}

func (s *state) isDestroyed() bool { return s.destroyed.Load() }
