// Package fdctx implements the per-call file-descriptor table that threads
// fds through exactly one Datamap serialize or deserialize call (§3 "File
// descriptor table", §4.B, §9 design notes).
//
// The table is goroutine-scoped rather than a global, and nesting is
// forbidden: entering a second context on a goroutine that already has one
// active returns ErrAlreadyActive (SPEC_FULL.md §9 resolves the open
// question this way rather than defining a stack discipline).
package fdctx

import (
	"errors"
	"sync"
)

// ErrAlreadyActive is returned by Enter when a context is already active on
// the calling goroutine.
var ErrAlreadyActive = errors.New("fdctx: a serialize/deserialize context is already active on this goroutine")

// ErrNoContext is returned when code tries to push or take an fd outside of
// an active context.
var ErrNoContext = errors.New("fdctx: no active fd context")

// ErrAlreadyConsumed is returned when a table index is read twice; the
// spec's fd-conservation invariant requires each received fd be consumed
// exactly once (§8).
var ErrAlreadyConsumed = errors.New("fdctx: fd index already consumed")

// Context is the table built while serializing (owned fds pushed in,
// indices handed out) or installed while deserializing (owned fds received
// off the wire, indices resolved to fds, each exactly once).
type Context struct {
	fds      []int
	consumed []bool
}

var (
	mu     sync.Mutex
	active = map[uint64]*Context{}
)

// goroutineID is deliberately not implemented via runtime trickery; callers
// identify "the calling goroutine" by passing a stable token (typically the
// Messenger's own call-id or a dedicated slot id). This keeps the package
// free of unsafe stack-parsing hacks while still giving every concurrent
// caller its own table.
type Token uint64

// Enter installs a fresh serialize context for tok and returns it, or
// ErrAlreadyActive if tok already has one. Callers MUST call Exit(tok)
// (directly or deferred) before reusing tok.
func Enter(tok Token) (*Context, error) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := active[uint64(tok)]; ok {
		return nil, ErrAlreadyActive
	}
	c := &Context{}
	active[uint64(tok)] = c
	return c, nil
}

// EnterWithFds installs a deserialize context pre-populated with the fds
// received alongside a frame.
func EnterWithFds(tok Token, fds []int) (*Context, error) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := active[uint64(tok)]; ok {
		return nil, ErrAlreadyActive
	}
	c := &Context{fds: fds, consumed: make([]bool, len(fds))}
	active[uint64(tok)] = c
	return c, nil
}

// Exit removes tok's context. Any fds pushed during a serialize context that
// were never sent must be closed by the caller before calling Exit on a
// failed send (§5 "Fd semantics").
func Exit(tok Token) {
	mu.Lock()
	defer mu.Unlock()
	delete(active, uint64(tok))
}

// Get returns the active context for tok, or ErrNoContext.
func Get(tok Token) (*Context, error) {
	mu.Lock()
	defer mu.Unlock()
	c, ok := active[uint64(tok)]
	if !ok {
		return nil, ErrNoContext
	}
	return c, nil
}

// Push records an owned fd for serialization and returns its table index.
func (c *Context) Push(fd int) uint32 {
	idx := uint32(len(c.fds))
	c.fds = append(c.fds, fd)
	return idx
}

// Take resolves index to its fd exactly once; a second call for the same
// index returns ErrAlreadyConsumed (fd-conservation invariant, §8).
func (c *Context) Take(index uint32) (int, error) {
	if int(index) >= len(c.fds) {
		return -1, errors.New("fdctx: index out of range")
	}
	if c.consumed[index] {
		return -1, ErrAlreadyConsumed
	}
	c.consumed[index] = true
	return c.fds[index], nil
}

// PushedFds returns the fds accumulated by Push calls, in table order — the
// caller sends these as the frame's ancillary data.
func (c *Context) PushedFds() []int {
	return c.fds
}

// Unconsumed returns the indices of received fds that were never Taken.
// Per §4.B these are logged as UnusedFd warnings, not treated as errors.
func (c *Context) Unconsumed() []uint32 {
	var out []uint32
	for i, done := range c.consumed {
		if !done {
			out = append(out, uint32(i))
		}
	}
	return out
}
