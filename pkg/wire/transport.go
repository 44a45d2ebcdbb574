package wire

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// oobBufSize bounds the ancillary-data buffer passed to each ReadMsgUnix
// call; generous relative to any single frame's fd_count.
const oobBufSize = 4096

// readChunk is how much plain payload bytes we ask the kernel for per
// ReadMsgUnix call when no frame boundary forces a smaller read.
const readChunk = 64 * 1024

// fdBatch records a run of fds that arrived attached to the recvmsg call
// whose data ended at position streamPos in the logical byte stream
// (Linux's AF_UNIX SOCK_STREAM implementation stops a recvmsg at a
// control-message boundary, so a batch's fds always belong to the frame
// whose bytes end exactly there — see ReadFrame).
type fdBatch struct {
	streamPos int64
	fds       []int
}

// Conn wraps a *net.UnixConn with frame-at-a-time read/write, attaching and
// recovering ancillary (SCM_RIGHTS) file descriptors one sendmsg/recvmsg
// per frame (§4.C: "fds are attached to the frame that carries them via an
// OS-level kernel-buffer association").
//
// Conn reads via ReadMsgUnix directly rather than through a buffered
// net.Conn reader: a plain Read never surfaces ancillary data, so any
// bufio wrapping here would silently drop fds.
type Conn struct {
	uc *net.UnixConn

	buf       []byte // unconsumed payload bytes, oldest first
	consumed  int64  // logical stream position of buf[0]
	fdBatches []fdBatch
}

// NewConn wraps uc for frame-oriented use.
func NewConn(uc *net.UnixConn) *Conn {
	return &Conn{uc: uc}
}

// Close closes the underlying connection, unblocking any in-flight
// WriteFrame/ReadFrame call.
func (c *Conn) Close() error {
	return c.uc.Close()
}

// WriteFrame encodes f and writes it in one syscall along with fds as
// ancillary SCM_RIGHTS data. On failure the caller retains ownership of
// fds; §5 requires the caller to close buffered fds on send failure, which
// WriteFrame cannot do on the caller's behalf since it never took ownership.
func (c *Conn) WriteFrame(f Frame, fds []int) error {
	if int(f.FdCount) != len(fds) {
		return fmt.Errorf("wire: frame fd_count %d does not match %d provided fds", f.FdCount, len(fds))
	}
	buf, err := Encode(f)
	if err != nil {
		return err
	}

	var oob []byte
	if len(fds) > 0 {
		oob = unix.UnixRights(fds...)
	}

	_, _, err = c.uc.WriteMsgUnix(buf, oob, nil)
	return err
}

// ReadFrame reads one complete frame and its ancillary fds, blocking until
// the header, payload, and any attached fds have all arrived.
func (c *Conn) ReadFrame() (Frame, []int, error) {
	header, err := c.readAtLeast(4 + headerSize)
	if err != nil {
		return Frame{}, nil, err
	}
	_, total, err := DecodeHeader(header)
	if err != nil {
		return Frame{}, nil, err
	}

	full, err := c.readAtLeast(total)
	if err != nil {
		return Frame{}, nil, err
	}
	f, err := Decode(full[:total])
	if err != nil {
		return Frame{}, nil, err
	}

	endPos := c.consumed + int64(total)
	c.buf = c.buf[total:]
	c.consumed = endPos

	fds := c.takeBatchesUpTo(endPos)
	if err := ValidateFdCount(f, len(fds)); err != nil {
		for _, fd := range fds {
			unix.Close(fd)
		}
		return Frame{}, nil, err
	}
	return f, fds, nil
}

// readAtLeast ensures c.buf holds at least n bytes, growing it with further
// ReadMsgUnix calls (and recording any ancillary fds they carry) as needed.
// It returns c.buf without consuming it.
func (c *Conn) readAtLeast(n int) ([]byte, error) {
	for len(c.buf) < n {
		chunk := make([]byte, readChunk)
		oob := make([]byte, oobBufSize)
		nr, noob, _, _, err := c.uc.ReadMsgUnix(chunk, oob)
		if nr == 0 && err != nil {
			return nil, err
		}
		c.buf = append(c.buf, chunk[:nr]...)

		if noob > 0 {
			fds, perr := parseRights(oob[:noob])
			if perr == nil && len(fds) > 0 {
				c.fdBatches = append(c.fdBatches, fdBatch{
					streamPos: c.consumed + int64(len(c.buf)),
					fds:       fds,
				})
			}
		}
		if err != nil {
			if len(c.buf) >= n {
				break
			}
			return nil, err
		}
	}
	return c.buf, nil
}

// takeBatchesUpTo removes and returns, in order, the fds from every batch
// whose recorded stream position is <= pos.
func (c *Conn) takeBatchesUpTo(pos int64) []int {
	var fds []int
	i := 0
	for ; i < len(c.fdBatches); i++ {
		if c.fdBatches[i].streamPos > pos {
			break
		}
		fds = append(fds, c.fdBatches[i].fds...)
	}
	c.fdBatches = c.fdBatches[i:]
	return fds
}

func parseRights(oob []byte) ([]int, error) {
	cmsgs, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return nil, err
	}
	var fds []int
	for _, cmsg := range cmsgs {
		got, err := unix.ParseUnixRights(&cmsg)
		if err != nil {
			continue
		}
		fds = append(fds, got...)
	}
	return fds, nil
}
