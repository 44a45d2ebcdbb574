package messenger

import "golang.org/x/sys/unix"

// closeFd closes a raw file descriptor, used when a frame's fds cannot be
// handed to their destination (send failure, unknown call id, handler
// error) and must not simply leak (§5 fd semantics).
func closeFd(fd int) error {
	return unix.Close(fd)
}
