// Package socket implements Stardust's instance discovery and locking
// (§4.A): finding, locking, and binding/connecting the per-instance AF_UNIX
// socket that a server and its clients share.
package socket

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/stardust-xr/stardust/internal/logger"
)

// MaxInstance is the highest instance number attempted (§4.A: stardust-0 …
// stardust-32).
const MaxInstance = 32

// envInstance is the client-side override naming an absolute socket path or
// a bare instance name (§6).
const envInstance = "STARDUST_INSTANCE"

// ErrNoFreeInstance is returned by AcquireServerSocket when every instance
// slot 0..MaxInstance is already locked.
var ErrNoFreeInstance = errors.New("socket: no free instance")

// ErrRuntimeDirUndefined is returned when XDG_RUNTIME_DIR is unset.
var ErrRuntimeDirUndefined = errors.New("socket: XDG_RUNTIME_DIR is undefined")

// ServerSocket is the result of a successful server-side instance
// acquisition: a bound listener plus the lock that must be held for the
// server's lifetime.
type ServerSocket struct {
	Instance int
	Path     string
	Listener *net.UnixListener

	lockFile *os.File
}

// Close unlinks the listening socket and releases the instance lock. The
// lock file itself is left in place (advisory locks are released on fd
// close regardless).
func (s *ServerSocket) Close() error {
	var errs []error
	if s.Listener != nil {
		if err := s.Listener.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.lockFile != nil {
		if err := unix.Flock(int(s.lockFile.Fd()), unix.LOCK_UN); err != nil {
			errs = append(errs, err)
		}
		if err := s.lockFile.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func runtimeDir() (string, error) {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		return "", ErrRuntimeDirUndefined
	}
	return dir, nil
}

// AcquireServerSocket walks instances 0..MaxInstance, taking an exclusive
// non-blocking advisory lock on each candidate's lock file until one
// succeeds, then removes any stale socket and binds (§4.A).
func AcquireServerSocket() (*ServerSocket, error) {
	dir, err := runtimeDir()
	if err != nil {
		return nil, err
	}

	for n := 0; n <= MaxInstance; n++ {
		lockPath := filepath.Join(dir, fmt.Sprintf("stardust-%d.lock", n))
		sockPath := filepath.Join(dir, fmt.Sprintf("stardust-%d", n))

		lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
		if err != nil {
			return nil, fmt.Errorf("socket: open lock file %s: %w", lockPath, err)
		}

		if err := unix.Flock(int(lockFile.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
			lockFile.Close()
			if errors.Is(err, unix.EWOULDBLOCK) {
				continue
			}
			return nil, fmt.Errorf("socket: flock %s: %w", lockPath, err)
		}

		if err := os.Remove(sockPath); err != nil && !os.IsNotExist(err) {
			lockFile.Close()
			return nil, fmt.Errorf("socket: remove stale socket %s: %w", sockPath, err)
		}

		addr, err := net.ResolveUnixAddr("unix", sockPath)
		if err != nil {
			lockFile.Close()
			return nil, err
		}
		listener, err := net.ListenUnix("unix", addr)
		if err != nil {
			lockFile.Close()
			return nil, fmt.Errorf("socket: listen %s: %w", sockPath, err)
		}

		logger.Info("acquired instance", logger.Instance(n), logger.Socket(sockPath))
		return &ServerSocket{Instance: n, Path: sockPath, Listener: listener, lockFile: lockFile}, nil
	}

	return nil, ErrNoFreeInstance
}

// ResolveClientPath resolves the socket path a client should connect to,
// honoring STARDUST_INSTANCE (absolute path, or a bare "stardust-N" name
// resolved against the runtime directory; default "stardust-0") (§6).
func ResolveClientPath() (string, error) {
	instance := os.Getenv(envInstance)
	if instance == "" {
		instance = "stardust-0"
	}
	if filepath.IsAbs(instance) {
		return instance, nil
	}
	dir, err := runtimeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, instance), nil
}

// ConnectClient dials the resolved instance socket, returning a duplex
// stream that supports ancillary (SCM_RIGHTS) fd passing (§4.A).
func ConnectClient() (*net.UnixConn, error) {
	path, err := ResolveClientPath()
	if err != nil {
		return nil, err
	}
	addr, err := net.ResolveUnixAddr("unix", path)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("socket: connect %s: %w", path, err)
	}
	logger.Info("connected", logger.Socket(path))
	return conn, nil
}
