package endpoint

import (
	"net"
	"os"
	"sync/atomic"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Maximum number of pending connections.
const Backlog = 1024

// A listening Unix domain socket bound to a filesystem path.
type Endpoint struct {
	path     string            // Filesystem path of the socket.
	listener *net.UnixListener // Listener shared by all workers.
	closing  atomic.Bool       // Set once by Shutdown.
	removed  atomic.Bool       // Set once by Close.
}

// Creates the socket at path and starts listening.
//
// Any existing entry at path is removed first. Errors wrap [ErrEndpoint] and
// are not recoverable.
func Create(path string) (*Endpoint, error) {
	if path == "" {
		return nil, errors.Wrap(ErrEndpoint, "socket path is empty")
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrEndpoint, "failed to remove stale socket %s: %v", path, err)
	}

	fd, err := socket()
	if err != nil {
		return nil, errors.Wrapf(ErrEndpoint, "socket: %v", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrUnix{Name: path}); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(ErrEndpoint, "failed to bind %s: %v", path, err)
	}

	if err := unix.Listen(fd, Backlog); err != nil {
		unix.Close(fd)
		os.Remove(path)
		return nil, errors.Wrapf(ErrEndpoint, "failed to listen on %s: %v", path, err)
	}

	// FileListener dups the descriptor; f is closed either way.
	f := os.NewFile(uintptr(fd), path)
	defer f.Close()

	ln, err := net.FileListener(f)
	if err != nil {
		os.Remove(path)
		return nil, errors.Wrapf(ErrEndpoint, "failed to wrap listener for %s: %v", path, err)
	}

	ul, ok := ln.(*net.UnixListener)
	if !ok {
		ln.Close()
		os.Remove(path)
		return nil, errors.Wrapf(ErrEndpoint, "%s is not a unix listener", path)
	}

	return &Endpoint{path: path, listener: ul}, nil
}

// Creates a close-on-exec stream socket. The fork lock keeps a concurrent
// fork from inheriting the descriptor before the flag is set.
func socket() (int, error) {
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, err
	}
	unix.CloseOnExec(fd)
	return fd, nil
}

// Returns the socket path.
func (e *Endpoint) Path() string {
	return e.path
}

// Returns the listener address.
func (e *Endpoint) Addr() net.Addr {
	return e.listener.Addr()
}

// Waits for the next connection.
//
// Safe for concurrent use. After [Endpoint.Shutdown] it returns an error and
// [Endpoint.Closing] reports true.
func (e *Endpoint) Accept() (*net.UnixConn, error) {
	return e.listener.AcceptUnix()
}

// Reports whether [Endpoint.Shutdown] has been called.
func (e *Endpoint) Closing() bool {
	return e.closing.Load()
}

// Stops accepting connections. Only the first call has an effect.
//
// Established connections are not affected.
func (e *Endpoint) Shutdown() error {
	if !e.closing.CompareAndSwap(false, true) {
		return nil
	}

	var shutdownErr error
	if rc, err := e.listener.SyscallConn(); err == nil {
		rc.Control(func(fd uintptr) {
			shutdownErr = unix.Shutdown(int(fd), unix.SHUT_RDWR)
		})
	}

	err := e.listener.Close()

	// Some kernels refuse shutdown(2) on a listening socket; closing the
	// listener is what unblocks Accept.
	if shutdownErr != nil && shutdownErr != unix.ENOTCONN && shutdownErr != unix.EINVAL {
		return errors.Wrapf(ErrEndpoint, "shutdown %s: %v", e.path, shutdownErr)
	}
	if err != nil {
		return errors.Wrapf(ErrEndpoint, "close %s: %v", e.path, err)
	}
	return nil
}

// Shuts the endpoint down and removes the socket file.
func (e *Endpoint) Close() error {
	err := e.Shutdown()

	if e.removed.CompareAndSwap(false, true) {
		if rerr := os.Remove(e.path); rerr != nil && !os.IsNotExist(rerr) && err == nil {
			err = errors.Wrapf(ErrEndpoint, "failed to remove socket %s: %v", e.path, rerr)
		}
	}
	return err
}
