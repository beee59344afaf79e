//go:build unix

package process

import (
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// Exit codes reported for children that never ran the requested program.
const (
	ExitNotFound      = 127 // Program or working directory does not exist.
	ExitCannotExecute = 126 // Any other exec or chdir failure.
)

// Outcome of a [Run].
type Result struct {
	Pid      int            // Child pid, 0 if no child was reaped by Run.
	ExitCode int            // Exit status, or 128+signal if the child was killed.
	Signal   syscall.Signal // Signal that killed the child, or 0.
	Bytes    int64          // Bytes relayed to the sink.
	Method   Method         // Relay method used.
	StartErr error          // Why the program could not be started, if it was not.
}

// Reports whether the program ran and exited with status 0.
func (r *Result) Success() bool {
	return r.StartErr == nil && r.ExitCode == 0
}

// Runs argv in dir and relays its standard output to sink.
//
// argv[0] is looked up in PATH unless it contains a slash, in which case it
// is resolved by exec relative to dir. An empty dir keeps the daemon's
// working directory. The child's standard input is /dev/null and its
// standard error is the daemon's.
//
// A program that cannot be started is not an error: the returned result has
// [Result.StartErr] set. Errors wrap [ErrSpawn] when no child could be
// created, [ErrRelay] when writing to sink failed and [ErrWait] when the
// child could not be reaped. On a relay failure the pipe is closed so the
// child is not left blocked, and it is still reaped before returning.
func Run(argv []string, dir string, sink io.Writer) (*Result, error) {
	if len(argv) == 0 {
		argv = []string{""}
	}

	path, err := lookPath(argv[0])
	if err != nil {
		return startFailure(err), nil
	}

	stdin, err := os.Open(os.DevNull)
	if err != nil {
		return nil, errors.Wrapf(ErrSpawn, "open %s: %v", os.DevNull, err)
	}
	defer stdin.Close()

	r, w, err := newPipe()
	if err != nil {
		return nil, errors.Wrapf(ErrSpawn, "pipe: %v", err)
	}
	defer r.Close()

	pid, err := syscall.ForkExec(path, argv, &syscall.ProcAttr{
		Dir:   dir,
		Env:   os.Environ(),
		Files: []uintptr{stdin.Fd(), w.Fd(), os.Stderr.Fd()},
	})

	// Only the child may hold the write end, or the relay never sees EOF.
	w.Close()

	if err != nil {
		if isForkFailure(err) {
			return nil, errors.Wrapf(ErrSpawn, "fork %s: %v", path, err)
		}
		res := startFailure(err)
		res.Bytes, res.Method, err = relay(sink, r)
		if err != nil {
			return res, errors.Wrap(ErrRelay, err.Error())
		}
		return res, nil
	}

	res := &Result{Pid: pid}

	var relayErr error
	res.Bytes, res.Method, relayErr = relay(sink, r)
	if relayErr != nil {
		r.Close()
	}

	status, err := wait(pid)
	if err != nil {
		return res, err
	}
	res.setStatus(status)

	if relayErr != nil {
		return res, errors.Wrap(ErrRelay, relayErr.Error())
	}
	return res, nil
}

// Resolves a program name the way execvp does.
func lookPath(name string) (string, error) {
	if strings.Contains(name, "/") {
		return name, nil
	}
	return exec.LookPath(name)
}

// Waits for pid to exit, retrying when interrupted by a signal.
func wait(pid int) (syscall.WaitStatus, error) {
	var status syscall.WaitStatus
	for {
		_, err := syscall.Wait4(pid, &status, 0, nil)
		switch err {
		case nil:
			return status, nil
		case syscall.EINTR:
			continue
		default:
			return status, errors.Wrapf(ErrWait, "wait4 %d: %v", pid, err)
		}
	}
}

func (r *Result) setStatus(status syscall.WaitStatus) {
	switch {
	case status.Exited():
		r.ExitCode = status.ExitStatus()
	case status.Signaled():
		r.Signal = status.Signal()
		r.ExitCode = 128 + int(r.Signal)
	}
}

// Reports whether err means no child could be created at all, as opposed to
// a child that failed to chdir or exec.
func isForkFailure(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.ENOMEM) ||
		errors.Is(err, syscall.ENOSYS)
}

func startFailure(err error) *Result {
	code := ExitCannotExecute
	if errors.Is(err, exec.ErrNotFound) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ENOTDIR) {
		code = ExitNotFound
	}
	return &Result{ExitCode: code, StartErr: err, Method: MethodNone}
}
