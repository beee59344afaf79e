package process

import (
	"io"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// Maximum bytes moved by one splice call.
const spliceChunk = 1 << 16

// Splices the pipe src into dst when dst is backed by a descriptor.
//
// Reports spliced=false, with nothing consumed from src, when dst exposes no
// descriptor or the kernel cannot splice into it. The pipe read blocks the
// calling thread; a full socket parks the goroutine in the netpoller.
func splice(dst io.Writer, src *os.File) (int64, bool, error) {
	sc, ok := dst.(syscall.Conn)
	if !ok {
		return 0, false, nil
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return 0, false, nil
	}

	pipe := int(src.Fd())

	var total int64
	for {
		var n int64
		var serr error

		werr := rc.Write(func(fd uintptr) bool {
			n, serr = unix.Splice(pipe, nil, int(fd), nil, spliceChunk, unix.SPLICE_F_MOVE)
			return serr != unix.EAGAIN
		})
		if werr != nil {
			return total, true, werr
		}

		switch {
		case serr == unix.EINTR:
			continue
		case (serr == unix.EINVAL || serr == unix.ENOSYS) && total == 0:
			return 0, false, nil
		case serr != nil:
			return total, true, os.NewSyscallError("splice", serr)
		case n == 0:
			return total, true, nil
		}
		total += n
	}
}
