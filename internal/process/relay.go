//go:build unix

package process

import (
	"io"
	"os"
)

// How output reached the sink.
type Method string

const (
	MethodNone   Method = ""       // Nothing was relayed.
	MethodSplice Method = "splice" // Kernel pipe-to-socket transfer.
	MethodCopy   Method = "copy"   // Read/write loop through a user-space buffer.
)

// Buffer size of the read/write loop.
const copyChunk = 32 << 10

// Moves everything readable from src into dst until src reaches end of file.
//
// Splicing is attempted first. The copy loop only takes over when splicing
// is unavailable before any byte has moved, so the two never interleave.
func relay(dst io.Writer, src *os.File) (int64, Method, error) {
	n, spliced, err := splice(dst, src)
	if spliced {
		return n, MethodSplice, err
	}

	n, err = copyLoop(dst, src)
	return n, MethodCopy, err
}

// Copies src to dst in fixed-size chunks until end of file.
func copyLoop(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, copyChunk)

	var total int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			total += int64(w)
			if werr != nil {
				return total, werr
			}
			if w != n {
				return total, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}
