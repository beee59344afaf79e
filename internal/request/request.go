package request

import (
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Size of the receive buffer. A request must be strictly shorter.
const Capacity = 1024

const (
	separator  = " "
	terminator = 0
)

// A decoded request.
type Request struct {
	Argv []string // Program followed by its arguments. Never empty.
	Dir  string   // Working directory for the child. Empty keeps the daemon's.
}

// Reads and decodes one request from r with a single Read call.
//
// Returns [ErrRequestTooLarge] if the read fills the whole buffer and
// [ErrEmptyRequest] if the peer sent nothing.
func Read(r io.Reader) (*Request, error) {
	buf := make([]byte, Capacity)

	n, err := r.Read(buf)
	if n == Capacity {
		return nil, ErrRequestTooLarge
	}
	if n == 0 {
		if err == nil || err == io.EOF {
			return nil, ErrEmptyRequest
		}
		return nil, errors.Wrap(ErrRead, err.Error())
	}

	return Decode(buf[:n]), nil
}

// Decodes a received buffer.
//
// The command runs up to the first NUL byte, or the end of b. Whatever
// follows that NUL, up to the next NUL or the end of b, is the working
// directory. The returned strings are copies; b can be reused.
func Decode(b []byte) *Request {
	command, rest, _ := bytes.Cut(b, []byte{terminator})
	dir, _, _ := bytes.Cut(rest, []byte{terminator})

	return &Request{
		Argv: Split(string(command)),
		Dir:  string(dir),
	}
}

// Splits a command on single spaces.
//
// An empty command yields one empty argument, matching what the daemon
// hands to exec.
func Split(command string) []string {
	return strings.Split(command, separator)
}

// Returns the argument vector joined with spaces.
func (r *Request) Command() string {
	return strings.Join(r.Argv, separator)
}

// Encodes the request in wire format.
//
// Arguments containing a space or a NUL byte cannot be represented, nor can a
// directory containing a NUL byte. The encoding must be shorter than
// [Capacity].
func (r *Request) Encode() ([]byte, error) {
	if len(r.Argv) == 0 {
		return nil, errors.Wrap(ErrUnencodable, "no program")
	}
	for i, arg := range r.Argv {
		if strings.ContainsAny(arg, separator+"\x00") {
			return nil, errors.Wrapf(ErrUnencodable, "argument %d %q contains a space or NUL", i, arg)
		}
	}
	if strings.IndexByte(r.Dir, terminator) >= 0 {
		return nil, errors.Wrapf(ErrUnencodable, "directory %q contains NUL", r.Dir)
	}

	var buf bytes.Buffer
	buf.WriteString(r.Command())
	buf.WriteByte(terminator)
	if r.Dir != "" {
		buf.WriteString(r.Dir)
		buf.WriteByte(terminator)
	}

	if buf.Len() >= Capacity {
		return nil, errors.Wrapf(ErrRequestTooLarge, "%d bytes, limit is %d", buf.Len(), Capacity-1)
	}
	return buf.Bytes(), nil
}
