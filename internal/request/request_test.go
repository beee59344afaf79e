package request

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		argv  []string
		dir   string
	}{
		{
			name:  "single token",
			input: "pwd\x00",
			argv:  []string{"pwd"},
		},
		{
			name:  "arguments",
			input: "echo hi\x00",
			argv:  []string{"echo", "hi"},
		},
		{
			name:  "working directory",
			input: "pwd\x00/tmp\x00",
			argv:  []string{"pwd"},
			dir:   "/tmp",
		},
		{
			name:  "working directory without terminator",
			input: "touch lol\x00/srv/folder",
			argv:  []string{"touch", "lol"},
			dir:   "/srv/folder",
		},
		{
			name:  "command without terminator",
			input: "ls -l",
			argv:  []string{"ls", "-l"},
		},
		{
			name:  "empty command",
			input: "\x00",
			argv:  []string{""},
		},
		{
			name:  "consecutive spaces are not collapsed",
			input: "echo  a\x00",
			argv:  []string{"echo", "", "a"},
		},
		{
			name:  "trailing space",
			input: "echo \x00",
			argv:  []string{"echo", ""},
		},
		{
			name:  "empty directory",
			input: "pwd\x00\x00",
			argv:  []string{"pwd"},
		},
		{
			name:  "bytes after directory are ignored",
			input: "pwd\x00/tmp\x00junk",
			argv:  []string{"pwd"},
			dir:   "/tmp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Decode([]byte(tt.input))
			assert.Equal(t, tt.argv, req.Argv)
			assert.Equal(t, tt.dir, req.Dir)
		})
	}
}

func TestDecodeCopiesBuffer(t *testing.T) {
	buf := []byte("echo hi\x00/tmp\x00")
	req := Decode(buf)

	for i := range buf {
		buf[i] = 'x'
	}

	assert.Equal(t, []string{"echo", "hi"}, req.Argv)
	assert.Equal(t, "/tmp", req.Dir)
}

func TestRead(t *testing.T) {
	req, err := Read(strings.NewReader("echo hi\x00"))
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "hi"}, req.Argv)
	assert.Empty(t, req.Dir)
}

func TestReadFullBufferRejected(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "exactly capacity", size: Capacity},
		{name: "over capacity", size: Capacity + 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := bytes.Repeat([]byte("a"), tt.size)
			_, err := Read(bytes.NewReader(input))
			assert.ErrorIs(t, err, ErrRequestTooLarge)
		})
	}
}

func TestReadJustUnderCapacity(t *testing.T) {
	input := append(bytes.Repeat([]byte("a"), Capacity-2), 0)
	req, err := Read(bytes.NewReader(input))
	require.NoError(t, err)
	assert.Len(t, req.Argv[0], Capacity-2)
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyRequest)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestReadError(t *testing.T) {
	_, err := Read(failingReader{})
	assert.ErrorIs(t, err, ErrRead)
	assert.Contains(t, err.Error(), "connection reset")
}

// Reads at most once, even if more data is available later.
type chunkedReader struct {
	chunks [][]byte
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks = c.chunks[1:]
	return n, nil
}

func TestReadSingleCall(t *testing.T) {
	r := &chunkedReader{chunks: [][]byte{[]byte("echo"), []byte(" hi\x00")}}
	req, err := Read(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo"}, req.Argv)
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    string
		wantErr error
	}{
		{
			name: "command",
			req:  Request{Argv: []string{"echo", "hi"}},
			want: "echo hi\x00",
		},
		{
			name: "command and directory",
			req:  Request{Argv: []string{"pwd"}, Dir: "/tmp"},
			want: "pwd\x00/tmp\x00",
		},
		{
			name: "empty program",
			req:  Request{Argv: []string{""}},
			want: "\x00",
		},
		{
			name:    "no arguments",
			req:     Request{},
			wantErr: ErrUnencodable,
		},
		{
			name:    "argument with space",
			req:     Request{Argv: []string{"echo", "a b"}},
			wantErr: ErrUnencodable,
		},
		{
			name:    "argument with NUL",
			req:     Request{Argv: []string{"echo", "a\x00b"}},
			wantErr: ErrUnencodable,
		},
		{
			name:    "directory with NUL",
			req:     Request{Argv: []string{"pwd"}, Dir: "/t\x00mp"},
			wantErr: ErrUnencodable,
		},
		{
			name:    "too large",
			req:     Request{Argv: []string{"echo", strings.Repeat("a", Capacity)}},
			wantErr: ErrRequestTooLarge,
		},
		{
			name:    "exactly capacity",
			req:     Request{Argv: []string{strings.Repeat("a", Capacity-1)}},
			wantErr: ErrRequestTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.req.Encode()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			decoded := Decode(got)
			assert.Equal(t, tt.req.Argv, decoded.Argv)
			assert.Equal(t, tt.req.Dir, decoded.Dir)
		})
	}
}

func TestCommand(t *testing.T) {
	req := &Request{Argv: []string{"ls", "-l", "/"}}
	assert.Equal(t, "ls -l /", req.Command())
}
