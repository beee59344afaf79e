// Package client sends one request to a forkd daemon and streams the
// response.
//
// The protocol carries no exit status: a response is complete when the
// daemon closes the connection, and a rejected request looks like an empty
// response.
package client

import (
	"context"
	"io"
	"net"

	"github.com/cruciblehq/forkd/internal/request"
	"github.com/pkg/errors"
)

// Sends req to the daemon listening on socketPath and copies the command's
// output to w until the daemon closes the connection.
//
// Returns the number of bytes copied. Cancelling ctx aborts the exchange and
// returns ctx.Err().
func Exec(ctx context.Context, socketPath string, req *request.Request, w io.Writer) (int64, error) {
	msg, err := req.Encode()
	if err != nil {
		return 0, err
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return 0, errors.Wrapf(ErrClient, "failed to connect to %s: %v", socketPath, err)
	}
	defer conn.Close()

	// Cancellation closes the connection, which unblocks the write or copy.
	stop := context.AfterFunc(ctx, func() {
		conn.Close()
	})
	defer stop()

	if _, err := conn.Write(msg); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, errors.Wrapf(ErrClient, "failed to send request: %v", err)
	}

	n, err := io.Copy(w, conn)
	if err != nil {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		return n, errors.Wrapf(ErrClient, "failed to read response: %v", err)
	}
	return n, nil
}
