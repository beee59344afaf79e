package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/cruciblehq/forkd/internal/client"
	"github.com/cruciblehq/forkd/internal/request"
)

// Represents the 'forkd run' command.
//
// Arguments are sent space-separated without quoting, so none of them may
// contain a space.
type RunCmd struct {
	Socket  string        `short:"s" required:"" env:"FORKD_SOCKET" help:"Path of the daemon's Unix socket." placeholder:"PATH"`
	Dir     string        `short:"C" help:"Working directory for the command." placeholder:"DIR"`
	Timeout time.Duration `help:"Give up after this long (0 waits until the command exits)." default:"0s"`
	Command []string      `arg:"" passthrough:"" help:"Program and arguments."`
}

// Executes the run command, writing the command's output to stdout.
func (c *RunCmd) Run(ctx context.Context) error {
	return c.exec(ctx, os.Stdout)
}

func (c *RunCmd) exec(ctx context.Context, w io.Writer) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req := &request.Request{Argv: c.Command, Dir: c.Dir}
	_, err := client.Exec(ctx, c.Socket, req, w)
	return err
}
