package cli

import (
	"context"
	"log/slog"

	"github.com/cruciblehq/forkd/internal/metrics"
	"github.com/cruciblehq/forkd/internal/server"
	"golang.org/x/sync/errgroup"
)

// Represents the 'forkd start' command.
type StartCmd struct {
	Socket         string `short:"s" required:"" env:"FORKD_SOCKET" help:"Path of the Unix socket to listen on." placeholder:"PATH"`
	Workers        int    `short:"w" default:"${workers}" env:"FORKD_WORKERS" help:"Number of accept workers."`
	PIDFile        string `name:"pid-file" default:"${pidfile}" help:"Write the daemon PID to this file (empty disables)." placeholder:"PATH"`
	MetricsAddress string `name:"metrics-address" env:"FORKD_METRICS_ADDRESS" help:"Serve Prometheus metrics on this address (empty disables)." placeholder:"HOST:PORT"`
}

// Executes the start command.
//
// Starts the daemon and blocks until the context is cancelled (e.g. via
// SIGINT or SIGTERM), then waits for in-flight requests and removes the
// socket.
func (c *StartCmd) Run(ctx context.Context) error {
	srv, err := server.New(c.config())
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return metrics.Serve(ctx, c.MetricsAddress)
	})
	g.Go(func() error {
		slog.Info("forkd is running", "socket", c.Socket)
		return srv.Serve(ctx)
	})

	return g.Wait()
}

// Builds the immutable server configuration from the parsed flags.
func (c *StartCmd) config() server.Config {
	return server.Config{
		SocketPath: c.Socket,
		Workers:    c.Workers,
		PIDFile:    c.PIDFile,
	}
}
