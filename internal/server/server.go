package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cruciblehq/forkd/internal/endpoint"
	"github.com/cruciblehq/forkd/internal/paths"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (

	// Initial pause after an unexpected accept error.
	minAcceptBackoff = 5 * time.Millisecond

	// Upper bound of the accept error backoff.
	maxAcceptBackoff = time.Second
)

// Holds server configuration. Built once at startup and never modified.
type Config struct {
	SocketPath string // Path of the Unix socket. Required.
	Workers    int    // Number of accept workers. Values below 1 mean 1.
	PIDFile    string // Path of the PID file. Empty disables it.
}

// Listens on a Unix domain socket and runs the requested commands.
type Server struct {
	cfg       Config             // Immutable configuration.
	endpoint  *endpoint.Endpoint // Listening socket shared by the workers.
	workers   errgroup.Group     // Running accept loops.
	startedAt time.Time          // Timestamp when the server started.
	stopOnce  sync.Once          // Guards the shutdown sequence.
	stopErr   error              // Result of the shutdown sequence.
	done      chan struct{}      // Closed when the server has stopped.
}

// Creates a new server instance.
//
// The socket is not opened until [Server.Start] is called.
func New(cfg Config) (*Server, error) {
	if cfg.SocketPath == "" {
		return nil, errors.Wrap(ErrConfig, "socket path is required")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	return &Server{
		cfg:  cfg,
		done: make(chan struct{}),
	}, nil
}

// Opens the Unix socket and starts the accept workers.
func (s *Server) Start() error {
	ep, err := endpoint.Create(s.cfg.SocketPath)
	if err != nil {
		return errors.Wrap(ErrServer, err.Error())
	}

	s.endpoint = ep
	s.startedAt = time.Now()

	if err := s.writePID(); err != nil {
		slog.Warn("failed to write PID file", "path", s.cfg.PIDFile, "error", err)
	}

	slog.Info("server listening on socket", "path", s.cfg.SocketPath, "workers", s.cfg.Workers)

	for i := 0; i < s.cfg.Workers; i++ {
		id := i
		s.workers.Go(func() error {
			s.accept(id)
			return nil
		})
	}
	return nil
}

// Starts the server and blocks until ctx is cancelled, then stops it.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	slog.Info("shutting down")
	return s.Stop()
}

// Stops accepting, waits for in-flight requests and removes the socket.
//
// Only the first call performs the shutdown; later calls return its result.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		defer close(s.done)

		if s.endpoint == nil {
			return
		}

		var errs []error
		if err := s.endpoint.Shutdown(); err != nil {
			errs = append(errs, err)
		}

		s.workers.Wait()

		if err := s.endpoint.Close(); err != nil {
			errs = append(errs, err)
		}
		s.removePID()

		slog.Info("server stopped", "uptime", time.Since(s.startedAt).Truncate(time.Millisecond).String())

		if len(errs) > 0 {
			s.stopErr = errors.Wrap(ErrServer, fmt.Sprint(errs))
		}
	})
	return s.stopErr
}

// Blocks until the server stops.
func (s *Server) Wait() {
	<-s.done
}

// Returns the address the server listens on, or nil before [Server.Start].
func (s *Server) Addr() net.Addr {
	if s.endpoint == nil {
		return nil
	}
	return s.endpoint.Addr()
}

// Accepts connections in a loop until the endpoint shuts down.
//
// Every worker runs this loop on the same endpoint; the kernel hands each
// connection to exactly one of them.
func (s *Server) accept(worker int) {
	log := slog.With("worker", worker)
	log.Debug("worker started")

	var backoff time.Duration
	for {
		conn, err := s.endpoint.Accept()
		if err != nil {
			if s.endpoint.Closing() || errors.Is(err, net.ErrClosed) {
				log.Debug("worker stopped")
				return
			}

			if backoff == 0 {
				backoff = minAcceptBackoff
			} else {
				backoff = min(2*backoff, maxAcceptBackoff)
			}
			log.Error("accept error", "error", err, "retry", backoff)
			time.Sleep(backoff)
			continue
		}

		backoff = 0
		s.handle(log, conn)
	}
}

// Writes the daemon PID so scripts can find and signal it.
func (s *Server) writePID() error {
	if s.cfg.PIDFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.PIDFile), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(s.cfg.PIDFile, []byte(fmt.Sprintf("%d", os.Getpid())), paths.DefaultFileMode)
}

func (s *Server) removePID() {
	if s.cfg.PIDFile == "" {
		return
	}
	if err := os.Remove(s.cfg.PIDFile); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove PID file", "path", s.cfg.PIDFile, "error", err)
	}
}
