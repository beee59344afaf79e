// Package server implements the forkd daemon.
//
// The daemon listens on a Unix domain socket and runs one command per
// connection. A fixed pool of workers accepts on the one shared listening
// socket; each worker reads a single request, spawns the program, streams
// its standard output back on the same connection and closes the connection
// once the child has been reaped. The child's exit status is logged, not
// sent to the peer.
//
// Shutdown is a one-shot transition: [Server.Stop] shuts the listening
// socket down, which makes every worker blocked in accept return. Workers
// that are serving a connection finish it first. Stop returns after all
// workers have exited and the socket file has been removed.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    SocketPath: "/run/forkd.sock",
//	    Workers:    4,
//	})
//	if err != nil {
//	    return err
//	}
//
//	return srv.Serve(ctx)
package server
