// Package endpoint owns the daemon's listening Unix domain socket.
//
// [Create] removes a stale socket file left by an unclean exit, then creates,
// binds and listens with a backlog of [Backlog]. The resulting [Endpoint] is
// shared by every accept worker without locking; the kernel hands each
// pending connection to exactly one accepting caller.
//
// [Endpoint.Shutdown] is the one-shot transition from open to shut down. It
// shuts the socket down for reading and writing and closes the listener, so
// every blocked [Endpoint.Accept] returns. Workers check [Endpoint.Closing]
// to tell this apart from an ordinary accept failure. [Endpoint.Close]
// additionally removes the socket file.
package endpoint
