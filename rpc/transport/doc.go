// Package transport defines the server transport abstraction of the dictionary server.
//
// The transport owns everything below the lookup: the listening socket, the accept loop,
// the worker pool and the per-connection receive/respond loop. The server registers a
// single ServerHandleFunc that maps a query to a response; the transport calls it once per
// read and writes the result back.
//
// Subpackages:
//
//   - base: transport independent accept loop, connection handler and error policy
//   - tcp: TCP listener with an explicit accept backlog and socket tuning
package transport
