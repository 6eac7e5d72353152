// Package rpc contains the network side of the dictionary server: everything between
// a TCP socket and a dict.Provider.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities shared by the server packages,
//     including the wire protocol constants, configuration, logging and metrics.
//
//   - transport: The server transport abstraction with the accept loop, the per-connection
//     handler, the error policy and the TCP listener.
//
//   - serializer: Encoding of lookup results into the response written to the client
//     (Python json.dumps compatible text, or compact).
//
//   - server: The dictionary server that connects a transport, a serializer and a
//     dictionary provider.
package rpc
