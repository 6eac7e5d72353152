// Package base implements the transport independent part of the server transport: the
// accept loop, the worker pool dispatch and the per-connection handler. Protocol specific
// code (creating the listener, socket options) is injected through IServerConnector.
//
// Accept loop: a single goroutine accepts connections, applies the connector's socket
// options, registers the connection and submits it to a pool.WorkerPool. Submission never
// blocks, so a burst of clients is accepted even when every worker slot is busy; the extra
// connections wait in the pool's queue.
//
// Connection handler: each connection is owned by exactly one handler running in a worker
// slot. The handler loops over
//
//	RECEIVING  one Read into a pooled buffer (the buffer size is the maximum query length)
//	RESPONDING call the registered ServerHandleFunc and Write the complete response
//
// until the peer disconnects or ConnectionPolicy decides to close the connection. Errors
// never leave the handler: a failed read closes the connection, a failed write is logged
// and, by default, the handler keeps waiting for the next query. A panic in the handle
// function closes the connection and leaves the worker slot intact.
//
// Timeouts: read and write deadlines are only set when configured (ReadTimeoutSec,
// WriteTimeoutSec). Without them a client that never sends anything keeps its worker slot.
//
// Thread Safety:
//
//	Connections are tracked in an xsync.MapOf so Close can reach them from any goroutine.
//	Buffers are recycled through a sync.Pool.
package base
