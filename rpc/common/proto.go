package common

// --------------------------------------------------------------------------
// Wire protocol
// --------------------------------------------------------------------------

/*
	The protocol has no framing: every read from a connection is one query and every
	query is answered by exactly one write. A query longer than the receive buffer is
	split by the buffer boundary and each part is answered on its own.
*/

const (
	// NoEntry is the complete response for every query without a usable entry
	NoEntry = "NOENTRY"

	// DefaultBufferSize is the receive buffer size and thereby the maximum query length
	DefaultBufferSize = 1024

	// DefaultBacklog is the accept queue depth requested from the operating system
	DefaultBacklog = 20000

	// DefaultHost binds the listener to all IPv4 interfaces
	DefaultHost = "0.0.0.0"
)
