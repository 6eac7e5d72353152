// Package tcp implements the TCP connector for the base server transport.
//
// Listening: on unix platforms the listening socket is created by hand so the accept
// backlog can be set explicitly (default 20000; the kernel caps it at somaxconn). Any IPv4
// literal can be used as host, other hosts fall back to net.Listen with the system backlog.
// SO_REUSEADDR is set like net.Listen does.
//
// Socket options applied to every accepted connection:
//
//   - TCP_NODELAY (TCPNoDelay)
//   - keep-alive with the configured period (TCPKeepAliveSec > 0)
//   - SO_LINGER (TCPLingerSec >= 0)
//
// See the base package documentation for the connection handling itself.
package tcp
