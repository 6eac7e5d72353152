//go:build !unix

package tcp

import (
	"net"
	"strconv"
)

// listenBacklog falls back to net.Listen, the backlog is chosen by the operating system
func listenBacklog(host string, port int, _ int) (net.Listener, error) {
	return net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
}
