//go:build unix

package tcp

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"syscall"
)

// listenBacklog creates an IPv4 listener with an explicit accept backlog. net.Listen always
// uses the kernel maximum (somaxconn) and offers no way to pass a backlog, so the socket is
// set up by hand and then wrapped with net.FileListener. Hosts that are not IPv4 literals
// fall back to net.Listen.
func listenBacklog(host string, port int, backlog int) (net.Listener, error) {
	if host == "" {
		host = "0.0.0.0"
	}

	ip := net.ParseIP(host).To4()
	if ip == nil {
		return net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	}
	if port < 0 || port > 0xffff {
		return nil, fmt.Errorf("invalid port %d", port)
	}

	fd, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_STREAM, 0)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	syscall.CloseOnExec(fd)

	setup := func() error {
		if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); err != nil {
			return os.NewSyscallError("setsockopt", err)
		}

		sa := &syscall.SockaddrInet4{Port: port}
		copy(sa.Addr[:], ip)
		if err := syscall.Bind(fd, sa); err != nil {
			return os.NewSyscallError("bind", err)
		}

		if err := syscall.Listen(fd, backlog); err != nil {
			return os.NewSyscallError("listen", err)
		}
		return nil
	}

	if err := setup(); err != nil {
		_ = syscall.Close(fd)
		return nil, err
	}

	// FileListener duplicates the descriptor, the original is closed with the file
	f := os.NewFile(uintptr(fd), "tcp:"+net.JoinHostPort(host, strconv.Itoa(port)))
	defer f.Close()

	return net.FileListener(f)
}
