package base

import (
	"io"
	"time"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// receive performs a single read into buf. A read of zero bytes is reported as io.EOF.
// Data that arrives together with an error is returned first; the error shows up again
// on the next read.
func (t *serverTransport) receive(c *clientConn, buf []byte) (int, error) {
	if t.config.ReadTimeoutSec > 0 {
		timeout := time.Duration(t.config.ReadTimeoutSec) * time.Second
		if err := c.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return 0, err
		}
	}

	n, err := c.conn.Read(buf)
	if n > 0 {
		return n, nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

// send writes the complete response
func (t *serverTransport) send(c *clientConn, resp []byte) error {
	if t.config.WriteTimeoutSec > 0 {
		timeout := time.Duration(t.config.WriteTimeoutSec) * time.Second
		if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}

	_, err := c.conn.Write(resp)
	return err
}

// nextBackoff doubles the accept retry delay up to maxAcceptBackoff
func nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return minAcceptBackoff
	}
	if current *= 2; current > maxAcceptBackoff {
		return maxAcceptBackoff
	}
	return current
}
