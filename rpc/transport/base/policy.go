package base

import (
	"errors"
	"io"
	"net"
)

// ErrorKind classifies a failure on a single connection
type ErrorKind uint8

const (
	ErrKindPeerClosed  ErrorKind = iota // orderly shutdown by the client (zero byte read)
	ErrKindRecv                         // read failed (reset, closed socket, ...)
	ErrKindRecvTimeout                  // read deadline exceeded
	ErrKindSend                         // write failed or timed out
)

// String returns the string representation of an ErrorKind.
func (k ErrorKind) String() string {
	switch k {
	case ErrKindPeerClosed:
		return "peer closed"
	case ErrKindRecv:
		return "receive error"
	case ErrKindRecvTimeout:
		return "receive timeout"
	case ErrKindSend:
		return "send error"
	default:
		return "unknown"
	}
}

// Action is what the connection handler does after an error
type Action uint8

const (
	ActionClose    Action = iota // close the connection and free the worker slot
	ActionContinue               // keep the connection and wait for the next query
)

// String returns the string representation of an Action.
func (a Action) String() string {
	switch a {
	case ActionClose:
		return "close"
	case ActionContinue:
		return "continue"
	default:
		return "unknown"
	}
}

// ConnectionPolicy decides how the connection handler reacts to errors.
//
//	peer closed     -> close
//	receive error   -> close
//	receive timeout -> close
//	send error      -> continue, or close once MaxSendFailures consecutive sends failed
//
// With MaxSendFailures == 0 a connection is never closed because of send errors.
type ConnectionPolicy struct {
	MaxSendFailures int
}

// Decide returns the action for an error of the given kind. sendFailures is the number of
// consecutive failed sends on the connection, including the current one.
func (p ConnectionPolicy) Decide(kind ErrorKind, sendFailures int) Action {
	switch kind {
	case ErrKindSend:
		if p.MaxSendFailures > 0 && sendFailures >= p.MaxSendFailures {
			return ActionClose
		}
		return ActionContinue
	default:
		return ActionClose
	}
}

// classifyRecvError maps a read error to its kind
func classifyRecvError(err error) ErrorKind {
	if errors.Is(err, io.EOF) {
		return ErrKindPeerClosed
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrKindRecvTimeout
	}
	return ErrKindRecv
}
