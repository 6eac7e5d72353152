package transport

import (
	"errors"
	"github.com/ValentinKolb/dictd/rpc/common"
	"net"
)

// ErrBind is returned (wrapped) by Bind when the listening socket can not be created
var ErrBind = errors.New("bind failed")

// ServerHandleFunc turns one received query into the response for it.
// It is called by the transport layer once per successful read. The request slice is only
// valid during the call; the function must not retain it.
type ServerHandleFunc func(req []byte) (resp []byte)

// IServerTransport is the interface for the server transport layer
type IServerTransport interface {
	// RegisterHandler registers the handler called for every received query.
	// It must be called before Serve.
	RegisterHandler(handler ServerHandleFunc)
	// Bind creates the listening socket and the worker pool. A failure wraps ErrBind.
	Bind(config common.ServerConfig) (net.Addr, error)
	// Serve accepts connections until Close is called. It returns nil after Close.
	Serve() error
	// Close stops accepting, closes all open connections and stops the worker pool
	Close() error
}
