package base

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dictd/lib/pool"
	"github.com/ValentinKolb/dictd/rpc/common"
	"github.com/ValentinKolb/dictd/rpc/transport"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"net"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

var Logger = logger.GetLogger("transport")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error

	// GetName returns the name of the transport type (e.g. "tcp")
	GetName() string
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientConn is one accepted connection. It is owned by exactly one handler.
type clientConn struct {
	id       uuid.UUID
	conn     net.Conn
	peer     string
	accepted time.Time
}

// serverTransport implements the accept loop and the connection handler
type serverTransport struct {
	connector  IServerConnector
	handler    transport.ServerHandleFunc
	config     common.ServerConfig
	policy     ConnectionPolicy
	metrics    *common.ServerMetrics
	listener   net.Listener
	pool       *pool.WorkerPool[*clientConn]
	conns      *xsync.MapOf[uuid.UUID, *clientConn]
	bufferPool *sync.Pool
	closed     atomic.Bool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport. A nil metrics argument
// creates a private metrics set.
func NewBaseServerTransport(connector IServerConnector, metrics *common.ServerMetrics) transport.IServerTransport {
	if metrics == nil {
		metrics = common.NewServerMetrics()
	}
	return &serverTransport{
		connector: connector,
		metrics:   metrics,
		conns:     xsync.NewMapOf[uuid.UUID, *clientConn](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *serverTransport) Bind(config common.ServerConfig) (net.Addr, error) {
	t.configure(config)
	config = t.config

	listener, err := t.connector.Listen(config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", transport.ErrBind, t.connector.GetName(), config.Endpoint(), err)
	}
	t.listener = listener

	t.pool = pool.NewWorkerPool(config.Workers, t.handleConnection)
	t.registerGauges()

	Logger.Infof("Socket bind to %s successful (%s, backlog %d, %d worker slots)",
		listener.Addr(), t.connector.GetName(), config.Backlog, t.pool.Slots())

	return listener.Addr(), nil
}

func (t *serverTransport) Serve() error {
	if t.listener == nil {
		return fmt.Errorf("serve called before bind")
	}
	if t.handler == nil {
		return fmt.Errorf("no handler registered")
	}

	Logger.Infof("Socket listening initiated")

	var backoff time.Duration
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if t.closed.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("listener closed unexpectedly: %w", err)
			}

			// e.g. too many open files: back off instead of spinning
			t.metrics.AcceptErrors.Inc()
			backoff = nextBackoff(backoff)
			Logger.Errorf("Accept error: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		t.dispatch(conn)
	}
}

func (t *serverTransport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if t.listener != nil {
		err = t.listener.Close()
	}

	// unblock every handler waiting in a read; each one releases its own connection
	t.conns.Range(func(_ uuid.UUID, c *clientConn) bool {
		_ = c.conn.Close()
		return true
	})

	if t.pool != nil {
		t.pool.Close()
	}
	return err
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// configure applies defaults and prepares everything a connection handler needs
func (t *serverTransport) configure(config common.ServerConfig) {
	if config.BufferSize <= 0 {
		config.BufferSize = common.DefaultBufferSize
	}
	if config.Backlog <= 0 {
		config.Backlog = common.DefaultBacklog
	}
	t.config = config
	t.policy = ConnectionPolicy{MaxSendFailures: config.MaxSendFailures}

	bufferSize := config.BufferSize
	t.bufferPool = &sync.Pool{
		New: func() interface{} {
			buf := make([]byte, bufferSize)
			return &buf
		},
	}
}

// dispatch registers an accepted connection and hands it to the worker pool.
// It never waits for the connection to be served.
func (t *serverTransport) dispatch(conn net.Conn) {
	c := &clientConn{
		id:       uuid.New(),
		conn:     conn,
		peer:     conn.RemoteAddr().String(),
		accepted: time.Now(),
	}

	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		Logger.Warningf("Failed to apply socket options to %s: %v", c.peer, err)
	}

	t.conns.Store(c.id, c)
	t.metrics.ConnsAccepted.Inc()
	Logger.Infof("Connection from %s accepted", c.peer)

	// Close may have swept the registry before this connection was added
	if t.closed.Load() || !t.pool.Submit(c) {
		t.release(c)
	}
}

// handleConnection serves one connection until the peer disconnects or the policy
// decides to close it: RECEIVING -> (RESPONDING -> RECEIVING)* -> CLOSED
func (t *serverTransport) handleConnection(c *clientConn) {
	defer t.release(c)
	defer func() {
		if r := recover(); r != nil {
			t.metrics.HandlerPanics.Inc()
			Logger.Errorf("Handler for %s panicked: %v\n%s", c.peer, r, debug.Stack())
		}
	}()

	bufPtr := t.bufferPool.Get().(*[]byte)
	defer t.bufferPool.Put(bufPtr)
	buf := *bufPtr

	sendFailures := 0
	for {
		// RECEIVING
		n, err := t.receive(c, buf)
		if err != nil {
			kind := classifyRecvError(err)
			if kind != ErrKindPeerClosed {
				t.metrics.RecvErrors.Inc()
				Logger.Errorf("Receive from %s failed (%s): %v", c.peer, kind, err)
			}
			if t.policy.Decide(kind, 0) == ActionClose {
				return
			}
			continue
		}

		// RESPONDING
		t.metrics.Queries.Inc()
		t.metrics.BytesIn.Add(n)
		resp := t.handler(buf[:n])

		if err := t.send(c, resp); err != nil {
			sendFailures++
			t.metrics.SendErrors.Inc()
			Logger.Warningf("Send attempt to %s failed (%d in a row): %v", c.peer, sendFailures, err)

			if t.policy.Decide(ErrKindSend, sendFailures) == ActionClose {
				Logger.Warningf("Closing %s after %d failed sends", c.peer, sendFailures)
				return
			}
			continue
		}

		sendFailures = 0
		t.metrics.BytesOut.Add(len(resp))
	}
}

// release closes and deregisters a connection
func (t *serverTransport) release(c *clientConn) {
	_ = c.conn.Close()
	t.conns.Delete(c.id)
	t.metrics.ConnsClosed.Inc()
	Logger.Infof("Connection from %s closed after %s", c.peer, time.Since(c.accepted).Round(time.Millisecond))
}

// registerGauges exposes the connection registry and the pool through the server metrics
func (t *serverTransport) registerGauges() {
	t.metrics.RegisterGauge(`dictd_connections_active`, func() float64 {
		return float64(t.conns.Size())
	})
	t.metrics.RegisterGauge(`dictd_pool_slots`, func() float64 {
		return float64(t.pool.Slots())
	})
	t.metrics.RegisterGauge(`dictd_pool_slots_busy`, func() float64 {
		return float64(t.pool.Stats().Busy)
	})
	t.metrics.RegisterGauge(`dictd_pool_connections_queued`, func() float64 {
		return float64(t.pool.Stats().Queued)
	})
}
