package server

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dictd/lib/dict"
	"github.com/ValentinKolb/dictd/rpc/common"
	"github.com/ValentinKolb/dictd/rpc/serializer"
	"github.com/ValentinKolb/dictd/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"net"
	"net/http"
	"sync"
	"time"
)

var Logger = logger.GetLogger("dictd")

// DictServer answers dictionary queries received by a transport
type DictServer struct {
	config     common.ServerConfig
	transport  transport.IServerTransport
	serializer serializer.IResultSerializer
	provider   *dict.Provider
	metrics    *common.ServerMetrics

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	addr       net.Addr
	metricsSrv *http.Server
}

// NewDictServer creates a new dictionary server. The metrics must be the same instance the
// transport reports into, so that one endpoint exposes both.
//
// Usage:
//
//	metrics := common.NewServerMetrics()
//	s := server.NewDictServer(
//		*config,
//		tcp.NewTCPServerTransport(metrics),
//		serializer.NewTextSerializer(),
//		dict.NewProvider(fsource.NewFileSource(config.DataDir)),
//		metrics,
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewDictServer(
	config common.ServerConfig,
	transport transport.IServerTransport,
	serializer serializer.IResultSerializer,
	provider *dict.Provider,
	metrics *common.ServerMetrics,
) *DictServer {
	if metrics == nil {
		metrics = common.NewServerMetrics()
	}

	ctx, cancel := context.WithCancel(context.Background())

	Logger.Infof("Created dictionary server (source %s, format %s)", provider.Source().Name(), serializer.Name())
	Logger.Infof("%s", config.String())

	s := &DictServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		provider:   provider,
		metrics:    metrics,
		ctx:        ctx,
		cancel:     cancel,
	}
	s.registerTransportHandler()
	return s
}

// registerTransportHandler installs the query handler: decode -> lookup -> serialize
func (s *DictServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(req []byte) []byte {
		start := time.Now()
		res := s.provider.Lookup(s.ctx, string(req))
		s.metrics.ObserveLookup(start, res.Found)

		resp, err := s.serializer.Serialize(res)
		if err != nil {
			Logger.Warningf("Failed to serialize result for %q: %v", res.Term, err)
			return []byte(common.NoEntry)
		}
		return resp
	})
}

// Bind creates the listening socket and, if configured, starts the metrics endpoint.
// The returned error wraps transport.ErrBind if the listening socket could not be created.
func (s *DictServer) Bind() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.addr != nil {
		return s.addr, nil
	}

	addr, err := s.transport.Bind(s.config)
	if err != nil {
		return nil, err
	}

	if s.config.MetricsEndpoint != "" {
		srv, err := startMetricsEndpoint(s.config.MetricsEndpoint, s.metrics)
		if err != nil {
			_ = s.transport.Close()
			return nil, fmt.Errorf("failed to start metrics endpoint: %w", err)
		}
		s.metricsSrv = srv
	}

	s.addr = addr
	return addr, nil
}

// Serve binds (if not done yet) and accepts connections until Close is called
func (s *DictServer) Serve() error {
	if _, err := s.Bind(); err != nil {
		return err
	}
	return s.transport.Serve()
}

// Close stops the transport and the metrics endpoint and cancels running lookups
func (s *DictServer) Close() error {
	s.cancel()

	s.mu.Lock()
	srv := s.metricsSrv
	s.metricsSrv = nil
	s.mu.Unlock()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return s.transport.Close()
}

// Metrics returns the metrics of the server
func (s *DictServer) Metrics() *common.ServerMetrics {
	return s.metrics
}
