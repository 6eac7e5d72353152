// Package server implements the dictionary server on top of a server transport.
//
// The server registers one handler with the transport. For every received query the handler:
//
//  1. decodes the bytes as the query string
//  2. looks the term up with a dict.Provider (case-insensitive, at most two definitions per category)
//  3. encodes the result with a serializer.IResultSerializer (NOENTRY if nothing was found)
//
// Every lookup is timed and counted (found / noentry) in the common.ServerMetrics shared with
// the transport. If MetricsEndpoint is set, the metrics are exposed in Prometheus text format
// on http://<endpoint>/metrics.
//
// Usage Example:
//
//	metrics := common.NewServerMetrics()
//	s := server.NewDictServer(
//	  config,
//	  tcp.NewTCPServerTransport(metrics),
//	  serializer.NewTextSerializer(),
//	  dict.NewProvider(fsource.NewFileSource("dictionary/data")),
//	  metrics,
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Bind and Serve are split so callers can learn the bound address (port 0) before serving.
// A failed bind is reported as an error wrapping transport.ErrBind.
package server
