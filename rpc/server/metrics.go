package server

import (
	"errors"
	"github.com/ValentinKolb/dictd/rpc/common"
	"net"
	"net/http"
	"time"
)

// MetricsPath is the path the Prometheus metrics are served on
const MetricsPath = "/metrics"

// newMetricsHandler returns the http handler exposing the server metrics
func newMetricsHandler(metrics *common.ServerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(MetricsPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		metrics.WritePrometheus(w)
	})
	return mux
}

// startMetricsEndpoint listens on endpoint and serves the metrics in the background.
// Listening happens before returning, so a bad endpoint is reported to the caller.
func startMetricsEndpoint(endpoint string, metrics *common.ServerMetrics) (*http.Server, error) {
	listener, err := net.Listen("tcp", endpoint)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler:           newMetricsHandler(metrics),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Logger.Errorf("Metrics endpoint stopped: %v", err)
		}
	}()

	Logger.Infof("Serving metrics on http://%s%s", listener.Addr(), MetricsPath)
	return srv, nil
}
