package common

import (
	"github.com/VictoriaMetrics/metrics"
	"io"
	"time"
)

// ServerMetrics bundles the Prometheus metrics of one server instance.
// Each instance owns its own metrics.Set, so several servers (e.g. in tests) do not collide.
type ServerMetrics struct {
	set *metrics.Set

	ConnsAccepted *metrics.Counter
	ConnsClosed   *metrics.Counter
	AcceptErrors  *metrics.Counter
	RecvErrors    *metrics.Counter
	SendErrors    *metrics.Counter
	Queries       *metrics.Counter
	QueriesFound  *metrics.Counter
	QueriesMissed *metrics.Counter
	BytesIn       *metrics.Counter
	BytesOut      *metrics.Counter
	HandlerPanics *metrics.Counter
	LookupSeconds *metrics.Histogram
}

// NewServerMetrics creates and registers all server metrics
func NewServerMetrics() *ServerMetrics {
	set := metrics.NewSet()
	return &ServerMetrics{
		set:           set,
		ConnsAccepted: set.NewCounter(`dictd_connections_accepted_total`),
		ConnsClosed:   set.NewCounter(`dictd_connections_closed_total`),
		AcceptErrors:  set.NewCounter(`dictd_accept_errors_total`),
		RecvErrors:    set.NewCounter(`dictd_receive_errors_total`),
		SendErrors:    set.NewCounter(`dictd_send_errors_total`),
		Queries:       set.NewCounter(`dictd_queries_total`),
		QueriesFound:  set.NewCounter(`dictd_lookups_total{result="found"}`),
		QueriesMissed: set.NewCounter(`dictd_lookups_total{result="noentry"}`),
		BytesIn:       set.NewCounter(`dictd_received_bytes_total`),
		BytesOut:      set.NewCounter(`dictd_sent_bytes_total`),
		HandlerPanics: set.NewCounter(`dictd_handler_panics_total`),
		LookupSeconds: set.NewHistogram(`dictd_lookup_duration_seconds`),
	}
}

// RegisterGauge adds a gauge whose value is read from f on every scrape
func (m *ServerMetrics) RegisterGauge(name string, f func() float64) {
	m.set.GetOrCreateGauge(name, f)
}

// ObserveLookup records the duration of a lookup that started at start
func (m *ServerMetrics) ObserveLookup(start time.Time, found bool) {
	m.LookupSeconds.Update(time.Since(start).Seconds())
	if found {
		m.QueriesFound.Inc()
	} else {
		m.QueriesMissed.Inc()
	}
}

// WritePrometheus writes all metrics in Prometheus text exposition format
func (m *ServerMetrics) WritePrometheus(w io.Writer) {
	m.set.WritePrometheus(w)
}
