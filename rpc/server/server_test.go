package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/dictd/lib/dict"
	"github.com/ValentinKolb/dictd/lib/dict/fsource"
	"github.com/ValentinKolb/dictd/rpc/common"
	"github.com/ValentinKolb/dictd/rpc/serializer"
	"github.com/ValentinKolb/dictd/rpc/transport"
	"github.com/ValentinKolb/dictd/rpc/transport/tcp"
)

// --------------------------------------------------------------------------
// Test Helpers
// --------------------------------------------------------------------------

var partitions = map[string]string{
	"DH.json": `{
		"HELLO": {"MEANINGS": {"noun": ["a greeting", "an expression of surprise", "extra def dropped"]}, "SYNONYMS": ["HI"]},
		"HOUSE": {"MEANINGS": {"verb": ["to shelter"], "noun": ["a building", "a family line", "a legislative body"]}},
		"HUSH": {"MEANINGS": {}}
	}`,
	"DÉ.json": `{"ÉTÉ": {"MEANINGS": {"noun": ["summer"]}}}`,
	"DB.json": `{"BROKEN": `,
}

func writeData(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range partitions {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

// startDictServer serves the test data over TCP on a random loopback port
func startDictServer(t *testing.T, format serializer.IResultSerializer) (*DictServer, string) {
	t.Helper()

	metrics := common.NewServerMetrics()
	s := NewDictServer(
		common.ServerConfig{Host: "127.0.0.1", Port: 0, Workers: 2, LogLevel: "info"},
		tcp.NewTCPServerTransport(metrics),
		format,
		dict.NewProvider(fsource.NewFileSource(writeData(t))),
		metrics,
	)

	addr, err := s.Bind()
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	t.Cleanup(func() {
		_ = s.Close()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve returned %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Errorf("Serve did not return after Close")
		}
	})

	return s, addr.String()
}

func query(t *testing.T, conn net.Conn, q string) string {
	t.Helper()
	if _, err := conn.Write([]byte(q)); err != nil {
		t.Fatalf("Write %q failed: %v", q, err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 4096)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("Read response for %q failed: %v", q, err)
	}
	return string(buf[:n])
}

// captureTransport records the registered handler instead of serving
type captureTransport struct {
	handler transport.ServerHandleFunc
}

func (c *captureTransport) RegisterHandler(h transport.ServerHandleFunc) { c.handler = h }
func (c *captureTransport) Bind(common.ServerConfig) (net.Addr, error) {
	return nil, errors.New("not supported")
}
func (c *captureTransport) Serve() error { return nil }
func (c *captureTransport) Close() error { return nil }

// rawSource returns the same meanings for every term
type rawSource struct {
	meanings dict.Meanings
}

func (s *rawSource) Name() string { return "raw" }

func (s *rawSource) Get(context.Context, string) (dict.Record, bool, error) {
	return dict.Record{Meanings: s.meanings}, true, nil
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestQueries(t *testing.T) {
	_, addr := startDictServer(t, serializer.NewTextSerializer())

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	tests := []struct {
		query string
		want  string
	}{
		{"hello", `{"HELLO": {"noun": ["a greeting", "an expression of surprise"]}}`},
		{"zzzzqx", common.NoEntry},
		{"HoUsE", `{"HOUSE": {"verb": ["to shelter"], "noun": ["a building", "a family line"]}}`},
		{"hush", common.NoEntry},
		{"broken", common.NoEntry},
		{"été", `{"\u00c9T\u00c9": {"noun": ["summer"]}}`},
		{"/etc", common.NoEntry},
	}

	for _, tt := range tests {
		if got := query(t, conn, tt.query); got != tt.want {
			t.Errorf("Query %q: expected %s, got %s", tt.query, tt.want, got)
		}
	}
}

func TestCompactFormat(t *testing.T) {
	_, addr := startDictServer(t, serializer.NewCompactSerializer())

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	want := `{"HELLO":{"noun":["a greeting","an expression of surprise"]}}`
	if got := query(t, conn, "hello"); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestLookupMetrics(t *testing.T) {
	s, addr := startDictServer(t, serializer.NewTextSerializer())

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	query(t, conn, "hello")
	query(t, conn, "zzzzqx")
	query(t, conn, "zzzzqy")

	if got := s.Metrics().QueriesFound.Get(); got != 1 {
		t.Errorf("Expected 1 found lookup, got %d", got)
	}
	if got := s.Metrics().QueriesMissed.Get(); got != 2 {
		t.Errorf("Expected 2 missed lookups, got %d", got)
	}

	rec := httptest.NewRecorder()
	newMetricsHandler(s.Metrics()).ServeHTTP(rec, httptest.NewRequest("GET", MetricsPath, nil))

	body := rec.Body.String()
	for _, want := range []string{
		`dictd_lookups_total{result="found"} 1`,
		`dictd_lookups_total{result="noentry"} 2`,
		`dictd_queries_total 3`,
		`dictd_connections_active 1`,
		`dictd_pool_slots 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Metrics output is missing %q:\n%s", want, body)
		}
	}
}

func TestSerializeFailureAnswersNoEntry(t *testing.T) {
	ct := &captureTransport{}
	source := &rawSource{meanings: dict.Meanings{{Category: "noun", Definitions: []json.RawMessage{json.RawMessage(`{"unterminated"`)}}}}

	NewDictServer(common.ServerConfig{}, ct, serializer.NewTextSerializer(), dict.NewProvider(source), nil)

	if ct.handler == nil {
		t.Fatalf("No handler registered")
	}
	if got := string(ct.handler([]byte("word"))); got != common.NoEntry {
		t.Errorf("Expected %s, got %s", common.NoEntry, got)
	}
}

func TestBindError(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer occupied.Close()

	config := common.ServerConfig{Host: "127.0.0.1", Port: occupied.Addr().(*net.TCPAddr).Port}
	s := NewDictServer(config, tcp.NewTCPServerTransport(nil), serializer.NewTextSerializer(),
		dict.NewProvider(fsource.NewFileSource(t.TempDir())), nil)

	if err := s.Serve(); !errors.Is(err, transport.ErrBind) {
		t.Errorf("Expected ErrBind, got %v", err)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := common.NewServerMetrics()
	metrics.Queries.Inc()

	srv, err := startMetricsEndpoint("127.0.0.1:0", metrics)
	if err != nil {
		t.Fatalf("startMetricsEndpoint failed: %v", err)
	}
	defer srv.Close()

	if _, err := startMetricsEndpoint("not an endpoint", metrics); err == nil {
		t.Errorf("Expected an error for an invalid endpoint")
	}
}
