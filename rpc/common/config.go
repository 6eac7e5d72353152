package common

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

type SourceType string

const (
	SourceTypeFile  SourceType = "fs"
	SourceTypeRedis SourceType = "redis"
)

type ResponseFormat string

const (
	FormatText    ResponseFormat = "text"
	FormatCompact ResponseFormat = "compact"
)

// ServerConfig holds all configuration parameters of the dictionary server.
type ServerConfig struct {
	// Listener settings
	Host    string
	Port    int
	Backlog int

	// Connection handling
	Workers         int
	BufferSize      int
	ReadTimeoutSec  int64
	WriteTimeoutSec int64
	MaxSendFailures int
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
	ResponseFormat  ResponseFormat
	MetricsEndpoint string
	LogLevel        string

	// Dictionary source
	Source      SourceType
	DataDir     string
	RedisAddr   string
	RedisPass   string
	RedisDB     int
	RedisPrefix string
}

// Endpoint returns the host:port address the server binds to
func (c *ServerConfig) Endpoint() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	seconds := func(v int64) string {
		if v <= 0 {
			return "none"
		}
		return fmt.Sprintf("%d sec", v)
	}

	addSection("Listener")
	addField("Endpoint", c.Endpoint())
	addField("Backlog", strconv.Itoa(c.Backlog))

	addSection("Connections")
	addField("Workers", strconv.Itoa(c.Workers))
	addField("Buffer Size", fmt.Sprintf("%d bytes", c.BufferSize))
	addField("Read Timeout", seconds(c.ReadTimeoutSec))
	addField("Write Timeout", seconds(c.WriteTimeoutSec))
	if c.MaxSendFailures > 0 {
		addField("Max Send Failures", strconv.Itoa(c.MaxSendFailures))
	} else {
		addField("Max Send Failures", "unlimited")
	}
	addField("TCP No Delay", strconv.FormatBool(c.TCPNoDelay))
	addField("TCP Keep Alive", seconds(int64(c.TCPKeepAliveSec)))
	addField("Response Format", string(c.ResponseFormat))

	addSection("Dictionary")
	addField("Source", string(c.Source))
	switch c.Source {
	case SourceTypeRedis:
		addField("Redis Address", c.RedisAddr)
		addField("Redis DB", strconv.Itoa(c.RedisDB))
		addField("Redis Prefix", c.RedisPrefix)
	default:
		addField("Data Directory", c.DataDir)
	}

	addSection("Observability")
	addField("Log Level", c.LogLevel)
	if c.MetricsEndpoint != "" {
		addField("Metrics Endpoint", c.MetricsEndpoint)
	} else {
		addField("Metrics Endpoint", "disabled")
	}

	return sb.String()
}
