package common

import (
	"testing"

	"github.com/lni/dragonboat/v4/logger"
)

func TestInitLoggersRepeatedly(t *testing.T) {
	// the server can be started more than once per process (tests, embedding)
	for _, level := range []string{"info", "debug", "error", "warn"} {
		if err := InitLoggers(ServerConfig{LogLevel: level}); err != nil {
			t.Fatalf("InitLoggers(%s) failed: %v", level, err)
		}
	}

	if err := InitLoggers(ServerConfig{LogLevel: "loud"}); err == nil {
		t.Error("Expected an error for an invalid level")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"debug":   logger.DEBUG,
		"INFO":    logger.INFO,
		"warn":    logger.WARNING,
		"warning": logger.WARNING,
		"error":   logger.ERROR,
	}
	for in, want := range tests {
		got, err := ParseLogLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLogLevel(""); err == nil {
		t.Error("Expected an error for an empty level")
	}
}
