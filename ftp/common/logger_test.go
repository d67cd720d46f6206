package common

import (
	"testing"
)

// TestInitLoggersRepeated tests that repeated initialization is safe: the
// logger factory may only be installed once per process, so every server
// or client created after the first must not panic here
func TestInitLoggersRepeated(t *testing.T) {
	InitLoggers("info")
	InitLoggers("debug")
	InitLoggers("error")
}

// TestValidLogLevel tests the accepted level names
func TestValidLogLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warning", "warn", "error", "DEBUG", "Info"} {
		if !validLogLevel(level) {
			t.Errorf("level %q rejected", level)
		}
	}

	for _, level := range []string{"", "loud", "trace", "critical"} {
		if validLogLevel(level) {
			t.Errorf("level %q accepted", level)
		}
	}
}
