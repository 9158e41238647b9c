package log

import (
	"bytes"
	"strings"
	"testing"

	"modelsagent/internal/core"
)

func TestNewAppLoggerWithConfig(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAppLoggerWithConfig(&buf, true)
	if logger == nil {
		t.Fatal("logger should not be nil")
	}
	if !logger.debug {
		t.Error("debug mode should be enabled")
	}
	if logger.fileHandle != nil {
		t.Error("external output should not hold a file handle")
	}
}

func TestAppLogger_Debug(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		message   string
		expectLog bool
	}{
		{"debug enabled", true, "debug message", true},
		{"debug disabled", false, "should not appear", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewAppLoggerWithConfig(&buf, tt.debugMode)
			logger.Debug(tt.message)
			output := buf.String()
			if strings.Contains(output, tt.message) != tt.expectLog {
				t.Errorf("expected log output=%v, got %q", tt.expectLog, output)
			}
			if tt.expectLog && !strings.Contains(output, "[DEBUG]") {
				t.Error("debug line should carry the [DEBUG] prefix")
			}
		})
	}
}

func TestAppLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAppLoggerWithConfig(&buf, false)
	logger.Info("info: %s", "value")
	logger.Warn("warn: %d", 123)
	logger.Error("error: %v", "details")

	output := buf.String()
	for _, want := range []string{"[INFO] info: value", "[WARN] warn: 123", "[ERROR] error: details"} {
		if !strings.Contains(output, want) {
			t.Errorf("output should contain %q, got %q", want, output)
		}
	}
}

func TestAppLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAppLoggerWithConfig(&buf, false).With("req-1")
	logger.Info("tool selected: %s", "list_models")

	if !strings.Contains(buf.String(), "[INFO] [req-1] tool selected: list_models") {
		t.Errorf("child logger should prefix lines, got %q", buf.String())
	}

	nested := logger.With("stream")
	nested.Warn("client gone")
	if !strings.Contains(buf.String(), "[req-1]  [stream] client gone") {
		t.Errorf("nested prefixes should accumulate, got %q", buf.String())
	}
}

func TestForRequest(t *testing.T) {
	var buf bytes.Buffer
	base := NewAppLoggerWithConfig(&buf, false)

	scoped := ForRequest(base, "abc")
	scoped.Info("hello")
	if !strings.Contains(buf.String(), "[abc] hello") {
		t.Errorf("request logger should carry the request id, got %q", buf.String())
	}

	nop := &core.NopLogger{}
	if ForRequest(nop, "abc") != core.Logger(nop) {
		t.Error("non-AppLogger loggers should be returned unchanged")
	}
}

func TestAppLogger_NilSafety(t *testing.T) {
	var logger *AppLogger
	logger.Debug("no panic")
	logger.Info("no panic")
	logger.Warn("no panic")
	logger.Error("no panic")
	if err := logger.Close(); err != nil {
		t.Errorf("closing a nil logger should not fail: %v", err)
	}
	if logger.With("x") != nil {
		t.Error("child of nil logger should be nil")
	}
}

func TestAppLogger_Close(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAppLoggerWithConfig(&buf, false)
	if err := logger.Close(); err != nil {
		t.Errorf("closing logger without file handle should not fail: %v", err)
	}
}

func TestContainsPathTraversal(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected bool
	}{
		{"plain path", "/var/log/app.log", false},
		{"parent segment", "/var/../etc/passwd", true},
		{"relative parent", "../secret.txt", true},
		{"relative current", "./local.log", true},
		{"windows parent", "..\\config.ini", true},
		{"empty", "", false},
		{"dotted file name", "/var/log/app.2024.log", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := containsPathTraversal(tt.path); got != tt.expected {
				t.Errorf("containsPathTraversal(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestIsDebug(t *testing.T) {
	tests := []struct {
		name     string
		ginMode  string
		logLevel string
		expected bool
	}{
		{"gin debug", "debug", "", true},
		{"release", "release", "", false},
		{"log level debug", "release", "DEBUG", true},
		{"test mode", "test", "info", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GIN_MODE", tt.ginMode)
			t.Setenv("LOG_LEVEL", tt.logLevel)
			if got := IsDebug(); got != tt.expected {
				t.Errorf("IsDebug() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppLogger_MultipleWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := NewAppLoggerWithConfig(&buf, true)
	logger.Debug("first")
	logger.Info("second")
	logger.Warn("third")
	logger.Error("fourth")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Errorf("expected 4 lines, got %d", len(lines))
	}
}
