package log

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"modelsagent/internal/core"
)

// AppLogger is the application logger implementation.
type AppLogger struct {
	logger     *log.Logger
	debug      bool
	prefix     string
	fileHandle *os.File
	mu         *sync.Mutex
}

// NewAppLoggerWithConfig creates a logger instance with configuration.
func NewAppLoggerWithConfig(output io.Writer, debugMode bool) *AppLogger {
	return &AppLogger{
		logger: log.New(output, "", log.LstdFlags),
		debug:  debugMode,
		mu:     &sync.Mutex{},
	}
}

// With returns a child logger that prefixes every line with "[prefix]".
// The child shares output and file handle with its parent.
func (l *AppLogger) With(prefix string) *AppLogger {
	if l == nil {
		return nil
	}
	child := *l
	if l.prefix != "" {
		child.prefix = l.prefix + " [" + prefix + "] "
	} else {
		child.prefix = "[" + prefix + "] "
	}
	return &child
}

func (l *AppLogger) printf(level, format string, args ...any) {
	l.logger.Printf(level+" "+l.prefix+format, args...)
}

// Debug logs a message at DEBUG level.
func (l *AppLogger) Debug(format string, args ...any) {
	if l != nil && l.debug {
		l.printf("[DEBUG]", format, args...)
	}
}

// Info logs a message at INFO level.
func (l *AppLogger) Info(format string, args ...any) {
	if l != nil {
		l.printf("[INFO]", format, args...)
	}
}

// Warn logs a message at WARN level.
func (l *AppLogger) Warn(format string, args ...any) {
	if l != nil {
		l.printf("[WARN]", format, args...)
	}
}

// Error logs a message at ERROR level.
func (l *AppLogger) Error(format string, args ...any) {
	if l != nil {
		l.printf("[ERROR]", format, args...)
	}
}

// Fatal logs a message at FATAL level and terminates the process.
func (l *AppLogger) Fatal(format string, args ...any) {
	if l != nil {
		l.logger.Fatalf("[FATAL] "+l.prefix+format, args...)
	} else {
		log.Fatalf("[FATAL] "+format, args...)
	}
}

// Close safely closes log file handle.
func (l *AppLogger) Close() error {
	if l == nil || l.mu == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileHandle != nil {
		err := l.fileHandle.Close()
		l.fileHandle = nil
		return err
	}
	return nil
}

func containsPathTraversal(path string) bool {
	for _, pattern := range []string{"..", "./", ".\\"} {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

// createDebugFileOutput creates debug file output, falls back to stdout on failure.
func createDebugFileOutput() (io.Writer, *os.File) {
	debugFile := os.Getenv("DEBUG_FILE")
	if debugFile == "" {
		return os.Stdout, nil
	}

	if len(debugFile) > core.MaxDebugFilePathLength {
		log.Printf("[WARN] DEBUG_FILE path too long, falling back to stdout")
		return os.Stdout, nil
	}

	if containsPathTraversal(debugFile) {
		log.Printf("[WARN] DEBUG_FILE contains path traversal characters, falling back to stdout")
		return os.Stdout, nil
	}

	//nolint:gosec // G304: debugFile from env var, validated by containsPathTraversal
	file, err := os.OpenFile(debugFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, core.FilePermissionReadWrite)
	if err != nil {
		log.Printf("[WARN] Failed to open DEBUG_FILE '%s': %v, falling back to stdout", debugFile, err)
		return os.Stdout, nil
	}

	return file, file
}

// IsDebug returns whether the app is running in debug mode.
func IsDebug() bool {
	return os.Getenv("GIN_MODE") == "debug" || strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug")
}

// CreateLogger creates the process logger.
func CreateLogger() *AppLogger {
	output, fileHandle := createDebugFileOutput()

	return &AppLogger{
		logger:     log.New(output, "", log.LstdFlags),
		debug:      IsDebug(),
		fileHandle: fileHandle,
		mu:         &sync.Mutex{},
	}
}

// ForRequest returns a logger scoped to one request when the base logger supports it.
func ForRequest(base core.Logger, requestID string) core.Logger {
	if appLog, ok := base.(*AppLogger); ok && appLog != nil {
		return appLog.With(requestID)
	}
	return base
}
