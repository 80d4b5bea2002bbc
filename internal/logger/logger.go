package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu       sync.Mutex
	debug    bool
	logFile  *os.File
	instance *log.Logger
)

// InitLogging sets up file-backed logging. Debug messages are only written
// when debugEnabled is true. Safe to call before any logging happens; until
// then all log calls are no-ops.
func InitLogging(debugEnabled bool, logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	debug = debugEnabled
	logFile = f
	instance = log.New(f, "", log.LstdFlags|log.Lmicroseconds)

	return nil
}

// Close flushes and closes the underlying log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		instance = nil
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	instance = log.New(w, "", log.LstdFlags)
}

func output(level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		return
	}

	instance.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

// Debugf logs a debug message. Dropped unless debug logging was enabled.
func Debugf(format string, args ...any) {
	mu.Lock()
	enabled := debug
	mu.Unlock()

	if !enabled {
		return
	}

	output("DEBUG", format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...any) {
	output("INFO", format, args...)
}

// Warnf logs a warning message.
func Warnf(format string, args ...any) {
	output("WARN", format, args...)
}

// Errorf logs an error message.
func Errorf(format string, args ...any) {
	output("ERROR", format, args...)
}
