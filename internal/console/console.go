// Package console provides the shared log sink and console capture for
// the plugin. Everything the plugin reports, including reload progress,
// flows through here; log output never influences control flow.
package console

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// timeFormat matches the millisecond timestamps the log file carries.
const timeFormat = "2006-01-02 15:04:05.000"

var (
	mu     sync.RWMutex
	logger = log.NewWithOptions(os.Stdout, log.Options{
		Prefix:          "firstlog",
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
	})
)

// Config controls the shared logger.
type Config struct {
	// Output is where log lines are written. Defaults to os.Stdout.
	Output io.Writer

	// Timestamps prepends a timestamp to every line.
	Timestamps bool

	// Verbose enables debug-level output.
	Verbose bool
}

// Setup reconfigures the shared logger. Typically called once at startup
// after the settings file has been read.
func Setup(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	mu.Lock()
	defer mu.Unlock()
	logger = log.NewWithOptions(out, log.Options{
		Prefix:          "firstlog",
		Level:           level,
		ReportTimestamp: cfg.Timestamps,
		TimeFormat:      timeFormat,
	})
}

// Log writes a plain informational message. This is the process-wide sink
// the reload subsystem reports through; it is fire-and-forget.
func Log(message string) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Info(message)
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...any) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Error(msg, keyvals...)
}
