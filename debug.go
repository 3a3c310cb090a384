package tether

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// DebugLogger provides debug logging for tether operations. When enabled it
// logs queue activity, reconciliation passes, Hearth API failures, and
// background-task events. Nil receivers are safe everywhere so collaborators
// never need to guard their log calls.
type DebugLogger struct {
	mu      sync.Mutex
	enabled bool
	writer  io.Writer
}

// NewDebugLogger creates a debug logger. If logPath is empty, logs go to
// stderr; otherwise they go to a size-rotated file so a device offline for
// weeks cannot fill its own disk with retry chatter.
func NewDebugLogger(enabled bool, logPath string) *DebugLogger {
	var writer io.Writer = os.Stderr

	if enabled && logPath != "" {
		writer = &lumberjack.Logger{
			Filename:   logPath,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		}
	}

	return &DebugLogger{
		enabled: enabled,
		writer:  writer,
	}
}

// Close closes the logger's file writer if it has one.
func (l *DebugLogger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if closer, ok := l.writer.(io.Closer); ok && l.writer != os.Stderr {
		return closer.Close()
	}
	return nil
}

// Log writes a debug message if logging is enabled.
func (l *DebugLogger) Log(format string, args ...any) {
	if l == nil || !l.enabled {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(l.writer, "[%s] [TETHER] %s\n", timestamp, msg)
}

// LogError logs an error with its originating operation.
func (l *DebugLogger) LogError(operation string, err error) {
	if l == nil || !l.enabled {
		return
	}
	l.Log("ERROR [%s]: %v", operation, err)
}

// LogQueue logs queue activity (enqueue, drain, clear).
func (l *DebugLogger) LogQueue(queue, detail string) {
	if l == nil || !l.enabled {
		return
	}
	l.Log("QUEUE [%s]: %s", queue, detail)
}

// LogReconcile logs reconciliation pass details.
func (l *DebugLogger) LogReconcile(trigger, detail string) {
	if l == nil || !l.enabled {
		return
	}
	l.Log("RECONCILE [%s]: %s", trigger, detail)
}
