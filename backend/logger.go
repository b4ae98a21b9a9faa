/*
 * backend/logger.go
 *
 * In-memory application log.
 * - Keeps a bounded ring of recent entries for the status surfaces.
 * - An optional emitter hook notifies the UI layer when entries arrive.
 */

package backend

import (
	"fmt"
	"sync"
	"time"
)

// LogLevel is the severity of a log entry.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LogEntry is one recorded log line.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
}

// Logger accumulates log entries in memory, keeping at most maxSize of them.
// All methods are safe on a nil receiver so optional logging call sites stay
// unguarded.
type Logger struct {
	mu      sync.RWMutex
	entries []LogEntry
	maxSize int
	emitter func(LogEntry)
}

// NewLogger creates a logger bounded to maxSize entries.
func NewLogger(maxSize int) *Logger {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Logger{
		entries: make([]LogEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Log records one entry at the given level.
func (l *Logger) Log(level LogLevel, message string) {
	if l == nil {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level.String(),
		Message:   message,
	}

	l.mu.Lock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.maxSize {
		// Copy into a fresh buffer so capacity can't grow unbounded.
		start := len(l.entries) - l.maxSize
		trimmed := make([]LogEntry, l.maxSize)
		copy(trimmed, l.entries[start:])
		l.entries = trimmed
	}
	emitter := l.emitter
	l.mu.Unlock()

	if emitter != nil {
		emitter(entry)
	}
}

// Debug records a formatted debug entry.
func (l *Logger) Debug(format string, args ...any) {
	l.Log(LogLevelDebug, fmt.Sprintf(format, args...))
}

// Info records a formatted info entry.
func (l *Logger) Info(format string, args ...any) {
	l.Log(LogLevelInfo, fmt.Sprintf(format, args...))
}

// Warn records a formatted warning entry.
func (l *Logger) Warn(format string, args ...any) {
	l.Log(LogLevelWarn, fmt.Sprintf(format, args...))
}

// Error records a formatted error entry.
func (l *Logger) Error(format string, args ...any) {
	l.Log(LogLevelError, fmt.Sprintf(format, args...))
}

// Entries returns a copy of the recorded entries.
func (l *Logger) Entries() []LogEntry {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Count returns the number of recorded entries.
func (l *Logger) Count() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear drops all recorded entries.
func (l *Logger) Clear() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = l.entries[:0]
}

// SetEmitter installs a hook called for each new entry.
func (l *Logger) SetEmitter(emitter func(LogEntry)) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emitter = emitter
}
