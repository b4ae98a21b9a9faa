package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoggerTrimCapacity(t *testing.T) {
	logger := NewLogger(2)
	logger.Info("first")
	logger.Info("second")
	logger.Info("third")

	entries := logger.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "second", entries[0].Message)
	require.Equal(t, "third", entries[1].Message)
	require.Equal(t, 2, logger.Count())
}

func TestLoggerEmitter(t *testing.T) {
	logger := NewLogger(10)
	var emitted []LogEntry
	logger.SetEmitter(func(entry LogEntry) { emitted = append(emitted, entry) })
	logger.Warn("port forward %s failed", "inst-api-9000")

	require.Len(t, emitted, 1)
	require.Equal(t, "WARN", emitted[0].Level)
	require.Equal(t, "port forward inst-api-9000 failed", emitted[0].Message)
}

func TestLoggerClearAndNilSafety(t *testing.T) {
	var nilLogger *Logger
	require.NotPanics(t, func() { nilLogger.Info("noop") })
	require.Equal(t, 0, nilLogger.Count())
	require.Nil(t, nilLogger.Entries())

	logger := NewLogger(5)
	logger.Debug("entry")
	require.Equal(t, 1, logger.Count())

	logger.Clear()
	require.Equal(t, 0, logger.Count())
}

func TestLoggerDefaultMaxSizeAndUnknownLevel(t *testing.T) {
	logger := NewLogger(0)
	logger.Log(LogLevel(99), "mystery")

	entries := logger.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "UNKNOWN", entries[0].Level)
}
