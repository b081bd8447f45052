package orchestrator

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugLogger_WriterFormat(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)
	l.now = func() time.Time { return time.Date(2025, 1, 1, 9, 30, 5, 250_000_000, time.UTC) }

	l.Log("[task] %s has no files to commit", "abc12345")

	assert.Equal(t, "[09:30:05.250] [task] abc12345 has no files to commit\n", buf.String())
	assert.NoError(t, l.Close(), "writer loggers own nothing")
}

func TestDebugLogger_NilAndZeroAreNoOps(t *testing.T) {
	var nilLogger *DebugLogger
	nilLogger.Log("ignored")
	assert.NoError(t, nilLogger.Close())

	NopLogger().Log("ignored")
	assert.NoError(t, NopLogger().Close())
}

func TestNewDebugLoggerForDir(t *testing.T) {
	dir := t.TempDir()

	l := NewDebugLoggerForDir(dir)
	l.Log("[phase] %s -> %s", "abc", PhaseDesign)
	require.NoError(t, l.Close())
	l.Log("after close is dropped")

	data, err := os.ReadFile(filepath.Join(dir, ".devteam", "logs", "orchestrator-debug.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "devteam session")
	assert.Contains(t, string(data), "[phase] abc -> design")
	assert.NotContains(t, string(data), "after close")
}

func TestNewDebugLogger_EmptyPath(t *testing.T) {
	l, err := NewDebugLogger("")
	require.NoError(t, err)
	l.Log("discarded")
	assert.NoError(t, l.Close())
}
