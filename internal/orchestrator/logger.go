package orchestrator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	pkgLogger   *DebugLogger
	pkgLoggerMu sync.RWMutex
)

// setPackageLogger routes debugLog to l.
func setPackageLogger(l *DebugLogger) {
	pkgLoggerMu.Lock()
	defer pkgLoggerMu.Unlock()
	pkgLogger = l
}

// debugLog traces workflow internals. Messages start with a bracketed component.
func debugLog(format string, args ...interface{}) {
	pkgLoggerMu.RLock()
	l := pkgLogger
	pkgLoggerMu.RUnlock()

	l.Log(format, args...)
}

// DebugLogger writes timestamped workflow traces. The zero value discards.
type DebugLogger struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
	now    func() time.Time
}

// NewDebugLogger appends to the file at logPath, creating its directory.
// An empty path gives a no-op logger.
func NewDebugLogger(logPath string) (*DebugLogger, error) {
	if logPath == "" {
		return &DebugLogger{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := &DebugLogger{w: f, closer: f}
	l.Log("=== devteam session %d started at %s ===", os.Getpid(), time.Now().Format(time.RFC3339))
	return l, nil
}

// NewWriterLogger writes traces to w.
func NewWriterLogger(w io.Writer) *DebugLogger {
	return &DebugLogger{w: w}
}

// DefaultLogPath returns the debug log location under dir.
func DefaultLogPath(dir string) string {
	return filepath.Join(dir, ".devteam", "logs", "orchestrator-debug.log")
}

// NewDebugLoggerForDir creates a debug logger in dir/.devteam/logs.
// Returns a no-op logger if the file cannot be opened.
func NewDebugLoggerForDir(dir string) *DebugLogger {
	l, err := NewDebugLogger(DefaultLogPath(dir))
	if err != nil {
		return &DebugLogger{}
	}
	return l
}

// NopLogger returns a logger that discards everything.
func NopLogger() *DebugLogger {
	return &DebugLogger{}
}

// Log writes one line. Safe on a nil or zero logger.
func (l *DebugLogger) Log(format string, args ...interface{}) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return
	}

	ts := time.Now()
	if l.now != nil {
		ts = l.now()
	}
	fmt.Fprintf(l.w, "[%s] %s\n", ts.Format("15:04:05.000"), fmt.Sprintf(format, args...))
	if f, ok := l.w.(*os.File); ok {
		f.Sync()
	}
}

// Close closes the underlying file, if the logger owns one.
func (l *DebugLogger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.closer.Close()
	l.w, l.closer = nil, nil
	return err
}
