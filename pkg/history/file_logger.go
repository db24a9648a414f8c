package history

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends events to a CBOR file.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	file    *os.File
	encoder *cbor.Encoder
	logger  *slog.Logger
	mu      sync.Mutex
	closed  bool
}

// NewFileLogger opens path for appending with mode 0600. An existing file
// is restricted to 0600 as well.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}

	// OpenFile keeps the mode of an existing file.
	if err := f.Chmod(0o600); err != nil && runtime.GOOS != "windows" {
		_ = f.Close()
		return nil, fmt.Errorf("restrict permissions: %w", err)
	}

	return &FileLogger{
		file:    f,
		encoder: NewEncoder(f),
		logger:  slog.Default(),
	}, nil
}

// SetLogger sets where write failures are reported. Nil is ignored.
func (l *FileLogger) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger = logger
}

// Log writes an event. Write failures are logged at debug level and
// otherwise dropped.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err := l.encoder.Encode(event); err != nil {
		l.logger.Debug("history write failed",
			slog.String("file", l.file.Name()),
			slog.String("error", err.Error()))
	}
}

// Close closes the file. It is safe to call more than once; later Log
// calls are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
