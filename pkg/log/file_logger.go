package log

import (
	"fmt"
	"os"
	"sync"
)

// FileExtension is the suffix of protocol capture files.
const FileExtension = ".mmlog"

// FileLogger appends one CBOR record per event to a file. Each record is
// encoded before the write so a failed encode never leaves a partial record.
type FileLogger struct {
	path string

	mu      sync.Mutex
	file    *os.File
	written uint64
	failed  uint64
}

// NewFileLogger opens path for appending, creating it if needed.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open protocol log: %w", err)
	}
	return &FileLogger{path: path, file: f}, nil
}

func (l *FileLogger) Path() string { return l.path }

// Log appends event. Failures are counted in Stats.
func (l *FileLogger) Log(event Event) {
	rec, err := EncodeEvent(event)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}
	if err == nil {
		_, err = l.file.Write(rec)
	}
	if err != nil {
		l.failed++
		return
	}
	l.written++
}

// Stats reports how many events were written and how many failed.
func (l *FileLogger) Stats() (written, failed uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written, l.failed
}

// Close closes the file. Events logged afterwards are discarded.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

var _ Logger = (*FileLogger)(nil)
