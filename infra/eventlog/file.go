// Package eventlog provides the append-only text sink for cyber events.
package eventlog

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileSink appends cyber events to a text file, one line per event.
type FileSink struct {
	f *os.File
}

// NewFileSink opens (or creates) the event log at path, creating parent
// directories as needed. Truncate discards any previous content.
func NewFileSink(path string, truncate bool) (*FileSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("event log dir: %w", err)
		}
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("event log open: %w", err)
	}
	return &FileSink{f: f}, nil
}

// LogEvent appends one event line.
func (s *FileSink) LogEvent(timestep int, message string) error {
	_, err := fmt.Fprintf(s.f, "time=%d %s\n", timestep, message)
	return err
}

// Close flushes and closes the underlying file.
func (s *FileSink) Close() error { return s.f.Close() }
