package receipt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Writer persists receipts
type Writer interface {
	Write(r Receipt) error
	Close() error
}

// Mode write strategy
type Mode string

const (
	// ModeOverwrite truncates the file and writes a single JSON object.
	ModeOverwrite Mode = "overwrite"
	// ModeAppend appends JSONL (one JSON object per line).
	ModeAppend Mode = "append"
)

// parseMode falls back to overwrite for unrecognized values.
func parseMode(s string) Mode {
	if Mode(s) == ModeAppend {
		return ModeAppend
	}
	return ModeOverwrite
}

// openFlags for this mode
func (m Mode) openFlags() int {
	if m == ModeAppend {
		return os.O_CREATE | os.O_APPEND | os.O_WRONLY
	}
	return os.O_CREATE | os.O_TRUNC | os.O_WRONLY
}

// fileWriter implementation
type fileWriter struct {
	mu   sync.Mutex
	file *os.File
	mode Mode
}

// NewWriter opens the receipt file, creating parent directories as needed.
func NewWriter(path string, mode string) (Writer, error) {
	m := parseMode(mode)

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory for receipt: %w", err)
		}
	}

	f, err := os.OpenFile(path, m.openFlags(), 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open receipt file: %w", err)
	}

	return &fileWriter{
		file: f,
		mode: m,
	}, nil
}

// Write one receipt. In append mode the record is terminated with a
// newline so the file stays valid JSONL.
func (w *fileWriter) Write(r Receipt) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	if w.mode == ModeAppend {
		data = append(data, '\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Write(data); err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	return nil
}

// Close flushes the receipt to disk. Receipts are audit evidence; a
// receipt that only ever reached the page cache is not evidence.
func (w *fileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	_ = w.file.Sync()
	return w.file.Close()
}
