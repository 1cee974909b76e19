// Package audit appends one structured JSON record per completed query to
// an append-only log file, one object per line.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record captures a single query outcome.
type Record struct {
	QueryID    string   `json:"query_id"`
	Timestamp  string   `json:"ts"`
	Query      string   `json:"query"`
	State      string   `json:"state"`
	Verdict    string   `json:"verdict,omitempty"`
	ChunkIDs   []string `json:"chunk_ids"`
	DurationMS int64    `json:"duration_ms"`
	Reason     string   `json:"reason,omitempty"`
}

// Logger is an append-only JSONL sink. Safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	path string
}

// NewLogger creates a logger writing to path. The parent directory is
// created on first append.
func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

// Append writes one record as a single JSON line.
func (l *Logger) Append(rec Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create audit log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}
