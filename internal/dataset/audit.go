// File path: internal/dataset/audit.go
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// AuditEntry is one row of the append-only correction history. Duplicates
// across entries are expected and harmless; this is a log, not a projection.
type AuditEntry struct {
	Action      string    `json:"action"`
	File        string    `json:"file"`
	Destination string    `json:"destination"`
	BatchID     string    `json:"batch_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// AuditLog persists an ordered JSON array of entries. Appends rewrite the
// whole array under a lock; volume is human-paced, so the simple contract of
// the original tool is kept.
type AuditLog struct {
	path string
	mu   sync.Mutex
}

func NewAuditLog(path string) (*AuditLog, error) {
	if path == "" {
		return nil, errors.New("audit log path required")
	}
	return &AuditLog{path: path}, nil
}

// Append adds entries at the end of the log in order. Existing entries are
// never rewritten or removed.
func (a *AuditLog) Append(entries ...AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	existing, err := a.read()
	if err != nil {
		return err
	}
	existing = append(existing, entries...)
	data, err := json.MarshalIndent(existing, "", "  ")
	if err != nil {
		return fmt.Errorf("encode audit log: %w", err)
	}
	if err := os.WriteFile(a.path, data, 0o644); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// Entries returns a copy of the full history, oldest first.
func (a *AuditLog) Entries() ([]AuditEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.read()
}

func (a *AuditLog) read() ([]AuditEntry, error) {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var entries []AuditEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode audit log: %w", err)
	}
	return entries, nil
}
