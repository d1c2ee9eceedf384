// File path: internal/subclass/index.go
package subclass

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Record is one sub-categorization decision, keyed by filename. Stage 1
// already deduplicated by content hash, so filename uniqueness within the
// real partition is sufficient here.
type Record struct {
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

// Index is the stage-2 filename-to-record mapping, independent of the stage-1
// content index. Same whole-file read-modify-write contract.
type Index struct {
	path string
	mu   sync.RWMutex
}

func NewIndex(path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("subclassification index path required")
	}
	return &Index{path: path}, nil
}

// Load returns the full mapping; a missing or empty file is an empty mapping.
func (ix *Index) Load() (map[string]Record, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.read()
}

// Update runs fn against the current mapping and rewrites the whole file.
func (ix *Index) Update(fn func(map[string]Record) error) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	records, err := ix.read()
	if err != nil {
		return err
	}
	if err := fn(records); err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode subclassification index: %w", err)
	}
	if err := os.WriteFile(ix.path, data, 0o644); err != nil {
		return fmt.Errorf("write subclassification index: %w", err)
	}
	return nil
}

func (ix *Index) read() (map[string]Record, error) {
	data, err := os.ReadFile(ix.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Record{}, nil
		}
		return nil, fmt.Errorf("read subclassification index: %w", err)
	}
	if len(data) == 0 {
		return map[string]Record{}, nil
	}
	records := make(map[string]Record)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode subclassification index: %w", err)
	}
	return records, nil
}
