// File path: internal/dataset/index.go
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// Record is one committed classification, keyed by content hash so the same
// bytes uploaded under two names resolve to a single entry.
type Record struct {
	Hash      string    `json:"hash"`
	Path      string    `json:"path"`
	Label     string    `json:"label"`
	Origin    string    `json:"origin"`
	Timestamp time.Time `json:"timestamp"`
}

// Index is the persistent hash-to-record mapping, the single source of truth
// for what has been decided. The whole file is read, mutated and rewritten
// inside one critical section; callers never see partial state.
type Index struct {
	path string
	mu   sync.RWMutex
}

func NewIndex(path string) (*Index, error) {
	if path == "" {
		return nil, errors.New("index path required")
	}
	return &Index{path: path}, nil
}

// Load returns the full mapping. A missing or empty index file is an empty
// mapping, not an error.
func (ix *Index) Load() (map[string]Record, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.read()
}

// Get looks up a single record by content hash.
func (ix *Index) Get(hash string) (Record, bool, error) {
	records, err := ix.Load()
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := records[hash]
	return rec, ok, nil
}

// Update runs fn against the current mapping and persists the result as one
// whole-file rewrite. This is the only mutation path; concurrent updates are
// serialized here.
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
	return ix.write(records)
}

func (ix *Index) read() (map[string]Record, error) {
	data, err := os.ReadFile(ix.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Record{}, nil
		}
		return nil, fmt.Errorf("read index: %w", err)
	}
	if len(data) == 0 {
		return map[string]Record{}, nil
	}
	records := make(map[string]Record)
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	return records, nil
}

func (ix *Index) write(records map[string]Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := os.WriteFile(ix.path, data, 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}
