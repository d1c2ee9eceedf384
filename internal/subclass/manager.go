// File path: internal/subclass/manager.go
package subclass

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/dataset"
)

const sourceName = "clasificaciones/real"

// Decision is one user-confirmed sub-category for a stage-1 "real" file.
type Decision struct {
	Filename string `json:"filename"`
	Category string `json:"category"`
}

// CommittedItem describes one file routed into its category partition.
type CommittedItem struct {
	Filename string `json:"filename"`
	Category string `json:"category"`
	Path     string `json:"path"`
}

// BatchResult mirrors the stage-1 shape with per-category counts.
type BatchResult struct {
	BatchID   string              `json:"batch_id"`
	Counts    map[string]int      `json:"counts"`
	Committed []CommittedItem     `json:"committed,omitempty"`
	Errors    []dataset.ItemError `json:"errors,omitempty"`
}

// Manager routes already-"real" images into the fixed category partitions,
// with the same move-and-index transaction shape as the stage-1 curator.
type Manager struct {
	sourceDir string
	targetDir string
	index     *Index
}

// NewManager wires the stage-2 tree under the layout and creates the category
// directories idempotently.
func NewManager(layout *dataset.Layout) (*Manager, error) {
	if layout == nil {
		return nil, errors.New("layout required")
	}
	for _, category := range Categories {
		dir := filepath.Join(layout.SubTarget, category)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create category directory %s: %w", dir, err)
		}
	}
	index, err := NewIndex(layout.SubIndexFile)
	if err != nil {
		return nil, err
	}
	return &Manager{
		sourceDir: layout.SubSource,
		targetDir: layout.SubTarget,
		index:     index,
	}, nil
}

// ScanSource lists the stage-1 "real" files still pending sub-categorization.
func (m *Manager) ScanSource() ([]string, error) {
	return dataset.ScanImages(m.sourceDir)
}

// Index exposes the stage-2 index for read access.
func (m *Manager) Index() *Index {
	return m.index
}

// Commit processes decisions in order. An unknown category or missing source
// file yields a per-item error with zero mutation for that item; siblings
// still commit. The index is persisted once at the end of the batch, also when
// a cancelled context cuts the batch short.
func (m *Manager) Commit(ctx context.Context, decisions []Decision) (BatchResult, error) {
	if len(decisions) == 0 {
		return BatchResult{}, dataset.ErrEmptyBatch
	}
	logger := common.Logger()
	result := BatchResult{
		BatchID: uuid.NewString(),
		Counts:  make(map[string]int, len(Categories)),
	}
	for _, category := range Categories {
		result.Counts[category] = 0
	}
	staged := make(map[string]Record, len(decisions))
	var cancelErr error

loop:
	for _, decision := range decisions {
		// Cancellation stops further processing; files already routed in
		// this batch still reach the index below.
		select {
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break loop
		default:
		}
		if !KnownCategory(decision.Category) {
			result.Errors = append(result.Errors, dataset.ItemError{
				Filename: decision.Filename,
				Reason:   fmt.Sprintf("%v: %q", ErrUnknownCategory, decision.Category),
			})
			continue
		}
		src := filepath.Join(m.sourceDir, decision.Filename)
		if _, err := os.Stat(src); err != nil {
			logger.Warn("subclass: source file missing", "file", decision.Filename, "error", err)
			result.Errors = append(result.Errors, dataset.ItemError{
				Filename: decision.Filename,
				Reason:   "file not found in real partition",
			})
			continue
		}
		dest := filepath.Join(m.targetDir, decision.Category, decision.Filename)
		if err := dataset.MoveFile(src, dest); err != nil {
			logger.Warn("subclass: move failed", "file", decision.Filename, "error", err)
			result.Errors = append(result.Errors, dataset.ItemError{Filename: decision.Filename, Reason: err.Error()})
			continue
		}
		staged[decision.Filename] = Record{
			Category:  decision.Category,
			Timestamp: time.Now().UTC(),
			Source:    sourceName,
		}
		result.Counts[decision.Category]++
		result.Committed = append(result.Committed, CommittedItem{
			Filename: decision.Filename,
			Category: decision.Category,
			Path:     dest,
		})
	}

	if len(staged) > 0 {
		if err := m.index.Update(func(records map[string]Record) error {
			for filename, rec := range staged {
				records[filename] = rec
			}
			return nil
		}); err != nil {
			return result, fmt.Errorf("persist subclassification index: %w", err)
		}
	}
	if cancelErr != nil {
		logger.Warn("subclass: batch interrupted, committed items persisted",
			"batch", result.BatchID,
			"committed", len(result.Committed),
			"error", cancelErr)
		return result, cancelErr
	}
	logger.Info("subclass: batch committed",
		"batch", result.BatchID,
		"processed", len(result.Committed),
		"errors", len(result.Errors))
	return result, nil
}

// Stats counts the image files per category partition plus the pending source
// files, both through the same extension filter.
func (m *Manager) Stats() (map[string]int, error) {
	stats := make(map[string]int, len(Categories)+1)
	for _, category := range Categories {
		files, err := dataset.ScanImages(filepath.Join(m.targetDir, category))
		if err != nil {
			return nil, fmt.Errorf("read category %s: %w", category, err)
		}
		stats[category] = len(files)
	}
	pending, err := m.ScanSource()
	if err != nil {
		return nil, err
	}
	stats["pending"] = len(pending)
	return stats, nil
}

// Remove deletes a pending file from the stage-2 source partition.
func (m *Manager) Remove(filename string) error {
	src := filepath.Join(m.sourceDir, filename)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file %s: %w", filename, os.ErrNotExist)
		}
		return fmt.Errorf("stat %s: %w", filename, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	return nil
}
