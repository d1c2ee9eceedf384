// File path: internal/dataset/curator.go
package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
)

// ErrEmptyBatch rejects a commit with no decisions before any mutation.
var ErrEmptyBatch = errors.New("no decisions provided")

const originClassifications = "clasificaciones"

// Decision is one user-confirmed label for an inbox file.
type Decision struct {
	Filename string `json:"filename"`
	Label    string `json:"label"`
}

// ItemError records a per-item failure. Failures never abort sibling items.
type ItemError struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// CommittedItem describes one successfully relocated and indexed file.
type CommittedItem struct {
	Filename string `json:"filename"`
	Label    string `json:"label"`
	Hash     string `json:"hash"`
	Path     string `json:"path"`
}

// BatchResult summarizes one commit: per-label counts, the items that went
// through, and the ones that did not.
type BatchResult struct {
	BatchID   string          `json:"batch_id"`
	Counts    map[string]int  `json:"counts"`
	Committed []CommittedItem `json:"committed,omitempty"`
	Errors    []ItemError     `json:"errors,omitempty"`
}

// Curator applies batches of decisions: move the file into its partition,
// index it by content hash, append the audit entry. Index and audit are
// persisted once per batch, so persisted state is atomic at the batch
// boundary. A crash after a move but before persistence leaves the file in
// its partition without an entry; the catalog reconciliation surfaces those
// at startup.
type Curator struct {
	layout *Layout
	index  *Index
	audit  *AuditLog
}

func NewCurator(layout *Layout, index *Index, audit *AuditLog) (*Curator, error) {
	if layout == nil || index == nil || audit == nil {
		return nil, errors.New("curator requires layout, index and audit log")
	}
	return &Curator{layout: layout, index: index, audit: audit}, nil
}

// Commit processes decisions in order. Each item is independent: a missing
// file, unknown label or failed move is recorded and the batch continues. A
// cancelled context stops processing remaining items but the items already
// moved are still indexed and logged before Commit returns the context error.
func (c *Curator) Commit(ctx context.Context, decisions []Decision) (BatchResult, error) {
	if len(decisions) == 0 {
		return BatchResult{}, ErrEmptyBatch
	}
	logger := common.Logger()
	result := BatchResult{
		BatchID: uuid.NewString(),
		Counts:  map[string]int{LabelReal: 0, LabelIA: 0},
	}
	staged := make(map[string]Record, len(decisions))
	var entries []AuditEntry
	var cancelErr error

loop:
	for _, decision := range decisions {
		// A cancelled request stops further processing but never skips
		// persistence: files already moved in this batch must reach the
		// index and audit log.
		select {
		case <-ctx.Done():
			cancelErr = ctx.Err()
			break loop
		default:
		}
		if !KnownLabel(decision.Label) {
			result.Errors = append(result.Errors, ItemError{Filename: decision.Filename, Reason: fmt.Sprintf("unknown label %q", decision.Label)})
			continue
		}
		src := filepath.Join(c.layout.Inbox, decision.Filename)
		if _, err := os.Stat(src); err != nil {
			logger.Warn("curator: source file missing", "file", decision.Filename, "error", err)
			result.Errors = append(result.Errors, ItemError{Filename: decision.Filename, Reason: "file not found in inbox"})
			continue
		}
		hash, err := hashFile(src)
		if err != nil {
			logger.Warn("curator: hash failed", "file", decision.Filename, "error", err)
			result.Errors = append(result.Errors, ItemError{Filename: decision.Filename, Reason: err.Error()})
			continue
		}
		dir, _ := c.layout.PartitionDir(decision.Label)
		dest := filepath.Join(dir, decision.Filename)
		// A same-named file at the destination is overwritten: documented
		// last-writer-wins, not a guarded invariant.
		if err := MoveFile(src, dest); err != nil {
			logger.Warn("curator: move failed", "file", decision.Filename, "error", err)
			result.Errors = append(result.Errors, ItemError{Filename: decision.Filename, Reason: err.Error()})
			continue
		}
		now := time.Now().UTC()
		staged[hash] = Record{
			Hash:      hash,
			Path:      dest,
			Label:     decision.Label,
			Origin:    originClassifications,
			Timestamp: now,
		}
		entries = append(entries, AuditEntry{
			Action:      "accept",
			File:        decision.Filename,
			Destination: decision.Label,
			BatchID:     result.BatchID,
			Timestamp:   now,
		})
		result.Counts[decision.Label]++
		result.Committed = append(result.Committed, CommittedItem{
			Filename: decision.Filename,
			Label:    decision.Label,
			Hash:     hash,
			Path:     dest,
		})
	}

	if len(staged) > 0 {
		if err := c.index.Update(func(records map[string]Record) error {
			for hash, rec := range staged {
				records[hash] = rec
			}
			return nil
		}); err != nil {
			return result, fmt.Errorf("persist index: %w", err)
		}
	}
	if len(entries) > 0 {
		if err := c.audit.Append(entries...); err != nil {
			return result, fmt.Errorf("persist audit log: %w", err)
		}
	}
	if cancelErr != nil {
		logger.Warn("curator: batch interrupted, committed items persisted",
			"batch", result.BatchID,
			"committed", len(result.Committed),
			"error", cancelErr)
		return result, cancelErr
	}
	logger.Info("curator: batch committed",
		"batch", result.BatchID,
		"real", result.Counts[LabelReal],
		"ia", result.Counts[LabelIA],
		"errors", len(result.Errors))
	return result, nil
}

// Remove deletes a pending file from the inbox and records the removal.
func (c *Curator) Remove(filename string) error {
	src := filepath.Join(c.layout.Inbox, filename)
	if _, err := os.Stat(src); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file %s: %w", filename, os.ErrNotExist)
		}
		return fmt.Errorf("stat %s: %w", filename, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove %s: %w", filename, err)
	}
	if err := c.audit.Append(AuditEntry{
		Action:    "remove",
		File:      filename,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		common.Logger().Warn("curator: audit remove failed", "file", filename, "error", err)
	}
	return nil
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// MoveFile renames src to dest, falling back to copy-and-remove when the
// rename crosses filesystems. An existing dest is overwritten.
func MoveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("copy to destination: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("flush destination: %w", err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source: %w", err)
	}
	return nil
}
