// File path: internal/dataset/layout.go
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Stage-1 labels form a closed set. Anything else is rejected per item by the
// curator, never coerced.
const (
	LabelReal = "real"
	LabelIA   = "ia"
)

// KnownLabel reports whether label belongs to the stage-1 label set.
func KnownLabel(label string) bool {
	return label == LabelReal || label == LabelIA
}

// Layout resolves the fixed directory tree under a base directory. It is
// computed once at startup and immutable afterwards; every referenced
// directory exists before any other component runs.
type Layout struct {
	Base string

	Inbox string

	// Partitions maps a stage-1 label to its classification directory.
	Partitions map[string]string

	// BasePartitions maps a label to its seed dataset directory. The
	// curation engine only reads these; they feed training alongside the
	// committed classifications.
	BasePartitions map[string]string

	// SubSource is the stage-2 staging area (the stage-1 "real" partition)
	// and SubTarget the root of the per-category partitions.
	SubSource string
	SubTarget string

	IndexFile    string
	SubIndexFile string
	AuditFile    string
	CatalogFile  string
}

// NewLayout computes the layout and creates missing directories and state
// files idempotently.
func NewLayout(base string) (*Layout, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		return nil, errors.New("base directory required")
	}
	l := &Layout{
		Base:  trimmed,
		Inbox: filepath.Join(trimmed, "entrada"),
		Partitions: map[string]string{
			LabelReal: filepath.Join(trimmed, "clasificaciones", LabelReal),
			LabelIA:   filepath.Join(trimmed, "clasificaciones", LabelIA),
		},
		BasePartitions: map[string]string{
			LabelReal: filepath.Join(trimmed, "dataset_base", LabelReal),
			LabelIA:   filepath.Join(trimmed, "dataset_base", LabelIA),
		},
		SubTarget:    filepath.Join(trimmed, "subclasificadas", "reales"),
		IndexFile:    filepath.Join(trimmed, "index", "dataset_index.json"),
		SubIndexFile: filepath.Join(trimmed, "index", "subclassification_index.json"),
		AuditFile:    filepath.Join(trimmed, "logs", "historial_correcciones.json"),
		CatalogFile:  filepath.Join(trimmed, "catalog", "catalog.db"),
	}
	l.SubSource = l.Partitions[LabelReal]

	dirs := []string{l.Inbox, l.SubTarget, filepath.Dir(l.CatalogFile)}
	for _, dir := range l.Partitions {
		dirs = append(dirs, dir)
	}
	for _, dir := range l.BasePartitions {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, filepath.Dir(l.IndexFile), filepath.Dir(l.AuditFile))
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if err := ensureJSONFile(l.IndexFile, map[string]Record{}); err != nil {
		return nil, err
	}
	if err := ensureJSONFile(l.SubIndexFile, map[string]any{}); err != nil {
		return nil, err
	}
	if err := ensureJSONFile(l.AuditFile, []AuditEntry{}); err != nil {
		return nil, err
	}
	return l, nil
}

// PartitionDir returns the classification directory for a stage-1 label.
func (l *Layout) PartitionDir(label string) (string, bool) {
	dir, ok := l.Partitions[label]
	return dir, ok
}

func ensureJSONFile(path string, empty any) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	data, err := json.MarshalIndent(empty, "", "  ")
	if err != nil {
		return fmt.Errorf("encode empty state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("initialize %s: %w", path, err)
	}
	return nil
}
