// File path: internal/catalog/reconcile.go
package catalog

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/dataset"
)

// Reconcile runs at startup. It backfills index entries missing from the
// catalog and logs partition files that exist on disk without an index entry
// (the footprint of a crash between move and persistence). It surfaces that
// gap: it does not correct it.
func (s *Store) Reconcile(ctx context.Context, index *dataset.Index, layout *dataset.Layout) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	logger := common.Logger()
	records, err := index.Load()
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	known, err := s.KnownHashes(ctx, StageClassification)
	if err != nil {
		return err
	}

	var backfill []CommitItem
	indexedPaths := make(map[string]struct{}, len(records))
	for hash, rec := range records {
		indexedPaths[filepath.Clean(rec.Path)] = struct{}{}
		if _, ok := known[hash]; ok {
			continue
		}
		backfill = append(backfill, CommitItem{
			Filename: filepath.Base(rec.Path),
			Label:    rec.Label,
			Hash:     hash,
			Path:     rec.Path,
		})
	}
	if len(backfill) > 0 {
		if err := s.RecordBatch(ctx, "reconcile", StageClassification, backfill); err != nil {
			return fmt.Errorf("backfill commits: %w", err)
		}
		logger.Info("catalog: backfilled index entries", "count", len(backfill))
	}

	orphans := 0
	for label, dir := range layout.Partitions {
		files, err := dataset.ScanImages(dir)
		if err != nil {
			return err
		}
		for _, name := range files {
			path := filepath.Clean(filepath.Join(dir, name))
			if _, ok := indexedPaths[path]; !ok {
				orphans++
				logger.Warn("catalog: partition file missing from index", "file", name, "label", label)
			}
		}
	}
	if orphans > 0 {
		logger.Warn("catalog: reconciliation found unindexed files", "count", orphans)
	}
	return nil
}
