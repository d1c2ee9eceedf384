// File path: internal/catalog/store_test.go
package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/dataset"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/trainer"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("   "); err == nil {
		t.Fatal("expected an error for an empty path")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen with existing schema: %v", err)
	}
	second.Close()
}

func TestRecordBatchAndQueries(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	items := []CommitItem{
		{Filename: "a.jpg", Label: "real", Hash: "hash-a", Path: "/data/real/a.jpg"},
		{Filename: "b.jpg", Label: "ia", Hash: "hash-b", Path: "/data/ia/b.jpg"},
		{Filename: "c.jpg", Label: "real", Hash: "hash-c", Path: "/data/real/c.jpg"},
	}
	if err := store.RecordBatch(ctx, "batch-1", StageClassification, items); err != nil {
		t.Fatalf("record batch: %v", err)
	}
	if err := store.RecordBatch(ctx, "batch-2", StageClassification, nil); err != nil {
		t.Fatalf("empty batch should be a no-op: %v", err)
	}

	counts, err := store.LabelCounts(ctx, StageClassification)
	if err != nil {
		t.Fatalf("label counts: %v", err)
	}
	if counts["real"] != 2 || counts["ia"] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}

	recent, err := store.RecentCommits(ctx, 2)
	if err != nil {
		t.Fatalf("recent commits: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("limit not applied: %d rows", len(recent))
	}
	if recent[0].Filename != "c.jpg" {
		t.Fatalf("expected newest row first, got %+v", recent[0])
	}
	if recent[0].BatchID != "batch-1" || recent[0].Stage != StageClassification {
		t.Fatalf("row fields not stored: %+v", recent[0])
	}

	known, err := store.KnownHashes(ctx, StageClassification)
	if err != nil {
		t.Fatalf("known hashes: %v", err)
	}
	if len(known) != 3 {
		t.Fatalf("expected 3 hashes, got %d", len(known))
	}
	if _, ok := known["hash-b"]; !ok {
		t.Fatal("hash-b missing from known set")
	}
}

func TestStagesAreSeparate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	if err := store.RecordBatch(ctx, "batch-1", StageClassification, []CommitItem{
		{Filename: "a.jpg", Label: "real", Hash: "hash-a", Path: "/data/real/a.jpg"},
	}); err != nil {
		t.Fatalf("record classification: %v", err)
	}
	if err := store.RecordBatch(ctx, "batch-2", StageSubclassification, []CommitItem{
		{Filename: "a.jpg", Label: "rubias", Path: "/data/sub/rubias/a.jpg"},
	}); err != nil {
		t.Fatalf("record subclassification: %v", err)
	}
	counts, err := store.LabelCounts(ctx, StageSubclassification)
	if err != nil {
		t.Fatalf("label counts: %v", err)
	}
	if len(counts) != 1 || counts["rubias"] != 1 {
		t.Fatalf("stages leaked into each other: %+v", counts)
	}
}

func TestRecordTrainingRunUpsert(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	started := time.Now().UTC()
	run := trainer.Run{ID: "run-1", Status: "running", StartedAt: started}
	if err := store.RecordTrainingRun(ctx, run); err != nil {
		t.Fatalf("record running: %v", err)
	}
	completed := started.Add(time.Minute)
	run.Status = "completed"
	run.CompletedAt = &completed
	run.Metrics.Accuracy = 0.88
	run.Metrics.Loss = 0.3
	if err := store.RecordTrainingRun(ctx, run); err != nil {
		t.Fatalf("record completed: %v", err)
	}

	var rows []struct {
		Status   string  `db:"status"`
		Accuracy float64 `db:"accuracy"`
	}
	if err := store.db.SelectContext(ctx, &rows,
		`SELECT status, accuracy FROM training_runs WHERE run_id = ?`, "run-1"); err != nil {
		t.Fatalf("query run: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("upsert should keep a single row, got %d", len(rows))
	}
	if rows[0].Status != "completed" || rows[0].Accuracy != 0.88 {
		t.Fatalf("row not updated: %+v", rows[0])
	}
}

func TestNilStoreIsRejected(t *testing.T) {
	var store *Store
	if err := store.RecordBatch(context.Background(), "b", StageClassification, nil); err == nil {
		t.Fatal("expected an error from a nil store")
	}
	if _, err := store.LabelCounts(context.Background(), StageClassification); err == nil {
		t.Fatal("expected an error from a nil store")
	}
}

func TestReconcileBackfillsIndexEntries(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	layout, err := dataset.NewLayout(t.TempDir())
	if err != nil {
		t.Fatalf("new layout: %v", err)
	}
	index, err := dataset.NewIndex(layout.IndexFile)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	realPath := filepath.Join(layout.Partitions[dataset.LabelReal], "a.jpg")
	if err := index.Update(func(records map[string]dataset.Record) error {
		records["hash-a"] = dataset.Record{
			Hash:      "hash-a",
			Path:      realPath,
			Label:     dataset.LabelReal,
			Origin:    "clasificaciones",
			Timestamp: time.Now().UTC(),
		}
		return nil
	}); err != nil {
		t.Fatalf("seed index: %v", err)
	}
	// A partition file nobody indexed: the reconciliation must tolerate it.
	if err := os.WriteFile(filepath.Join(layout.Partitions[dataset.LabelIA], "orphan.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write orphan: %v", err)
	}

	if err := store.Reconcile(ctx, index, layout); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	known, err := store.KnownHashes(ctx, StageClassification)
	if err != nil {
		t.Fatalf("known hashes: %v", err)
	}
	if _, ok := known["hash-a"]; !ok {
		t.Fatal("index entry not backfilled into catalog")
	}

	// Second run finds nothing new to backfill.
	if err := store.Reconcile(ctx, index, layout); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	counts, err := store.LabelCounts(ctx, StageClassification)
	if err != nil {
		t.Fatalf("label counts: %v", err)
	}
	if counts[dataset.LabelReal] != 1 {
		t.Fatalf("backfill duplicated rows: %+v", counts)
	}
}
