// File path: internal/dataset/index_test.go
package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIndexLoadMissingFile(t *testing.T) {
	index, err := NewIndex(filepath.Join(t.TempDir(), "dataset_index.json"))
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	records, err := index.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty mapping, got %d records", len(records))
	}
}

func TestIndexLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset_index.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write empty file: %v", err)
	}
	index, err := NewIndex(path)
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	records, err := index.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty mapping, got %d records", len(records))
	}
}

func TestIndexUpdatePersists(t *testing.T) {
	index, err := NewIndex(filepath.Join(t.TempDir(), "dataset_index.json"))
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	rec := Record{Hash: "h1", Path: "/data/real/a.jpg", Label: LabelReal, Origin: "clasificaciones", Timestamp: time.Now().UTC()}
	if err := index.Update(func(records map[string]Record) error {
		records[rec.Hash] = rec
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok, err := index.Get("h1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected record for h1")
	}
	if got.Label != LabelReal || got.Path != rec.Path {
		t.Fatalf("unexpected record: %+v", got)
	}
	if _, ok, _ := index.Get("absent"); ok {
		t.Fatal("expected no record for absent hash")
	}
}

func TestIndexUpdateUpsertsSameKey(t *testing.T) {
	index, err := NewIndex(filepath.Join(t.TempDir(), "dataset_index.json"))
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	for _, label := range []string{LabelReal, LabelIA} {
		label := label
		if err := index.Update(func(records map[string]Record) error {
			records["same-hash"] = Record{Hash: "same-hash", Label: label}
			return nil
		}); err != nil {
			t.Fatalf("update %s: %v", label, err)
		}
	}
	records, err := index.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected a single entry, got %d", len(records))
	}
	if records["same-hash"].Label != LabelIA {
		t.Fatalf("expected last writer to win, got %+v", records["same-hash"])
	}
}
