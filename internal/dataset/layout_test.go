// File path: internal/dataset/layout_test.go
package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewLayoutCreatesTree(t *testing.T) {
	base := t.TempDir()
	layout, err := NewLayout(base)
	if err != nil {
		t.Fatalf("new layout: %v", err)
	}
	for _, dir := range []string{
		layout.Inbox,
		layout.Partitions[LabelReal],
		layout.Partitions[LabelIA],
		layout.BasePartitions[LabelReal],
		layout.BasePartitions[LabelIA],
		layout.SubTarget,
	} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected directory at %s", dir)
		}
	}
	for _, file := range []string{layout.IndexFile, layout.SubIndexFile, layout.AuditFile} {
		if _, err := os.Stat(file); err != nil {
			t.Fatalf("stat %s: %v", file, err)
		}
	}
	if layout.SubSource != layout.Partitions[LabelReal] {
		t.Fatalf("stage-2 source should be the real partition, got %s", layout.SubSource)
	}
}

func TestNewLayoutIsIdempotent(t *testing.T) {
	base := t.TempDir()
	if _, err := NewLayout(base); err != nil {
		t.Fatalf("first layout: %v", err)
	}
	indexPath := filepath.Join(base, "index", "dataset_index.json")
	if err := os.WriteFile(indexPath, []byte(`{"abc": {"label": "real"}}`), 0o644); err != nil {
		t.Fatalf("seed index: %v", err)
	}
	if _, err := NewLayout(base); err != nil {
		t.Fatalf("second layout: %v", err)
	}
	data, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if string(data) != `{"abc": {"label": "real"}}` {
		t.Fatalf("existing index was rewritten: %s", data)
	}
}

func TestNewLayoutRejectsEmptyBase(t *testing.T) {
	if _, err := NewLayout("  "); err == nil {
		t.Fatal("expected error for empty base directory")
	}
}

func TestKnownLabel(t *testing.T) {
	cases := map[string]bool{
		"real":   true,
		"ia":     true,
		"Real":   false,
		"fake":   false,
		"":       false,
		"otros":  false,
	}
	for label, want := range cases {
		if got := KnownLabel(label); got != want {
			t.Fatalf("KnownLabel(%q) = %v, want %v", label, got, want)
		}
	}
}
