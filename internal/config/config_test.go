// File path: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8000" {
		t.Fatalf("unexpected addr: %q", cfg.Addr)
	}
	if cfg.BaseDir != "." {
		t.Fatalf("unexpected base dir: %q", cfg.BaseDir)
	}
	if cfg.Classifier.Timeout != 30*time.Second {
		t.Fatalf("unexpected classifier timeout: %v", cfg.Classifier.Timeout)
	}
	if cfg.Training.Epochs != 1 {
		t.Fatalf("unexpected epochs: %d", cfg.Training.Epochs)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8000" {
		t.Fatalf("unexpected addr: %q", cfg.Addr)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
addr = ":9000"
base_dir = "/srv/dataset"

[classifier]
service_url = "http://classifier:5000"
timeout = "45s"

[training]
epochs = 4
min_interval = "10m"
timeout = "1h"

[catalog]
path = "/srv/dataset/catalog.db"
disabled = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.BaseDir != "/srv/dataset" {
		t.Fatalf("top-level values not applied: %+v", cfg)
	}
	if cfg.Classifier.ServiceURL != "http://classifier:5000" || cfg.Classifier.Timeout != 45*time.Second {
		t.Fatalf("classifier values not applied: %+v", cfg.Classifier)
	}
	if cfg.Training.Epochs != 4 || cfg.Training.MinInterval != 10*time.Minute || cfg.Training.Timeout != time.Hour {
		t.Fatalf("training values not applied: %+v", cfg.Training)
	}
	if cfg.Catalog.Path != "/srv/dataset/catalog.db" || !cfg.Catalog.Disabled {
		t.Fatalf("catalog values not applied: %+v", cfg.Catalog)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("addr = \":9000\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CURADOR_ADDR", ":7000")
	t.Setenv("CURADOR_CLASSIFIER_TIMEOUT", "5s")
	t.Setenv("CURADOR_TRAIN_EPOCHS", "7")
	t.Setenv("CURADOR_TRAIN_MIN_INTERVAL", "30s")
	t.Setenv("CURADOR_CATALOG_DISABLED", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("env should win over file: %q", cfg.Addr)
	}
	if cfg.Classifier.Timeout != 5*time.Second {
		t.Fatalf("classifier timeout not overridden: %v", cfg.Classifier.Timeout)
	}
	if cfg.Training.Epochs != 7 || cfg.Training.MinInterval != 30*time.Second {
		t.Fatalf("training values not overridden: %+v", cfg.Training)
	}
	if !cfg.Catalog.Disabled {
		t.Fatal("catalog disable not overridden")
	}
}

func TestInvalidDurationRejected(t *testing.T) {
	t.Setenv("CURADOR_TRAIN_TIMEOUT", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for an unparseable duration")
	}
}

func TestNegativeDurationRejected(t *testing.T) {
	t.Setenv("CURADOR_CLASSIFIER_TIMEOUT", "-5s")
	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for a negative duration")
	}
}

func TestBadEpochsIgnored(t *testing.T) {
	t.Setenv("CURADOR_TRAIN_EPOCHS", "zero")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Training.Epochs != 1 {
		t.Fatalf("unparseable epochs should keep the default: %d", cfg.Training.Epochs)
	}
}
