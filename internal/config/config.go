// File path: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ClassifierConfig selects and tunes the external classifier service client.
// An empty ServiceURL falls back to the OpenAI provider when OPENAI_API_KEY is
// set, and to the local stub otherwise.
type ClassifierConfig struct {
	ServiceURL string `toml:"service_url"`

	Timeout       time.Duration `toml:"-"`
	TimeoutString string        `toml:"timeout"`
}

// TrainingConfig is the retraining policy resolved once at startup.
type TrainingConfig struct {
	Epochs int `toml:"epochs"`

	MinInterval       time.Duration `toml:"-"`
	MinIntervalString string        `toml:"min_interval"`

	Timeout       time.Duration `toml:"-"`
	TimeoutString string        `toml:"timeout"`
}

// CatalogConfig controls the SQLite commit catalog. Disabling it leaves the
// engine running on the JSON index and audit files alone.
type CatalogConfig struct {
	Path     string `toml:"path"`
	Disabled bool   `toml:"disabled"`
}

type Config struct {
	Addr    string `toml:"addr"`
	BaseDir string `toml:"base_dir"`

	Classifier ClassifierConfig `toml:"classifier"`
	Training   TrainingConfig   `toml:"training"`
	Catalog    CatalogConfig    `toml:"catalog"`
}

func Default() Config {
	return Config{
		Addr:    ":8000",
		BaseDir: ".",
		Classifier: ClassifierConfig{
			Timeout: 30 * time.Second,
		},
		Training: TrainingConfig{
			Epochs: 1,
		},
	}
}

// Load resolves the configuration once: defaults, then the optional TOML file,
// then CURADOR_* environment overrides. Durations are given as strings
// ("30s", "2m") in both sources.
func Load(path string) (Config, error) {
	cfg := Default()
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		data, err := os.ReadFile(trimmed)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("read config file %q: %w", trimmed, err)
			}
		} else if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", trimmed, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.finalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("CURADOR_ADDR")); v != "" {
		c.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("CURADOR_BASE_DIR")); v != "" {
		c.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("CURADOR_CLASSIFIER_URL")); v != "" {
		c.Classifier.ServiceURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CURADOR_CLASSIFIER_TIMEOUT")); v != "" {
		c.Classifier.TimeoutString = v
	}
	if v := strings.TrimSpace(os.Getenv("CURADOR_TRAIN_EPOCHS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Training.Epochs = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv("CURADOR_TRAIN_MIN_INTERVAL")); v != "" {
		c.Training.MinIntervalString = v
	}
	if v := strings.TrimSpace(os.Getenv("CURADOR_TRAIN_TIMEOUT")); v != "" {
		c.Training.TimeoutString = v
	}
	if v := strings.TrimSpace(os.Getenv("CURADOR_CATALOG_PATH")); v != "" {
		c.Catalog.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("CURADOR_CATALOG_DISABLED")); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Catalog.Disabled = parsed
		}
	}
}

func (c *Config) finalize() error {
	var err error
	if c.Classifier.Timeout, err = resolveDuration(c.Classifier.TimeoutString, c.Classifier.Timeout); err != nil {
		return fmt.Errorf("classifier timeout: %w", err)
	}
	if c.Training.MinInterval, err = resolveDuration(c.Training.MinIntervalString, c.Training.MinInterval); err != nil {
		return fmt.Errorf("training min interval: %w", err)
	}
	if c.Training.Timeout, err = resolveDuration(c.Training.TimeoutString, c.Training.Timeout); err != nil {
		return fmt.Errorf("training timeout: %w", err)
	}
	if c.Training.Epochs <= 0 {
		c.Training.Epochs = 1
	}
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base directory required")
	}
	return nil
}

func resolveDuration(raw string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", trimmed, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("negative duration %q", trimmed)
	}
	return parsed, nil
}
