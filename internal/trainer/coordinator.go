// File path: internal/trainer/coordinator.go
package trainer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/classifier"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/common"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/dataset"
)

const maxRunHistory = 20

// Policy is the pluggable retraining schedule: how many epochs per run and
// the minimum gap between completed runs (0 keeps the original
// one-run-per-accepted-batch behavior).
type Policy struct {
	Epochs      int
	MinInterval time.Duration
}

// Run is one retraining attempt, kept in a bounded in-memory history and
// mirrored to the catalog when available.
type Run struct {
	ID          string             `json:"id"`
	Status      string             `json:"status"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
	Metrics     classifier.Metrics `json:"metrics"`
	Error       string             `json:"error,omitempty"`
}

// RunRecorder persists completed runs; the SQLite catalog implements it.
type RunRecorder interface {
	RecordTrainingRun(ctx context.Context, run Run) error
}

// Status is the coordinator snapshot for the API.
type Status struct {
	Running bool  `json:"running"`
	Runs    []Run `json:"runs"`
}

// Coordinator owns the Idle/Running flag. A trigger arriving while a run is
// in flight is dropped, not queued: at most one retraining run exists at any
// time, and a failed run simply waits for the next commit to try again.
type Coordinator struct {
	provider classifier.Provider
	layout   *dataset.Layout
	policy   Policy
	recorder RunRecorder
	timeout  time.Duration

	mu            sync.Mutex
	running       bool
	lastCompleted time.Time
	history       []Run
}

func NewCoordinator(provider classifier.Provider, layout *dataset.Layout, policy Policy, recorder RunRecorder, timeout time.Duration) (*Coordinator, error) {
	if provider == nil || layout == nil {
		return nil, errors.New("coordinator requires provider and layout")
	}
	if policy.Epochs <= 0 {
		policy.Epochs = 1
	}
	return &Coordinator{
		provider: provider,
		layout:   layout,
		policy:   policy,
		recorder: recorder,
		timeout:  timeout,
	}, nil
}

// TriggerAsync requests a retraining run and returns whether one was started.
// The check-and-set is atomic under the coordinator lock, so two commits
// completing concurrently start at most one run.
func (c *Coordinator) TriggerAsync() bool {
	logger := common.Logger()
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		logger.Debug("trainer: trigger dropped, run in flight")
		return false
	}
	if c.policy.MinInterval > 0 && !c.lastCompleted.IsZero() && time.Since(c.lastCompleted) < c.policy.MinInterval {
		c.mu.Unlock()
		logger.Debug("trainer: trigger dropped, inside min interval")
		return false
	}
	run := Run{ID: uuid.NewString(), Status: "running", StartedAt: time.Now().UTC()}
	c.running = true
	c.history = append(c.history, run)
	if len(c.history) > maxRunHistory {
		c.history = c.history[len(c.history)-maxRunHistory:]
	}
	c.mu.Unlock()

	go c.run(run)
	logger.Info("trainer: run started", "run", run.ID)
	return true
}

// Status returns the flag and the recent run history, newest last.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	runs := make([]Run, len(c.history))
	copy(runs, c.history)
	return Status{Running: c.running, Runs: runs}
}

func (c *Coordinator) run(run Run) {
	logger := common.Logger()
	// Detached from the request that triggered it: retraining must never
	// block a commit response.
	ctx := context.Background()
	var cancel context.CancelFunc
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	metrics, err := c.train(ctx)
	completed := time.Now().UTC()
	run.CompletedAt = &completed
	run.Metrics = metrics
	switch {
	case err == nil:
		run.Status = "completed"
		logger.Info("trainer: run completed", "run", run.ID, "accuracy", metrics.Accuracy, "loss", metrics.Loss)
	case errors.Is(err, classifier.ErrTrainingUnsupported):
		run.Status = "skipped"
		run.Error = err.Error()
		logger.Info("trainer: run skipped", "run", run.ID, "provider", c.provider.Name())
	default:
		// A failed run is logged and forgotten; committed classifications
		// stay untouched and the next commit triggers another attempt.
		run.Status = "failed"
		run.Error = err.Error()
		logger.Error("trainer: run failed", "run", run.ID, "error", err)
	}

	c.mu.Lock()
	c.running = false
	c.lastCompleted = completed
	for i := range c.history {
		if c.history[i].ID == run.ID {
			c.history[i] = run
			break
		}
	}
	c.mu.Unlock()

	if c.recorder != nil {
		recordCtx, recordCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer recordCancel()
		if err := c.recorder.RecordTrainingRun(recordCtx, run); err != nil {
			logger.Warn("trainer: record run failed", "run", run.ID, "error", err)
		}
	}
}

func (c *Coordinator) train(ctx context.Context) (classifier.Metrics, error) {
	files, err := c.gatherDataset()
	if err != nil {
		return classifier.Metrics{}, fmt.Errorf("gather dataset: %w", err)
	}
	total := 0
	for _, paths := range files {
		total += len(paths)
	}
	if total == 0 {
		return classifier.Metrics{}, errors.New("no files to train on")
	}
	return c.provider.Train(ctx, files, c.policy.Epochs)
}

// gatherDataset collects the full training set per label: the seed dataset
// plus everything committed so far.
func (c *Coordinator) gatherDataset() (map[string][]string, error) {
	files := map[string][]string{
		dataset.LabelReal: {},
		dataset.LabelIA:   {},
	}
	for label := range files {
		for _, dir := range []string{c.layout.BasePartitions[label], c.layout.Partitions[label]} {
			paths, err := listFiles(dir)
			if err != nil {
				return nil, err
			}
			files[label] = append(files[label], paths...)
		}
	}
	return files, nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}
