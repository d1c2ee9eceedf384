// File path: internal/trainer/coordinator_test.go
package trainer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/classifier"
	"github.com/SalvucciFacundo/ClasificadorIA/internal/dataset"
)

type fakeProvider struct {
	mu       sync.Mutex
	calls    int
	block    chan struct{}
	trainErr error
	dataset  map[string][]string
}

func (f *fakeProvider) Predict(ctx context.Context, imagePath string) (classifier.Prediction, error) {
	return classifier.Prediction{Label: "real", Confidence: 1}, nil
}

func (f *fakeProvider) Train(ctx context.Context, ds map[string][]string, epochs int) (classifier.Metrics, error) {
	f.mu.Lock()
	f.calls++
	f.dataset = ds
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	if f.trainErr != nil {
		return classifier.Metrics{}, f.trainErr
	}
	return classifier.Metrics{Accuracy: 0.9, Loss: 0.1}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) trainCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newLayout(t *testing.T) *dataset.Layout {
	t.Helper()
	layout, err := dataset.NewLayout(t.TempDir())
	if err != nil {
		t.Fatalf("new layout: %v", err)
	}
	if err := os.WriteFile(filepath.Join(layout.BasePartitions[dataset.LabelReal], "seed.jpg"), []byte("seed"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	return layout
}

func waitIdle(t *testing.T, c *Coordinator) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if !c.Status().Running {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("coordinator did not return to idle")
}

func TestTriggerRunsOnce(t *testing.T) {
	provider := &fakeProvider{}
	coordinator, err := NewCoordinator(provider, newLayout(t), Policy{Epochs: 1}, nil, 0)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	if !coordinator.TriggerAsync() {
		t.Fatal("expected trigger to start a run")
	}
	waitIdle(t, coordinator)
	if provider.trainCalls() != 1 {
		t.Fatalf("expected 1 train call, got %d", provider.trainCalls())
	}
	status := coordinator.Status()
	if len(status.Runs) != 1 || status.Runs[0].Status != "completed" {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.Runs[0].Metrics.Accuracy != 0.9 {
		t.Fatalf("metrics not recorded: %+v", status.Runs[0])
	}
	provider.mu.Lock()
	defer provider.mu.Unlock()
	if len(provider.dataset[dataset.LabelReal]) != 1 {
		t.Fatalf("seed file missing from dataset: %+v", provider.dataset)
	}
}

func TestConcurrentTriggersAreDropped(t *testing.T) {
	provider := &fakeProvider{block: make(chan struct{})}
	coordinator, err := NewCoordinator(provider, newLayout(t), Policy{Epochs: 1}, nil, 0)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	if !coordinator.TriggerAsync() {
		t.Fatal("first trigger should start")
	}
	// Wait for the run to be inside Train before the rival triggers.
	deadline := time.Now().Add(2 * time.Second)
	for provider.trainCalls() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if coordinator.TriggerAsync() {
		t.Fatal("second trigger should be dropped while running")
	}
	if coordinator.TriggerAsync() {
		t.Fatal("third trigger should be dropped while running")
	}
	close(provider.block)
	waitIdle(t, coordinator)
	if provider.trainCalls() != 1 {
		t.Fatalf("expected exactly 1 train call, got %d", provider.trainCalls())
	}
	// Idle again: the next trigger starts a fresh run.
	provider.block = nil
	if !coordinator.TriggerAsync() {
		t.Fatal("trigger after completion should start")
	}
	waitIdle(t, coordinator)
	if provider.trainCalls() != 2 {
		t.Fatalf("expected 2 train calls total, got %d", provider.trainCalls())
	}
}

func TestFailedRunReturnsToIdle(t *testing.T) {
	provider := &fakeProvider{trainErr: errors.New("gpu on fire")}
	coordinator, err := NewCoordinator(provider, newLayout(t), Policy{Epochs: 1}, nil, 0)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	if !coordinator.TriggerAsync() {
		t.Fatal("trigger should start")
	}
	waitIdle(t, coordinator)
	status := coordinator.Status()
	if len(status.Runs) != 1 || status.Runs[0].Status != "failed" {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.Runs[0].Error == "" {
		t.Fatal("failure reason should be recorded")
	}
	if !coordinator.TriggerAsync() {
		t.Fatal("failure must not wedge the coordinator")
	}
	waitIdle(t, coordinator)
}

func TestUnsupportedTrainingIsSkipped(t *testing.T) {
	provider := &fakeProvider{trainErr: classifier.ErrTrainingUnsupported}
	coordinator, err := NewCoordinator(provider, newLayout(t), Policy{Epochs: 1}, nil, 0)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	coordinator.TriggerAsync()
	waitIdle(t, coordinator)
	status := coordinator.Status()
	if len(status.Runs) != 1 || status.Runs[0].Status != "skipped" {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestMinIntervalDropsTrigger(t *testing.T) {
	provider := &fakeProvider{}
	coordinator, err := NewCoordinator(provider, newLayout(t), Policy{Epochs: 1, MinInterval: time.Hour}, nil, 0)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	if !coordinator.TriggerAsync() {
		t.Fatal("first trigger should start")
	}
	waitIdle(t, coordinator)
	if coordinator.TriggerAsync() {
		t.Fatal("trigger inside min interval should be dropped")
	}
	if provider.trainCalls() != 1 {
		t.Fatalf("expected 1 train call, got %d", provider.trainCalls())
	}
}
