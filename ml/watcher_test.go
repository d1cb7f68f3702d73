package ml

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func alwaysTree(label int) *DecisionTree {
	tree, _ := NewDecisionTree([]TreeNode{{IsLeaf: true, ClassLabel: label}}, NumFeatures)
	return tree
}

func TestWatchModelReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")
	if err := alwaysTree(0).Save(path, FeatureNames()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	model, err := LoadModel(ModelTypeDecisionTree, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, err := NewPredictor(model, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- WatchModel(ctx, path, ModelTypeDecisionTree, p, zap.NewNop()) }()
	defer func() {
		cancel()
		<-done
	}()

	v, _ := Encode(healthyInput())
	// give the watcher time to register before writing
	time.Sleep(100 * time.Millisecond)

	// a broken artifact must not replace the running model
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * reloadDebounce)
	if pred, err := p.Predict(v); err != nil || pred.Label != NoDisease {
		t.Fatalf("expected previous model to stay in service, got %+v, %v", pred, err)
	}

	if err := alwaysTree(1).Save(path, FeatureNames()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		pred, err := p.Predict(v)
		if err == nil && pred.Label == PotentialDisease {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("model was not reloaded")
}
