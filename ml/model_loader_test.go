package ml

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeArtifact(t *testing.T, v interface{}) string {
	t.Helper()
	payload, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal artifact: %v", err)
	}
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestLoadModelMissingFile(t *testing.T) {
	_, err := LoadModel(ModelTypeDecisionTree, filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("expected ErrInvalidModel, got %v", err)
	}
}

func TestLoadModelMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadModel(ModelTypeDecisionTree, path); !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("expected ErrInvalidModel, got %v", err)
	}
}

func TestLoadModelSchemaMismatch(t *testing.T) {
	reordered := FeatureNames()
	reordered[ColSexMale], reordered[ColSexFemale] = reordered[ColSexFemale], reordered[ColSexMale]

	cases := map[string][]string{
		"short":     FeatureNames()[:NumFeatures-1],
		"reordered": reordered,
		"missing":   nil,
	}
	for name, features := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeArtifact(t, artifact{ModelType: ModelTypeDecisionTree, Features: features, Nodes: strokeStump()})
			_, err := LoadModel(ModelTypeDecisionTree, path)
			if !errors.Is(err, ErrInvalidModel) {
				t.Fatalf("expected ErrInvalidModel, got %v", err)
			}
		})
	}
}

func TestLoadModelReportsMisplacedColumn(t *testing.T) {
	features := FeatureNames()
	features[ColSexMale], features[ColSexFemale] = features[ColSexFemale], features[ColSexMale]
	path := writeArtifact(t, artifact{ModelType: ModelTypeDecisionTree, Features: features, Nodes: strokeStump()})
	_, err := LoadModel(ModelTypeDecisionTree, path)
	if err == nil || !strings.Contains(err.Error(), "Sex_Male") {
		t.Fatalf("expected error naming Sex_Male, got %v", err)
	}
}

func TestLoadModelTypeMismatch(t *testing.T) {
	path := writeArtifact(t, artifact{ModelType: ModelTypeDecisionTree, Features: FeatureNames(), Nodes: strokeStump()})
	if _, err := LoadModel(ModelTypeRandomForest, path); !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("expected ErrInvalidModel, got %v", err)
	}
}

func TestLoadModelUnsupportedType(t *testing.T) {
	path := writeArtifact(t, artifact{Features: FeatureNames(), Nodes: strokeStump()})
	if _, err := LoadModel("svm", path); !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("expected ErrInvalidModel, got %v", err)
	}
}

func TestLoadModelLegacyArray(t *testing.T) {
	path := writeArtifact(t, strokeStump())
	model, err := LoadModel(ModelTypeDecisionTree, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.NumFeatures() != NumFeatures {
		t.Fatalf("unexpected width %d", model.NumFeatures())
	}

	bad := strokeStump()
	bad[0].FeatureIdx = 42
	path = writeArtifact(t, bad)
	if _, err := LoadModel(ModelTypeDecisionTree, path); !errors.Is(err, ErrInvalidModel) {
		t.Fatalf("expected ErrInvalidModel, got %v", err)
	}
}

func TestLoadModelRandomForest(t *testing.T) {
	path := writeArtifact(t, artifact{
		ModelType: ModelTypeRandomForest,
		Features:  FeatureNames(),
		Trees:     [][]TreeNode{strokeStump(), strokeStump(), strokeStump()},
	})
	model, err := LoadModel(ModelTypeRandomForest, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := healthyInput()
	in.Stroke = true
	v, _ := Encode(in)
	label, confidence, err := model.Predict(v.Slice())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 || math.Abs(confidence-0.7) > 1e-9 {
		t.Fatalf("expected (1, 0.7), got (%d, %v)", label, confidence)
	}
}

func TestShippedModelArtifactLoads(t *testing.T) {
	path := filepath.Join("..", "models", "heart_tree.json")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("artifact not present: %v", err)
	}
	if _, err := LoadModel(ModelTypeDecisionTree, path); err != nil {
		t.Fatalf("shipped artifact does not load: %v", err)
	}
}
