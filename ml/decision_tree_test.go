package ml

import (
	"errors"
	"path/filepath"
	"testing"
)

// strokeStump predicts PotentialDisease exactly when Stroke is set.
func strokeStump() []TreeNode {
	return []TreeNode{
		{FeatureIdx: ColStroke, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 0, IsLeaf: true, Confidence: 0.9},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 1, IsLeaf: true, Confidence: 0.7},
	}
}

func TestDecisionTreePredict(t *testing.T) {
	model, err := NewDecisionTree(strokeStump(), NumFeatures)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, _ := Encode(healthyInput())
	label, confidence, err := model.Predict(v.Slice())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 || confidence != 0.9 {
		t.Fatalf("expected (0, 0.9), got (%d, %v)", label, confidence)
	}

	in := healthyInput()
	in.Stroke = true
	v, _ = Encode(in)
	label, confidence, err = model.Predict(v.Slice())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 || confidence != 0.7 {
		t.Fatalf("expected (1, 0.7), got (%d, %v)", label, confidence)
	}
}

func TestDecisionTreeRejectsWrongWidth(t *testing.T) {
	model, err := NewDecisionTree(strokeStump(), NumFeatures)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _, err = model.Predict([]float64{1, 2, 3})
	var we *WidthError
	if !errors.As(err, &we) {
		t.Fatalf("expected WidthError, got %v", err)
	}
	if we.Got != 3 || we.Want != NumFeatures {
		t.Fatalf("unexpected width error: %+v", we)
	}
}

func TestDecisionTreeLeafConfidenceDefaults(t *testing.T) {
	model, err := NewDecisionTree([]TreeNode{{IsLeaf: true, ClassLabel: 1}}, NumFeatures)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, confidence, err := model.Predict(make([]float64, NumFeatures))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if confidence != 1 {
		t.Fatalf("expected confidence 1, got %v", confidence)
	}
}

func TestNewDecisionTreeValidation(t *testing.T) {
	cases := map[string][]TreeNode{
		"empty":            nil,
		"non-binary label": {{IsLeaf: true, ClassLabel: 2}},
		"bad confidence":   {{IsLeaf: true, ClassLabel: 0, Confidence: 1.5}},
		"feature range":    {{FeatureIdx: NumFeatures, LeftChild: 1, RightChild: 2}, {IsLeaf: true}, {IsLeaf: true}},
		"child range":      {{FeatureIdx: 0, LeftChild: 1, RightChild: 5}, {IsLeaf: true}},
		"cycle":            {{FeatureIdx: 0, LeftChild: 1, RightChild: 2}, {FeatureIdx: 0, LeftChild: 0, RightChild: 2}, {IsLeaf: true}},
	}
	for name, nodes := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewDecisionTree(nodes, NumFeatures); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestDecisionTreeSaveLoad(t *testing.T) {
	model, err := NewDecisionTree(strokeStump(), NumFeatures)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "tree.json")
	if err := model.Save(path, FeatureNames()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := LoadModel(ModelTypeDecisionTree, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := healthyInput()
	in.Stroke = true
	v, _ := Encode(in)
	label, _, err := loaded.Predict(v.Slice())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
}

func TestRandomForestAveragesTrees(t *testing.T) {
	always := func(label int, confidence float64) []TreeNode {
		return []TreeNode{{IsLeaf: true, ClassLabel: label, Confidence: confidence}}
	}
	forest, err := NewRandomForest([][]TreeNode{
		always(1, 0.75),
		always(0, 0.75),
	}, NumFeatures)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// positive probabilities 0.75 and 0.25 average to 0.5: tie goes to class 0
	label, confidence, err := forest.Predict(make([]float64, NumFeatures))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0 on tie, got %d", label)
	}
	if confidence != 0.5 {
		t.Fatalf("expected confidence 0.5, got %v", confidence)
	}

	forest, err = NewRandomForest([][]TreeNode{always(1, 0.9), always(1, 0.7), always(0, 0.6)}, NumFeatures)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, _, err = forest.Predict(make([]float64, NumFeatures))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %d", label)
	}
}

func TestNewRandomForestRejectsEmpty(t *testing.T) {
	if _, err := NewRandomForest(nil, NumFeatures); err == nil {
		t.Fatal("expected error")
	}
}
