package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DecisionTree is a binary tree stored in pre-order: children always sit
// after their parent in nodes.
type DecisionTree struct {
	nodes []TreeNode
	width int
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
	// Confidence is the share of training samples at the leaf that carry
	// ClassLabel. Zero means unknown and is reported as 1.
	Confidence float64 `json:"confidence,omitempty"`
}

// NewDecisionTree validates nodes against a feature width.
func NewDecisionTree(nodes []TreeNode, width int) (*DecisionTree, error) {
	if err := validateNodes(nodes, width); err != nil {
		return nil, err
	}
	return &DecisionTree{nodes: append([]TreeNode(nil), nodes...), width: width}, nil
}

func (dt *DecisionTree) NumFeatures() int { return dt.width }

func (dt *DecisionTree) Predict(features []float64) (int, float64, error) {
	if len(dt.nodes) == 0 {
		return 0, 0, errors.New("model not loaded")
	}
	if len(features) != dt.width {
		return 0, 0, &WidthError{Got: len(features), Want: dt.width}
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, leafConfidence(node), nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

// Save writes the tree as a model artifact tagged with the given schema.
func (dt *DecisionTree) Save(path string, features []string) error {
	if len(dt.nodes) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.MarshalIndent(artifact{
		ModelType: ModelTypeDecisionTree,
		Features:  features,
		Nodes:     dt.nodes,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

// positive returns the probability of class 1 for features.
func (dt *DecisionTree) positive(features []float64) (float64, error) {
	label, confidence, err := dt.Predict(features)
	if err != nil {
		return 0, err
	}
	if label == 1 {
		return confidence, nil
	}
	return 1 - confidence, nil
}

func leafConfidence(node TreeNode) float64 {
	if node.Confidence <= 0 || node.Confidence > 1 {
		return 1
	}
	return node.Confidence
}

func validateNodes(nodes []TreeNode, width int) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			if node.ClassLabel != 0 && node.ClassLabel != 1 {
				return fmt.Errorf("node %d: leaf label %d is not binary", i, node.ClassLabel)
			}
			if node.Confidence < 0 || node.Confidence > 1 {
				return fmt.Errorf("node %d: confidence %v outside [0, 1]", i, node.Confidence)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= width {
			return fmt.Errorf("node %d: feature index %d out of range [0, %d)", i, node.FeatureIdx, width)
		}
		// children must follow the parent, which also rules out cycles
		if node.LeftChild <= i || node.LeftChild >= len(nodes) {
			return fmt.Errorf("node %d: left child %d out of range", i, node.LeftChild)
		}
		if node.RightChild <= i || node.RightChild >= len(nodes) {
			return fmt.Errorf("node %d: right child %d out of range", i, node.RightChild)
		}
	}
	return nil
}
