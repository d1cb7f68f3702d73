package ml

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

const (
	ModelTypeDecisionTree = "decision_tree"
	ModelTypeRandomForest = "random_forest"
)

// artifact is the on-disk model envelope. Features pins the column order
// the model was trained on.
type artifact struct {
	ModelType string       `json:"model_type"`
	Features  []string     `json:"features"`
	Nodes     []TreeNode   `json:"nodes,omitempty"`
	Trees     [][]TreeNode `json:"trees,omitempty"`
}

// LoadModel reads and validates a model artifact. Any failure wraps
// ErrInvalidModel; callers treat it as fatal at startup.
func LoadModel(modelType, path string) (Classifier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
	}
	model, err := ParseModel(modelType, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}

// ParseModel decodes an artifact. A bare JSON array is read as the legacy
// decision tree format, which carries no schema and is only checked for
// feature index range.
func ParseModel(modelType string, payload []byte) (Classifier, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty artifact", ErrInvalidModel)
	}

	var art artifact
	if payload[0] == '[' {
		if err := json.Unmarshal(payload, &art.Nodes); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
		}
		art.ModelType = ModelTypeDecisionTree
	} else {
		if err := json.Unmarshal(payload, &art); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
		}
		if err := checkSchema(art.Features); err != nil {
			return nil, err
		}
	}
	if art.ModelType != "" && art.ModelType != modelType {
		return nil, fmt.Errorf("%w: artifact is %q, configured type is %q", ErrInvalidModel, art.ModelType, modelType)
	}

	switch modelType {
	case ModelTypeDecisionTree:
		tree, err := NewDecisionTree(art.Nodes, NumFeatures)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
		}
		return tree, nil
	case ModelTypeRandomForest:
		forest, err := NewRandomForest(art.Trees, NumFeatures)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidModel, err)
		}
		return forest, nil
	default:
		return nil, fmt.Errorf("%w: unsupported model type %q", ErrInvalidModel, modelType)
	}
}

func checkSchema(features []string) error {
	if len(features) != NumFeatures {
		return fmt.Errorf("%w: artifact has %d features, encoder produces %d", ErrInvalidModel, len(features), NumFeatures)
	}
	for i, name := range features {
		if name != featureNames[i] {
			return fmt.Errorf("%w: feature %d is %q, encoder produces %q", ErrInvalidModel, i, name, featureNames[i])
		}
	}
	return nil
}
