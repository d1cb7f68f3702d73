package ml

import "errors"

// RandomForest averages the class-1 probability of its trees. Ties resolve
// to class 0.
type RandomForest struct {
	trees []*DecisionTree
	width int
}

func NewRandomForest(trees [][]TreeNode, width int) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	forest := &RandomForest{trees: make([]*DecisionTree, 0, len(trees)), width: width}
	for _, nodes := range trees {
		tree, err := NewDecisionTree(nodes, width)
		if err != nil {
			return nil, err
		}
		forest.trees = append(forest.trees, tree)
	}
	return forest, nil
}

func (rf *RandomForest) NumFeatures() int { return rf.width }

func (rf *RandomForest) Predict(features []float64) (int, float64, error) {
	if len(rf.trees) == 0 {
		return 0, 0, errors.New("model not loaded")
	}
	if len(features) != rf.width {
		return 0, 0, &WidthError{Got: len(features), Want: rf.width}
	}
	sum := 0.0
	for _, tree := range rf.trees {
		p, err := tree.positive(features)
		if err != nil {
			return 0, 0, err
		}
		sum += p
	}
	p := sum / float64(len(rf.trees))
	if p > 0.5 {
		return 1, p, nil
	}
	return 0, 1 - p, nil
}
