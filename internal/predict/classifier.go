package predict

import (
	"fmt"

	"github.com/Veraticus/sla-sentinel/internal/artifact"
	"github.com/Veraticus/sla-sentinel/internal/common"
)

// Classifier yields the probability that a ticket violates its SLA.
type Classifier interface {
	PredictProbability(v FeatureVector) (float64, error)
}

// ForestClassifier evaluates a frozen random forest.
type ForestClassifier struct {
	trees     []artifact.Tree
	nFeatures int
	classIdx  int
}

// NewForestClassifier wraps a validated forest. The violation class is
// located by label because class order is a property of the trained model.
func NewForestClassifier(forest artifact.Forest) *ForestClassifier {
	idx := -1
	for i, class := range forest.Classes {
		if class == artifact.ViolationClass {
			idx = i
			break
		}
	}
	return &ForestClassifier{
		trees:     forest.Trees,
		nFeatures: forest.NFeatures,
		classIdx:  idx,
	}
}

// PredictProbability averages the per-tree leaf class distributions and
// returns the violation share.
func (c *ForestClassifier) PredictProbability(v FeatureVector) (float64, error) {
	if len(v) != c.nFeatures {
		return 0, &ModelInferenceError{Expected: c.nFeatures, Got: len(v)}
	}
	if c.classIdx < 0 || len(c.trees) == 0 {
		return 0, fmt.Errorf("%w: forest has no trees or no violation class", common.ErrModelInference)
	}

	var sum float64
	for i := range c.trees {
		sum += leafShare(&c.trees[i], v, c.classIdx)
	}
	return sum / float64(len(c.trees)), nil
}

func leafShare(tree *artifact.Tree, v FeatureVector, classIdx int) float64 {
	node := 0
	for tree.ChildrenLeft[node] >= 0 {
		if v[tree.Feature[node]] <= tree.Threshold[node] {
			node = tree.ChildrenLeft[node]
		} else {
			node = tree.ChildrenRight[node]
		}
	}

	var total float64
	for _, n := range tree.Value[node] {
		total += n
	}
	if total == 0 {
		return 0
	}
	return tree.Value[node][classIdx] / total
}
