package predict

import (
	"errors"
	"testing"

	"github.com/Veraticus/sla-sentinel/internal/artifact"
	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/Veraticus/sla-sentinel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForestClassifier_FixtureProbabilities(t *testing.T) {
	c := NewForestClassifier(testutil.FixtureBundle().Model)

	tests := []struct {
		name string
		vec  FeatureVector
		want float64
	}{
		{name: "due soon", vec: FeatureVector{2, 0, 0, 0, 0.16, 1, 9, 0}, want: 0.6},
		{name: "due later high priority", vec: FeatureVector{1, 0, 0, 0, 0.5, 1, 9, 0}, want: 0.45},
		{name: "due later low priority", vec: FeatureVector{3, 0, 0, 0, 0.5, 1, 9, 0}, want: 0.25},
		{name: "due later low priority weekend", vec: FeatureVector{3, 0, 0, 0, 0.5, 1, 9, 1}, want: 0.425},
		{name: "split value goes left", vec: FeatureVector{3, 0, 0, 0, 0.2, 1, 9, 0.5}, want: 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.PredictProbability(tt.vec)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, p, 1e-9)
		})
	}
}

func TestForestClassifier_ClassOrder(t *testing.T) {
	forest := artifact.Forest{
		Classes:   []int{1, 0},
		NFeatures: 1,
		Trees: []artifact.Tree{{
			ChildrenLeft:  []int{-1},
			ChildrenRight: []int{-1},
			Feature:       []int{-2},
			Threshold:     []float64{-2},
			Value:         [][]float64{{3, 1}},
		}},
	}

	p, err := NewForestClassifier(forest).PredictProbability(FeatureVector{0})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, p, 1e-9)
}

func TestForestClassifier_EmptyLeaf(t *testing.T) {
	forest := artifact.Forest{
		Classes:   []int{0, 1},
		NFeatures: 1,
		Trees: []artifact.Tree{{
			ChildrenLeft:  []int{-1},
			ChildrenRight: []int{-1},
			Feature:       []int{-2},
			Threshold:     []float64{-2},
			Value:         [][]float64{{0, 0}},
		}},
	}

	p, err := NewForestClassifier(forest).PredictProbability(FeatureVector{4})
	require.NoError(t, err)
	assert.Zero(t, p)
}

func TestForestClassifier_Errors(t *testing.T) {
	c := NewForestClassifier(testutil.FixtureBundle().Model)

	_, err := c.PredictProbability(FeatureVector{1, 2, 3})
	require.Error(t, err)
	var inferenceErr *ModelInferenceError
	require.True(t, errors.As(err, &inferenceErr))
	assert.Equal(t, 8, inferenceErr.Expected)
	assert.Equal(t, 3, inferenceErr.Got)
	assert.ErrorIs(t, err, common.ErrModelInference)
	assert.False(t, common.IsClientError(err))

	noViolation := NewForestClassifier(artifact.Forest{Classes: []int{0}, NFeatures: 1})
	_, err = noViolation.PredictProbability(FeatureVector{0})
	assert.ErrorIs(t, err, common.ErrModelInference)
}
