package predict

import "github.com/Veraticus/sla-sentinel/internal/artifact"

// FeatureVector is a model input in the classifier's feature order.
type FeatureVector []float64

type minMax struct {
	scale  float64
	offset float64
}

// Scaler applies the fitted min-max transform and reindexes rows into the
// classifier's feature order.
type Scaler struct {
	params map[int]minMax
	order  []string
}

// NewScaler prepares the transform for the columns in fitted, using order as
// the final feature order.
func NewScaler(fitted artifact.Scaler, order []string) *Scaler {
	index := make(map[string]int, len(order))
	for i, name := range order {
		index[name] = i
	}

	lo, hi := fitted.FeatureRange[0], fitted.FeatureRange[1]
	params := make(map[int]minMax, len(fitted.FeatureNames))
	for i, name := range fitted.FeatureNames {
		pos, ok := index[name]
		if !ok {
			continue
		}
		dataRange := fitted.DataMax[i] - fitted.DataMin[i]
		if dataRange == 0 {
			dataRange = 1
		}
		scale := (hi - lo) / dataRange
		params[pos] = minMax{scale: scale, offset: lo - fitted.DataMin[i]*scale}
	}

	return &Scaler{
		params: params,
		order:  append([]string(nil), order...),
	}
}

// Transform fills absent columns with zero, scales the fitted columns and
// returns the row in feature order. Values outside the fitted range are
// extrapolated, not clamped.
func (s *Scaler) Transform(row map[string]float64) FeatureVector {
	vec := make(FeatureVector, len(s.order))
	for i, name := range s.order {
		vec[i] = row[name]
		if p, ok := s.params[i]; ok {
			vec[i] = vec[i]*p.scale + p.offset
		}
	}
	return vec
}

// Len returns the number of features produced.
func (s *Scaler) Len() int {
	return len(s.order)
}
