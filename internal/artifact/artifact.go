// Package artifact loads the trained model bundle: the frozen classifier,
// label encoders, scaler parameters, feature order and decision threshold.
// Every file is schema-checked and cross-checked for consistency before a
// Bundle is returned; a Bundle is never modified afterwards.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/Veraticus/sla-sentinel/internal/model"
)

// Artifact file names inside the bundle directory.
const (
	ModelFile             = "rf_sla_model.json"
	EncodersFile          = "label_encoders.json"
	ScalerFile            = "minmax_scaler.json"
	FeatureNamesFile      = "feature_names.json"
	ThresholdFile         = "best_threshold.json"
	FeatureImportanceFile = "feature_importances.json"
)

// RequiredFiles lists the files a bundle cannot be served without.
var RequiredFiles = []string{ModelFile, EncodersFile, ScalerFile, FeatureNamesFile, ThresholdFile}

// ViolationClass is the class label the classifier uses for "SLA violated".
const ViolationClass = 1

// DefaultScaledFeatures is assumed when the scaler does not record which
// columns it was fitted on.
var DefaultScaledFeatures = []string{"Days to Due"}

// MissingError reports required artifact files that are absent.
type MissingError struct {
	Dir   string
	Files []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing artifact files in %s: %s (retrain the model and copy the exported files)",
		e.Dir, strings.Join(e.Files, ", "))
}

func (e *MissingError) Unwrap() error {
	return common.ErrArtifactMissing
}

// InvalidError reports an artifact file that is malformed or inconsistent
// with the rest of the bundle.
type InvalidError struct {
	File   string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid artifact %s: %s", e.File, e.Reason)
}

func (e *InvalidError) Unwrap() error {
	return common.ErrArtifactInvalid
}

func invalid(file, format string, args ...any) error {
	return &InvalidError{File: file, Reason: fmt.Sprintf(format, args...)}
}

// Tree is one decision tree in flattened node-array form. Node i is a leaf
// when ChildrenLeft[i] < 0; otherwise samples with
// x[Feature[i]] <= Threshold[i] descend to ChildrenLeft[i].
type Tree struct {
	ChildrenLeft  []int       `json:"children_left"`
	ChildrenRight []int       `json:"children_right"`
	Feature       []int       `json:"feature"`
	Threshold     []float64   `json:"threshold"`
	Value         [][]float64 `json:"value"`
}

// Forest is a frozen random-forest classifier.
type Forest struct {
	Type      string `json:"type"`
	Classes   []int  `json:"classes"`
	Trees     []Tree `json:"trees"`
	NFeatures int    `json:"n_features"`
}

// Scaler holds fitted min-max parameters.
type Scaler struct {
	FeatureNames []string   `json:"feature_names"`
	DataMin      []float64  `json:"data_min"`
	DataMax      []float64  `json:"data_max"`
	FeatureRange [2]float64 `json:"feature_range"`
}

// Importance is one entry of the exported feature importances.
type Importance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// Bundle is a validated, immutable set of trained artifacts.
type Bundle struct {
	Encoders     map[string][]string
	Model        Forest
	Dir          string
	FeatureNames []string
	Importances  []Importance
	Scaler       Scaler
	Threshold    float64
}

// Load reads and validates the bundle stored in dir.
func Load(dir string) (*Bundle, error) {
	var missing []string
	for _, name := range RequiredFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				missing = append(missing, name)
				continue
			}
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingError{Dir: dir, Files: missing}
	}

	b := &Bundle{Dir: dir}

	if err := readJSON(dir, FeatureNamesFile, &b.FeatureNames); err != nil {
		return nil, err
	}
	if err := readJSON(dir, ModelFile, &b.Model); err != nil {
		return nil, err
	}
	if err := readJSON(dir, EncodersFile, &b.Encoders); err != nil {
		return nil, err
	}

	b.Scaler.FeatureRange = [2]float64{0, 1}
	if err := readJSON(dir, ScalerFile, &b.Scaler); err != nil {
		return nil, err
	}

	threshold, err := readThreshold(dir)
	if err != nil {
		return nil, err
	}
	b.Threshold = threshold

	importances, err := readImportances(dir)
	if err != nil {
		return nil, err
	}
	b.Importances = importances

	if len(b.Scaler.FeatureNames) == 0 {
		slog.Warn("Scaler does not record its fitted columns, assuming defaults",
			"file", ScalerFile,
			"columns", DefaultScaledFeatures)
		b.Scaler.FeatureNames = append([]string(nil), DefaultScaledFeatures...)
	}

	if err := b.validate(); err != nil {
		return nil, err
	}

	slog.Info("Loaded model artifacts",
		"dir", dir,
		"features", len(b.FeatureNames),
		"trees", len(b.Model.Trees),
		"threshold", b.Threshold)

	return b, nil
}

func readFile(dir, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, name)) //nolint:gosec // bundle dir comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := validateSchema(name, data); err != nil {
		return nil, err
	}
	return data, nil
}

func readJSON(dir, name string, out any) error {
	data, err := readFile(dir, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return invalid(name, "decode: %v", err)
	}
	return nil
}

func readThreshold(dir string) (float64, error) {
	data, err := readFile(dir, ThresholdFile)
	if err != nil {
		return 0, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped struct {
			Threshold float64 `json:"threshold"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return 0, invalid(ThresholdFile, "decode: %v", err)
		}
		return wrapped.Threshold, nil
	}

	var threshold float64
	if err := json.Unmarshal(trimmed, &threshold); err != nil {
		return 0, invalid(ThresholdFile, "decode: %v", err)
	}
	return threshold, nil
}

func readImportances(dir string) ([]Importance, error) {
	if _, err := os.Stat(filepath.Join(dir, FeatureImportanceFile)); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	var importances []Importance
	if err := readJSON(dir, FeatureImportanceFile, &importances); err != nil {
		return nil, err
	}

	sort.SliceStable(importances, func(i, j int) bool {
		return importances[i].Importance > importances[j].Importance
	})
	return importances, nil
}

// validate cross-checks the five artifacts against the feature order.
func (b *Bundle) validate() error {
	index := b.FeatureIndex()

	if b.Model.NFeatures != len(b.FeatureNames) {
		return invalid(ModelFile, "model expects %d features but %s lists %d",
			b.Model.NFeatures, FeatureNamesFile, len(b.FeatureNames))
	}
	if err := b.validateForest(); err != nil {
		return err
	}

	for column, classes := range b.Encoders {
		if _, ok := index[column]; !ok {
			return invalid(EncodersFile, "encoded column %q is not in %s", column, FeatureNamesFile)
		}
		seen := make(map[string]struct{}, len(classes))
		for _, class := range classes {
			key := model.NormalizeCategorical(class)
			if _, dup := seen[key]; dup {
				return invalid(EncodersFile, "column %q lists class %q more than once (case and surrounding spaces ignored)", column, class)
			}
			seen[key] = struct{}{}
		}
	}

	s := b.Scaler
	if len(s.DataMin) != len(s.FeatureNames) || len(s.DataMax) != len(s.FeatureNames) {
		return invalid(ScalerFile, "%d scaled columns but %d minimums and %d maximums",
			len(s.FeatureNames), len(s.DataMin), len(s.DataMax))
	}
	for _, column := range s.FeatureNames {
		if _, ok := index[column]; !ok {
			return invalid(ScalerFile, "scaled column %q is not in %s", column, FeatureNamesFile)
		}
	}
	if s.FeatureRange[0] >= s.FeatureRange[1] {
		return invalid(ScalerFile, "feature_range %v is empty", s.FeatureRange)
	}

	if b.Threshold < 0 || b.Threshold > 1 {
		return invalid(ThresholdFile, "threshold %v outside [0, 1]", b.Threshold)
	}

	return nil
}

func (b *Bundle) validateForest() error {
	m := b.Model
	if b.ViolationIndex() < 0 {
		return invalid(ModelFile, "classes %v do not include the violation class %d", m.Classes, ViolationClass)
	}

	for t, tree := range m.Trees {
		n := len(tree.ChildrenLeft)
		if len(tree.ChildrenRight) != n || len(tree.Feature) != n || len(tree.Threshold) != n || len(tree.Value) != n {
			return invalid(ModelFile, "tree %d has node arrays of unequal length", t)
		}
		for i := 0; i < n; i++ {
			if len(tree.Value[i]) != len(m.Classes) {
				return invalid(ModelFile, "tree %d node %d has %d class values, want %d",
					t, i, len(tree.Value[i]), len(m.Classes))
			}
			left, right := tree.ChildrenLeft[i], tree.ChildrenRight[i]
			if left < 0 {
				continue
			}
			if left >= n || right < 0 || right >= n || left <= i || right <= i {
				return invalid(ModelFile, "tree %d node %d has out-of-range children", t, i)
			}
			if f := tree.Feature[i]; f < 0 || f >= m.NFeatures {
				return invalid(ModelFile, "tree %d node %d splits on feature %d of %d", t, i, f, m.NFeatures)
			}
		}
	}
	return nil
}

// FeatureIndex maps each feature name to its position in the model input.
func (b *Bundle) FeatureIndex() map[string]int {
	index := make(map[string]int, len(b.FeatureNames))
	for i, name := range b.FeatureNames {
		index[name] = i
	}
	return index
}

// ViolationIndex returns the position of the violation class in the model's
// class list, or -1 when it is absent.
func (b *Bundle) ViolationIndex() int {
	for i, class := range b.Model.Classes {
		if class == ViolationClass {
			return i
		}
	}
	return -1
}

// TopImportances returns at most n feature importances, highest first.
func (b *Bundle) TopImportances(n int) []Importance {
	if n <= 0 || n > len(b.Importances) {
		n = len(b.Importances)
	}
	out := make([]Importance, n)
	copy(out, b.Importances[:n])
	return out
}
