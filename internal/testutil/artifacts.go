// Package testutil provides shared fixtures for sentinel tests: a small but
// complete trained-artifact bundle and isolated SQLite databases.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/sla-sentinel/internal/artifact"
)

// Fixture feature order, mirroring the columns of the processed ticket export.
var FixtureFeatureNames = []string{
	"Priority",
	"Category",
	"Item",
	"Sub Category",
	"Days to Due",
	"Open Month",
	"Application Creation Hour",
	"Is Open Date Off",
}

// FixtureThreshold is the calibrated decision threshold of the fixture bundle.
const FixtureThreshold = 0.4

// Bundle is the serialisable form of an artifact bundle. Threshold is an
// `any` so tests can write either a bare number or a wrapped object.
type Bundle struct {
	Threshold    any
	Encoders     map[string][]string
	FeatureNames []string
	Importances  []artifact.Importance
	Model        artifact.Forest
	Scaler       artifact.Scaler
	// Skip lists artifact files that should not be written.
	Skip []string
}

// FixtureBundle returns a small two-tree forest over the fixture features.
//
// Days to Due is scaled with min -5 and max 45, so a ticket due in d days
// scales to (d+5)/50. The forest then averages:
//
//	tree 0: scaled days <= 0.2 (d <= 5)     -> p(violation) 0.8
//	        else priority code <= 1          -> 0.5
//	        else                             -> 0.1
//	tree 1: open date off <= 0.5            -> 0.4
//	        else                             -> 0.75
func FixtureBundle() Bundle {
	return Bundle{
		FeatureNames: append([]string(nil), FixtureFeatureNames...),
		Encoders: map[string][]string{
			"Priority":     {"1 - critical", "2 - high", "3 - medium", "4 - low"},
			"Category":     {"hardware", "network", "software", "unknown"},
			"Item":         {"laptop", "printer", "vpn"},
			"Sub Category": {"access", "nan", "repair"},
		},
		Scaler: artifact.Scaler{
			FeatureNames: []string{"Days to Due"},
			DataMin:      []float64{-5},
			DataMax:      []float64{45},
			FeatureRange: [2]float64{0, 1},
		},
		Threshold: FixtureThreshold,
		Model: artifact.Forest{
			Type:      "random_forest",
			Classes:   []int{0, 1},
			NFeatures: len(FixtureFeatureNames),
			Trees: []artifact.Tree{
				{
					ChildrenLeft:  []int{1, -1, 3, -1, -1},
					ChildrenRight: []int{2, -1, 4, -1, -1},
					Feature:       []int{4, -2, 0, -2, -2},
					Threshold:     []float64{0.2, -2, 1.5, -2, -2},
					Value:         [][]float64{{16, 14}, {2, 8}, {14, 6}, {5, 5}, {9, 1}},
				},
				{
					ChildrenLeft:  []int{1, -1, -1},
					ChildrenRight: []int{2, -1, -1},
					Feature:       []int{7, -2, -2},
					Threshold:     []float64{0.5, -2, -2},
					Value:         [][]float64{{7, 7}, {6, 4}, {1, 3}},
				},
			},
		},
		Importances: []artifact.Importance{
			{Feature: "Is Open Date Off", Importance: 0.1},
			{Feature: "Days to Due", Importance: 0.6},
			{Feature: "Priority", Importance: 0.3},
		},
	}
}

// WriteBundle writes b into a fresh temporary directory and returns its path.
func WriteBundle(t *testing.T, b Bundle) string {
	t.Helper()

	dir := t.TempDir()
	skip := make(map[string]bool, len(b.Skip))
	for _, name := range b.Skip {
		skip[name] = true
	}

	files := map[string]any{
		artifact.ModelFile:        b.Model,
		artifact.EncodersFile:     b.Encoders,
		artifact.ScalerFile:       b.Scaler,
		artifact.FeatureNamesFile: b.FeatureNames,
		artifact.ThresholdFile:    b.Threshold,
	}
	if b.Importances != nil {
		files[artifact.FeatureImportanceFile] = b.Importances
	}

	for name, value := range files {
		if skip[name] {
			continue
		}
		WriteJSON(t, filepath.Join(dir, name), value)
	}

	return dir
}

// WriteFixtureBundle writes the default fixture bundle.
func WriteFixtureBundle(t *testing.T) string {
	t.Helper()
	return WriteBundle(t, FixtureBundle())
}

// WriteJSON marshals value to path, failing the test on error.
func WriteJSON(t *testing.T, path string, value any) {
	t.Helper()

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal %s: %v", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", filepath.Base(path), err)
	}
}

// LoadFixtureBundle writes and loads the default fixture bundle.
func LoadFixtureBundle(t *testing.T) *artifact.Bundle {
	t.Helper()

	bundle, err := artifact.Load(WriteFixtureBundle(t))
	if err != nil {
		t.Fatalf("failed to load fixture bundle: %v", err)
	}
	return bundle
}
