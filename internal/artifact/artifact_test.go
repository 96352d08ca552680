package artifact_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/sla-sentinel/internal/artifact"
	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/Veraticus/sla-sentinel/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FixtureBundle(t *testing.T) {
	bundle, err := artifact.Load(testutil.WriteFixtureBundle(t))
	require.NoError(t, err)

	assert.Equal(t, testutil.FixtureFeatureNames, bundle.FeatureNames)
	assert.InDelta(t, testutil.FixtureThreshold, bundle.Threshold, 1e-9)
	assert.Len(t, bundle.Model.Trees, 2)
	assert.Equal(t, 1, bundle.ViolationIndex())
	assert.Equal(t, [2]float64{0, 1}, bundle.Scaler.FeatureRange)
	assert.Equal(t, 4, bundle.FeatureIndex()["Days to Due"])

	top := bundle.TopImportances(2)
	require.Len(t, top, 2)
	assert.Equal(t, "Days to Due", top[0].Feature)
	assert.Equal(t, "Priority", top[1].Feature)
	assert.Len(t, bundle.TopImportances(0), 3)
}

func TestLoad_MissingFiles(t *testing.T) {
	fixture := testutil.FixtureBundle()
	fixture.Skip = []string{artifact.ModelFile, artifact.ThresholdFile}
	dir := testutil.WriteBundle(t, fixture)

	_, err := artifact.Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrArtifactMissing))

	var missing *artifact.MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{artifact.ModelFile, artifact.ThresholdFile}, missing.Files)
	assert.Contains(t, err.Error(), "rf_sla_model.json")
	assert.Contains(t, err.Error(), "best_threshold.json")
}

func TestLoad_EmptyDirectoryListsEveryFile(t *testing.T) {
	_, err := artifact.Load(t.TempDir())

	var missing *artifact.MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, artifact.RequiredFiles, missing.Files)
}

func TestLoad_OptionalImportances(t *testing.T) {
	fixture := testutil.FixtureBundle()
	fixture.Importances = nil

	bundle, err := artifact.Load(testutil.WriteBundle(t, fixture))
	require.NoError(t, err)
	assert.Empty(t, bundle.Importances)
	assert.Empty(t, bundle.TopImportances(10))
}

func TestLoad_WrappedThreshold(t *testing.T) {
	fixture := testutil.FixtureBundle()
	fixture.Threshold = map[string]float64{"threshold": 0.37}

	bundle, err := artifact.Load(testutil.WriteBundle(t, fixture))
	require.NoError(t, err)
	assert.InDelta(t, 0.37, bundle.Threshold, 1e-9)
}

func TestLoad_ScalerFallbackColumns(t *testing.T) {
	fixture := testutil.FixtureBundle()
	fixture.Scaler.FeatureNames = nil

	bundle, err := artifact.Load(testutil.WriteBundle(t, fixture))
	require.NoError(t, err)
	assert.Equal(t, artifact.DefaultScaledFeatures, bundle.Scaler.FeatureNames)
}

func TestLoad_Inconsistent(t *testing.T) {
	tests := []struct {
		mutate   func(*testutil.Bundle)
		name     string
		wantFile string
	}{
		{
			name:     "model feature count disagrees",
			mutate:   func(b *testutil.Bundle) { b.Model.NFeatures = 7 },
			wantFile: artifact.ModelFile,
		},
		{
			name:     "feature order has extra column",
			mutate:   func(b *testutil.Bundle) { b.FeatureNames = append(b.FeatureNames, "Open Day") },
			wantFile: artifact.ModelFile,
		},
		{
			name:     "no violation class",
			mutate:   func(b *testutil.Bundle) { b.Model.Classes = []int{0, 2} },
			wantFile: artifact.ModelFile,
		},
		{
			name: "node value width",
			mutate: func(b *testutil.Bundle) {
				b.Model.Trees[1].Value[2] = []float64{1, 2, 3}
			},
			wantFile: artifact.ModelFile,
		},
		{
			name: "split on unknown feature",
			mutate: func(b *testutil.Bundle) {
				b.Model.Trees[1].Feature[0] = 8
			},
			wantFile: artifact.ModelFile,
		},
		{
			name: "child points backwards",
			mutate: func(b *testutil.Bundle) {
				b.Model.Trees[0].ChildrenRight[2] = 0
			},
			wantFile: artifact.ModelFile,
		},
		{
			name: "encoder column not a feature",
			mutate: func(b *testutil.Bundle) {
				b.Encoders["Assignment Group"] = []string{"service desk"}
			},
			wantFile: artifact.EncodersFile,
		},
		{
			name: "duplicate encoder class",
			mutate: func(b *testutil.Bundle) {
				b.Encoders["Item"] = []string{"laptop", "laptop"}
			},
			wantFile: artifact.EncodersFile,
		},
		{
			name: "encoder classes equal after normalizing",
			mutate: func(b *testutil.Bundle) {
				b.Encoders["Item"] = []string{"Laptop", " laptop "}
			},
			wantFile: artifact.EncodersFile,
		},
		{
			name: "scaler column not a feature",
			mutate: func(b *testutil.Bundle) {
				b.Scaler.FeatureNames = []string{"Resolution Duration"}
			},
			wantFile: artifact.ScalerFile,
		},
		{
			name: "scaler arrays misaligned",
			mutate: func(b *testutil.Bundle) {
				b.Scaler.DataMax = []float64{45, 12}
			},
			wantFile: artifact.ScalerFile,
		},
		{
			name:     "threshold out of range",
			mutate:   func(b *testutil.Bundle) { b.Threshold = 1.5 },
			wantFile: artifact.ThresholdFile,
		},
		{
			name:     "threshold wrong type",
			mutate:   func(b *testutil.Bundle) { b.Threshold = "0.4" },
			wantFile: artifact.ThresholdFile,
		},
		{
			name:     "duplicate feature names",
			mutate:   func(b *testutil.Bundle) { b.FeatureNames[1] = "Priority" },
			wantFile: artifact.FeatureNamesFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := testutil.FixtureBundle()
			tt.mutate(&fixture)

			_, err := artifact.Load(testutil.WriteBundle(t, fixture))
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrArtifactInvalid)

			var invalid *artifact.InvalidError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.wantFile, invalid.File)
		})
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	dir := testutil.WriteFixtureBundle(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, artifact.EncodersFile), []byte("{not json"), 0o600))

	_, err := artifact.Load(dir)
	require.Error(t, err)

	var invalid *artifact.InvalidError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, artifact.EncodersFile, invalid.File)
}
