package main

import (
	"testing"

	"github.com/Veraticus/sla-sentinel/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactsValidate(t *testing.T) {
	env := setupTestEnv(t)

	out, err := execute(t, artifactsCmd(), "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Artifacts OK")
	assert.Contains(t, out, env.artifactsDir)
	assert.Contains(t, out, "Trees:              2")
	assert.Contains(t, out, "0.4000")
	assert.Contains(t, out, "1 - critical")
	assert.Contains(t, out, "weekends only")
}

func TestArtifactsImportance(t *testing.T) {
	setupTestEnv(t)

	out, err := execute(t, artifactsCmd(), "importance", "-n", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Days to Due")
	assert.Contains(t, out, "Priority")
	assert.NotContains(t, out, "Is Open Date Off")

	bundle := testutil.FixtureBundle()
	bundle.Importances = nil
	viper.Set("artifacts.dir", testutil.WriteBundle(t, bundle))

	out, err = execute(t, artifactsCmd(), "importance")
	require.NoError(t, err)
	assert.Contains(t, out, "no feature importance file")
}
