package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cfr-holdem-solver/internal/cfr"
	"github.com/lox/cfr-holdem-solver/internal/config"
)

func writeHCL(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solver.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Parallel()
	cfg, abs, err := config.Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, cfr.DefaultTrainingConfig(), cfg)
	assert.Equal(t, config.AbstractionBlock{}, abs)
}

func TestLoadOverridesOnlyFieldsPresent(t *testing.T) {
	t.Parallel()
	path := writeHCL(t, `
training {
  variant  = "preflop"
  batches  = 50
  seed     = 7
}

abstraction {
  equity_samples_per_feature = 300
}
`)
	cfg, abs, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfr.VariantPreflop, cfg.Variant)
	assert.Equal(t, 50, cfg.Batches)
	assert.Equal(t, int64(7), cfg.Seed)
	// Untouched numeric fields keep DefaultTrainingConfig's values.
	def := cfr.DefaultTrainingConfig()
	assert.Equal(t, def.IterationsPerBatch, cfg.IterationsPerBatch)
	assert.Equal(t, def.BigBlind, cfg.BigBlind)
	assert.Equal(t, 300, abs.EquitySamplesPerFeature)
}

func TestLoadIgnoresUnknownVariant(t *testing.T) {
	t.Parallel()
	path := writeHCL(t, `
training {
  variant = "omaha"
}

abstraction {}
`)
	cfg, _, err := config.Load(path)
	require.NoError(t, err) // unknown variant is ignored, default kept
	assert.Equal(t, cfr.DefaultTrainingConfig().Variant, cfg.Variant)
}

func TestLoadAbstractionBlankPathsLeaveTablesEmpty(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadAbstraction(config.AbstractionBlock{EquitySamplesPerFeature: 50})
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.EquitySamplesPerFeature)
	assert.Nil(t, cfg.Flop.Centroids)
}

func TestLoadAbstractionDefaultsEquitySamples(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadAbstraction(config.AbstractionBlock{})
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.EquitySamplesPerFeature)
}
