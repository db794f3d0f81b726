// Package config loads the on-disk HCL descriptor for a training run:
// TrainingConfig plus the paths to the three offline-built centroid tables
// that make up an AbstractionConfig. Grounded on the teacher's
// internal/server/config.go (hclparse.NewParser + gohcl.DecodeBody,
// defaults applied post-decode, missing file falls back to in-code
// defaults), generalized from the teacher's server/table/bot blocks to this
// project's training/abstraction blocks.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/cfr-holdem-solver/internal/abstraction"
	"github.com/lox/cfr-holdem-solver/internal/cfr"
)

// File is the HCL document's top-level shape: one `training` block and one
// `abstraction` block.
type File struct {
	Training    TrainingBlock    `hcl:"training,block"`
	Abstraction AbstractionBlock `hcl:"abstraction,block"`
}

// TrainingBlock mirrors cfr.TrainingConfig field-for-field, with HCL tags in
// the teacher's snake_case style.
type TrainingBlock struct {
	Variant                           string `hcl:"variant,optional"`
	Batches                           int    `hcl:"batches,optional"`
	IterationsPerBatch                int    `hcl:"iterations_per_batch,optional"`
	ParallelTraversals                int    `hcl:"parallel_traversals,optional"`
	Seed                              int64  `hcl:"seed,optional"`
	SmallBlind                        int    `hcl:"small_blind,optional"`
	BigBlind                          int    `hcl:"big_blind,optional"`
	StartingStack                     int    `hcl:"starting_stack,optional"`
	MaxRaisesPerStreet                int    `hcl:"max_raises_per_street,optional"`
	UseCFRPlus                        bool   `hcl:"use_cfr_plus,optional"`
	UseLinearAveraging                bool   `hcl:"use_linear_averaging,optional"`
	EquitySamplesForSyntheticTerminal int    `hcl:"equity_samples_for_synthetic_terminal,optional"`
	CheckpointPath                    string `hcl:"checkpoint_path,optional"`
	CheckpointEvery                   int    `hcl:"checkpoint_every,optional"`
	PostflopCommittedPot              int    `hcl:"postflop_committed_pot,optional"`
}

// AbstractionBlock points at the three offline-built centroid tables
// (abstraction.SaveCentroidTable's output) and the live feature-vector
// rollout count used to bucket a query-time hand.
type AbstractionBlock struct {
	EquitySamplesPerFeature int    `hcl:"equity_samples_per_feature,optional"`
	FlopCentroids           string `hcl:"flop_centroids,optional"`
	TurnCentroids           string `hcl:"turn_centroids,optional"`
	RiverCentroids          string `hcl:"river_centroids,optional"`
}

// Load reads path as HCL and decodes it into a TrainingConfig plus the three
// centroid-table paths it names; centroid tables themselves are loaded
// separately via LoadAbstraction, since a training run may not need them
// yet (the preflop-only variant skips them entirely). A missing file
// returns cfr.DefaultTrainingConfig() and a zero AbstractionBlock, matching
// the teacher's LoadServerConfig "file not found falls back to defaults".
func Load(path string) (cfr.TrainingConfig, AbstractionBlock, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfr.DefaultTrainingConfig(), AbstractionBlock{}, nil
	}

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return cfr.TrainingConfig{}, AbstractionBlock{}, fmt.Errorf("config: parse %s: %s", path, diags.Error())
	}

	var file File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return cfr.TrainingConfig{}, AbstractionBlock{}, fmt.Errorf("config: decode %s: %s", path, diags.Error())
	}

	cfg := applyDefaults(file.Training)
	return cfg, file.Abstraction, nil
}

// applyDefaults overlays the decoded HCL onto cfr.DefaultTrainingConfig's
// values wherever the file left a field at its Go zero value, matching the
// teacher's "apply defaults for missing values" pass in LoadServerConfig.
// The two boolean switches, use_cfr_plus and use_linear_averaging, are the
// exception: they are copied from the file as written, so leaving one out
// turns it off.
func applyDefaults(b TrainingBlock) cfr.TrainingConfig {
	cfg := cfr.DefaultTrainingConfig()

	if v, err := parseVariant(b.Variant); err == nil && b.Variant != "" {
		cfg.Variant = v
	}
	if b.Batches > 0 {
		cfg.Batches = b.Batches
	}
	if b.IterationsPerBatch > 0 {
		cfg.IterationsPerBatch = b.IterationsPerBatch
	}
	if b.ParallelTraversals > 0 {
		cfg.ParallelTraversals = b.ParallelTraversals
	}
	if b.Seed != 0 {
		cfg.Seed = b.Seed
	}
	if b.SmallBlind > 0 {
		cfg.SmallBlind = b.SmallBlind
	}
	if b.BigBlind > 0 {
		cfg.BigBlind = b.BigBlind
	}
	if b.StartingStack > 0 {
		cfg.StartingStack = b.StartingStack
	}
	if b.MaxRaisesPerStreet > 0 {
		cfg.MaxRaisesPerStreet = b.MaxRaisesPerStreet
	}
	cfg.UseCFRPlus = b.UseCFRPlus
	cfg.UseLinearAveraging = b.UseLinearAveraging
	if b.EquitySamplesForSyntheticTerminal > 0 {
		cfg.EquitySamplesForSyntheticTerminal = b.EquitySamplesForSyntheticTerminal
	}
	if b.CheckpointPath != "" {
		cfg.CheckpointPath = b.CheckpointPath
	}
	if b.CheckpointEvery > 0 {
		cfg.CheckpointEvery = b.CheckpointEvery
	}
	if b.PostflopCommittedPot > 0 {
		cfg.PostflopCommittedPot = b.PostflopCommittedPot
	}
	return cfg
}

func parseVariant(s string) (cfr.Variant, error) {
	switch s {
	case "preflop":
		return cfr.VariantPreflop, nil
	case "postflop":
		return cfr.VariantPostflop, nil
	default:
		return 0, fmt.Errorf("config: unknown variant %q", s)
	}
}

// LoadAbstraction resolves an AbstractionBlock's three centroid-table paths
// into a cfr.AbstractionConfig. A blank path leaves that street's
// CentroidTable zero-valued (the preflop-only variant never needs any of
// the three).
func LoadAbstraction(b AbstractionBlock) (cfr.AbstractionConfig, error) {
	cfg := cfr.AbstractionConfig{EquitySamplesPerFeature: b.EquitySamplesPerFeature}
	if cfg.EquitySamplesPerFeature <= 0 {
		cfg.EquitySamplesPerFeature = 200
	}

	var err error
	if b.FlopCentroids != "" {
		if cfg.Flop, err = abstraction.LoadCentroidTable(b.FlopCentroids); err != nil {
			return cfr.AbstractionConfig{}, fmt.Errorf("config: load flop centroids: %w", err)
		}
	}
	if b.TurnCentroids != "" {
		if cfg.Turn, err = abstraction.LoadCentroidTable(b.TurnCentroids); err != nil {
			return cfr.AbstractionConfig{}, fmt.Errorf("config: load turn centroids: %w", err)
		}
	}
	if b.RiverCentroids != "" {
		if cfg.River, err = abstraction.LoadCentroidTable(b.RiverCentroids); err != nil {
			return cfr.AbstractionConfig{}, fmt.Errorf("config: load river centroids: %w", err)
		}
	}
	return cfg, nil
}
