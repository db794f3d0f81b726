// Command train runs external-sampling MCCFR training and writes a
// strategy artifact (spec.md §6). Grounded on the teacher's
// cmd/solver/main.go (kong subcommand shape, flag-overrides-config
// pattern) with charmbracelet/log in place of zerolog, matching
// cmd/holdem's logging choice.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/cfr-holdem-solver/internal/abstraction"
	"github.com/lox/cfr-holdem-solver/internal/artifact"
	"github.com/lox/cfr-holdem-solver/internal/cfr"
	"github.com/lox/cfr-holdem-solver/internal/config"
)

type cli struct {
	Config string `help:"path to an HCL training/abstraction descriptor" default:"solver.hcl"`
	Out    string `help:"path to write the strategy artifact" required:""`

	Variant    string `help:"training variant (preflop|postflop)" enum:",preflop,postflop" default:""`
	Batches    int    `help:"number of batches (0 keeps the config/default value)" default:"0"`
	Iterations int    `help:"iterations per batch (0 keeps the config/default value)" default:"0"`
	Seed       int64  `help:"random seed (0 keeps the config/default value)" default:"0"`
	LogLevel   string `help:"log level" enum:"debug,info,warn,error" default:"info"`
}

func main() {
	var c cli
	kong.Parse(&c, kong.Name("train"), kong.Description("CFR solver training entry point"), kong.UsageOnError())

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		logger.Fatal("parse log level", "error", err)
	}
	logger.SetLevel(level)

	if err := run(c, logger); err != nil {
		logger.Fatal("training failed", "error", err)
	}
}

func run(c cli, logger *log.Logger) error {
	trainCfg, absBlock, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(&trainCfg, c)

	absCfg, err := config.LoadAbstraction(absBlock)
	if err != nil {
		return fmt.Errorf("load abstraction: %w", err)
	}

	trainer, err := cfr.NewTrainer(absCfg, trainCfg)
	if err != nil {
		return fmt.Errorf("new trainer: %w", err)
	}
	abstractionChecksum := abstraction.Checksum(absCfg.Flop, absCfg.Turn, absCfg.River)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting training run",
		"variant", trainCfg.Variant.String(),
		"batches", trainCfg.Batches,
		"iterations_per_batch", trainCfg.IterationsPerBatch,
		"parallel", trainCfg.ParallelTraversals,
	)

	start := trainer.Now()
	progress := func(p cfr.Progress) {
		logger.Info("progress",
			"batch", p.Batch, "of", p.TotalBatches,
			"iteration", p.Iteration, "infosets", p.InfoSetsStore,
		)
	}
	checkpoint := func(batch int) error {
		if trainCfg.CheckpointPath == "" {
			return nil
		}
		snap := artifact.BuildFromTable(trainer.Table(), artifact.Header{
			TrainedIterations:   trainer.Iteration(),
			Variant:             trainCfg.Variant.String(),
			LinearAveraging:     trainCfg.UseLinearAveraging,
			AbstractionChecksum: abstractionChecksum,
		}, trainer.Now())
		if err := artifact.Save(trainCfg.CheckpointPath, snap); err != nil {
			return fmt.Errorf("checkpoint at batch %d: %w", batch, err)
		}
		logger.Info("checkpoint written", "path", trainCfg.CheckpointPath, "batch", batch)
		return nil
	}

	if err := trainer.Run(ctx, progress, checkpoint); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	final := artifact.BuildFromTable(trainer.Table(), artifact.Header{
		TrainedIterations:   trainer.Iteration(),
		Variant:             trainCfg.Variant.String(),
		LinearAveraging:     trainCfg.UseLinearAveraging,
		AbstractionChecksum: abstractionChecksum,
	}, trainer.Now())
	if err := artifact.Save(c.Out, final); err != nil {
		return fmt.Errorf("save artifact: %w", err)
	}

	logger.Info("training complete",
		"duration", trainer.Now().Sub(start),
		"infosets", len(final.Entries),
		"out", c.Out,
	)
	return nil
}

func applyOverrides(cfg *cfr.TrainingConfig, c cli) {
	switch c.Variant {
	case "preflop":
		cfg.Variant = cfr.VariantPreflop
	case "postflop":
		cfg.Variant = cfr.VariantPostflop
	}
	if c.Batches > 0 {
		cfg.Batches = c.Batches
	}
	if c.Iterations > 0 {
		cfg.IterationsPerBatch = c.Iterations
	}
	if c.Seed != 0 {
		cfg.Seed = c.Seed
	}
}
