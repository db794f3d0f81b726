// Command query answers one recommend request against a trained strategy
// artifact (spec.md §6); equity and compare are not exposed on the command
// line. Grounded on the teacher's
// cmd/solver/main.go EvalCmd (load-artifact-then-dispatch shape) with
// charmbracelet/log, matching cmd/train's logging choice.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/cfr-holdem-solver/internal/artifact"
	"github.com/lox/cfr-holdem-solver/internal/cards"
	"github.com/lox/cfr-holdem-solver/internal/config"
	"github.com/lox/cfr-holdem-solver/internal/query"
	"github.com/lox/cfr-holdem-solver/internal/solvererr"
)

type cli struct {
	Artifact string `help:"path to a trained strategy artifact" required:""`
	Config   string `help:"path to the HCL abstraction descriptor used to train the artifact" default:"solver.hcl"`

	Hole          string `help:"hero hole cards, e.g. AhAd" required:""`
	Board         string `help:"board cards dealt so far, e.g. 2h7c9d" default:""`
	History       string `help:"canonical betting-history string for the current path" default:""`
	Pot           int    `help:"chips already in the pot" default:"0"`
	ToCall        int    `help:"chips hero must add to match" default:"0"`
	HeroStack     int    `help:"hero's remaining stack" required:""`
	VillainStack  int    `help:"villain's remaining stack" required:""`
	BigBlind      int    `help:"big blind size the artifact was trained under" default:"2"`
	EquitySamples int    `help:"Monte-Carlo rollouts for equity/fallback" default:"2000"`
	Seed          int64  `help:"seed for the query service's deterministic RNG" default:"1"`
	CacheSize     int    `help:"LRU cache entries for repeated lookups (0 disables)" default:"256"`
	LogLevel      string `help:"log level" enum:"debug,info,warn,error" default:"info"`
}

func main() {
	var c cli
	kong.Parse(&c, kong.Name("query"), kong.Description("CFR solver query entry point"), kong.UsageOnError())

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		logger.Fatal("parse log level", "error", err)
	}
	logger.SetLevel(level)

	if err := run(c, logger); err != nil {
		logger.Fatal("query failed", "error", err)
	}
}

func run(c cli, logger *log.Logger) error {
	art, err := artifact.Load(c.Artifact)
	if err != nil {
		logger.Warn("artifact load failed, falling back to an empty strategy", "error", err)
		art = artifact.Artifact{Entries: map[string]artifact.Entry{}}
	}

	_, absBlock, err := config.Load(c.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	absCfg, err := config.LoadAbstraction(absBlock)
	if err != nil {
		return fmt.Errorf("load abstraction: %w", err)
	}

	svc, err := query.NewService(art, query.Abstraction{
		Flop:                    absCfg.Flop,
		Turn:                    absCfg.Turn,
		River:                   absCfg.River,
		EquitySamplesPerFeature: absCfg.EquitySamplesPerFeature,
	}, c.BigBlind, c.EquitySamples, c.Seed, c.CacheSize)
	var artifactErr *solvererr.ArtifactError
	if errors.As(err, &artifactErr) {
		logger.Warn("abstraction checksum mismatch against trained artifact", "error", err)
	} else if err != nil {
		return fmt.Errorf("new query service: %w", err)
	}

	hole, err := cards.ParseCards(c.Hole)
	if err != nil {
		return fmt.Errorf("parse hole cards: %w", err)
	}
	board, err := cards.ParseCards(c.Board)
	if err != nil {
		return fmt.Errorf("parse board cards: %w", err)
	}

	rec, err := svc.Recommend(query.State{
		Hole:         hole,
		Board:        board,
		History:      c.History,
		Pot:          c.Pot,
		ToCall:       c.ToCall,
		HeroStack:    c.HeroStack,
		VillainStack: c.VillainStack,
	})
	var abstractionMiss *solvererr.AbstractionMiss
	if errors.As(err, &abstractionMiss) {
		logger.Warn("abstraction miss, using equity-threshold fallback", "error", err)
	} else if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	logger.Info("recommendation",
		"action", rec.Action, "amount", rec.Amount, "equity", rec.Equity,
		"distribution", rec.Distribution,
	)
	return nil
}
