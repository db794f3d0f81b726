// Package cfr implements the CFR engine (spec.md §4.6): external-sampling
// MCCFR traversal over the abstracted game tree, batch orchestration, and
// checkpointing. Grounded on the teacher's sdk/solver package (Trainer,
// TrainingConfig/AbstractionConfig shape, parallel-tables-via-goroutines
// singleIteration, checkpoint snapshot format), generalized to drive the
// real game/abstraction/store packages instead of the teacher's
// placeholder regret updates.
package cfr

import (
	"errors"
	"fmt"

	"github.com/lox/cfr-holdem-solver/internal/abstraction"
	"github.com/lox/cfr-holdem-solver/internal/cards"
)

// Variant selects which of spec.md §4.6's two training modes a Trainer
// runs: preflop-only (synthetic equity-weighted terminal at the flop) or
// postflop (starts already at a dealt flop).
type Variant uint8

const (
	VariantPreflop Variant = iota
	VariantPostflop
)

func (v Variant) String() string {
	switch v {
	case VariantPreflop:
		return "preflop"
	case VariantPostflop:
		return "postflop"
	default:
		return "unknown"
	}
}

// AbstractionConfig bundles the bucket assignment machinery: the preflop
// partition is fixed (spec.md §4.3's 169-class lossless split), postflop
// buckets come from a per-street centroid table built offline.
type AbstractionConfig struct {
	Flop  abstraction.CentroidTable
	Turn  abstraction.CentroidTable
	River abstraction.CentroidTable

	// EquitySamplesPerFeature is how many Monte-Carlo rollouts are spent
	// building a live feature vector for centroid lookup (spec.md §4.3).
	EquitySamplesPerFeature int
}

func (c AbstractionConfig) Validate() error {
	if c.EquitySamplesPerFeature <= 0 {
		return errors.New("cfr: equity samples per feature must be > 0")
	}
	return nil
}

// centroidFor returns the centroid table for a postflop street.
func (c AbstractionConfig) centroidFor(street cards.Street) abstraction.CentroidTable {
	switch street {
	case cards.Flop:
		return c.Flop
	case cards.Turn:
		return c.Turn
	default: // cards.River
		return c.River
	}
}

// TrainingConfig aggregates the parameters that control one MCCFR run
// (spec.md §4.6's "batches of I iterations", §4.4's blind/stack setup).
type TrainingConfig struct {
	Variant Variant

	Batches            int
	IterationsPerBatch int
	ParallelTraversals int
	Seed               int64

	SmallBlind    int
	BigBlind      int
	StartingStack int

	MaxRaisesPerStreet int // 0 means uncapped; see tree.State.RaiseDepth

	UseCFRPlus         bool // clamp negative regrets (CFR+)
	UseLinearAveraging bool // weight strategy_sum by iteration index

	// EquitySamplesForSyntheticTerminal controls rollout count for the
	// preflop variant's "reaching the flop" synthetic utility.
	EquitySamplesForSyntheticTerminal int

	CheckpointPath  string
	CheckpointEvery int // batches between checkpoint flushes; 0 disables

	// PostflopCommittedPot is the pot already in the middle when the
	// postflop variant starts each hand on a freshly dealt flop (spec.md
	// §4.6: "conditions on a reached flop situation"); ignored when
	// Variant == VariantPreflop.
	PostflopCommittedPot int
}

func (c TrainingConfig) Validate() error {
	if c.Batches <= 0 {
		return errors.New("cfr: batches must be > 0")
	}
	if c.IterationsPerBatch <= 0 {
		return errors.New("cfr: iterations per batch must be > 0")
	}
	if c.ParallelTraversals <= 0 {
		return errors.New("cfr: parallel traversals must be > 0")
	}
	if c.SmallBlind <= 0 || c.BigBlind <= c.SmallBlind {
		return errors.New("cfr: blinds must be positive with big > small")
	}
	if c.StartingStack <= 0 {
		return errors.New("cfr: starting stack must be > 0")
	}
	if c.MaxRaisesPerStreet < 0 {
		return errors.New("cfr: max raises per street cannot be negative")
	}
	if c.EquitySamplesForSyntheticTerminal <= 0 {
		return fmt.Errorf("cfr: equity samples for synthetic terminal must be > 0")
	}
	if c.Variant == VariantPostflop && c.PostflopCommittedPot <= 0 {
		return errors.New("cfr: postflop variant requires a positive committed pot")
	}
	return nil
}

// DefaultTrainingConfig returns parameters suitable for a short local run.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Variant:                           VariantPostflop,
		Batches:                           10,
		IterationsPerBatch:                1000,
		ParallelTraversals:                4,
		Seed:                              1,
		SmallBlind:                        1,
		BigBlind:                          2,
		StartingStack:                     200,
		MaxRaisesPerStreet:                4,
		UseCFRPlus:                        true,
		UseLinearAveraging:                true,
		EquitySamplesForSyntheticTerminal: 200,
		CheckpointEvery:                   1,
		PostflopCommittedPot:              6,
	}
}
