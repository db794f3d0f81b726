package cfr

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/cfr-holdem-solver/internal/cards"
	"github.com/lox/cfr-holdem-solver/internal/store"
	"github.com/lox/cfr-holdem-solver/internal/tree"
)

// Progress is emitted at batch boundaries so a caller (CLI, test) can
// report advancement without polling the trainer's internals.
type Progress struct {
	Batch         int
	TotalBatches  int
	Iteration     int
	InfoSetsStore int
}

// Trainer orchestrates MCCFR batches over a shared information-set store
// (spec.md §4.6). Grounded on the teacher's sdk/solver.Trainer: the
// parallel-workers-per-iteration shape and deterministic pre-derived
// per-worker seeds survive; the traversal itself is real, not a
// placeholder.
type Trainer struct {
	cfg     TrainingConfig
	absCfg  AbstractionConfig
	table   *store.Table
	rng     *rand.Rand
	iterNum atomic.Int64
	clock   quartz.Clock
}

// NewTrainer validates configuration and returns a Trainer backed by a
// fresh information-set store.
func NewTrainer(absCfg AbstractionConfig, cfg TrainingConfig) (*Trainer, error) {
	if err := absCfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = 1
	}
	return &Trainer{
		cfg:    cfg,
		absCfg: absCfg,
		table:  store.New(),
		rng:    rand.New(rand.NewSource(seed)),
		clock:  quartz.NewReal(),
	}, nil
}

// Table exposes the underlying information-set store, e.g. for artifact
// persistence after training completes.
func (t *Trainer) Table() *store.Table { return t.table }

// Iteration returns the number of completed MCCFR iterations so far.
func (t *Trainer) Iteration() int { return int(t.iterNum.Load()) }

// SetClock overrides the trainer's clock, letting tests substitute
// quartz.NewMock for deterministic checkpoint and artifact timestamps
// instead of the wall clock. Checkpoint frequency is a batch count
// (CheckpointEvery) and does not depend on the clock.
func (t *Trainer) SetClock(c quartz.Clock) { t.clock = c }

// Now returns the trainer's current time, for stamping checkpoints and the
// final artifact (spec.md §6's header Timestamp).
func (t *Trainer) Now() time.Time { return t.clock.Now() }

// Run executes the configured number of batches, flushing checkpoints at
// batch boundaries when CheckpointEvery > 0 (spec.md §4.6's "Batching...
// between batches the strategy is flushed to the artifact").
func (t *Trainer) Run(ctx context.Context, progress func(Progress), checkpoint func(batch int) error) error {
	for batch := 1; batch <= t.cfg.Batches; batch++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := t.runBatch(ctx); err != nil {
			return err
		}
		if progress != nil {
			progress(Progress{
				Batch:         batch,
				TotalBatches:  t.cfg.Batches,
				Iteration:     t.Iteration(),
				InfoSetsStore: t.table.Size(),
			})
		}
		if checkpoint != nil && t.cfg.CheckpointEvery > 0 && batch%t.cfg.CheckpointEvery == 0 {
			if err := checkpoint(batch); err != nil {
				return err
			}
		}
	}
	return nil
}

// runBatch splits IterationsPerBatch iterations across ParallelTraversals
// workers. Each worker's RNG stream is derived from the trainer's master
// RNG before any goroutine starts, so the batch's outcome is deterministic
// for a fixed seed regardless of goroutine scheduling (the same discipline
// internal/equity uses for its worker pool).
func (t *Trainer) runBatch(ctx context.Context) error {
	workers := t.cfg.ParallelTraversals
	if workers > t.cfg.IterationsPerBatch {
		workers = t.cfg.IterationsPerBatch
	}
	if workers < 1 {
		workers = 1
	}

	perWorker := t.cfg.IterationsPerBatch / workers
	remainder := t.cfg.IterationsPerBatch % workers

	seeds := make([]int64, workers)
	for i := range seeds {
		seeds[i] = t.rng.Int63()
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		count := perWorker
		if w < remainder {
			count++
		}
		seed := seeds[w]
		g.Go(func() error {
			workerRNG := rand.New(rand.NewSource(seed))
			for i := 0; i < count; i++ {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if err := t.runIteration(workerRNG); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// runIteration deals one chance outcome and traverses it twice, once per
// hero seat (spec.md §4.6: "Traverse twice — once with hero = player 0...
// once with hero = player 1"). The iteration index used for linear
// averaging is drawn from a shared atomic counter so concurrent workers
// within a batch still get distinct, monotonically increasing weights.
func (t *Trainer) runIteration(rng *rand.Rand) error {
	hand := t.dealHand(rng)
	iter := int(t.iterNum.Add(1))
	opts := store.UpdateOptions{
		ClampNegativeRegrets: t.cfg.UseCFRPlus,
		LinearAveraging:      t.cfg.UseLinearAveraging,
		Iteration:            iter,
	}

	root := t.rootState(hand)
	for hero := 0; hero < 2; hero++ {
		if _, err := t.traverse(hand, root, hero, rng, opts); err != nil {
			return err
		}
	}
	return nil
}

// rootState builds the starting betting state for an iteration, dispatched
// by Variant (spec.md §4.6's "preflop vs. postflop training").
func (t *Trainer) rootState(hand dealtHand) tree.State {
	if t.cfg.Variant == VariantPostflop {
		return tree.NewPostflopHand(hand.hole, hand.board[:cards.Flop.BoardCards()], t.cfg.PostflopCommittedPot, t.cfg.StartingStack, t.cfg.BigBlind)
	}
	return tree.NewHand(hand.hole, t.cfg.StartingStack, t.cfg.SmallBlind, t.cfg.BigBlind)
}
