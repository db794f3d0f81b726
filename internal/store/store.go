// Package store implements the information-set store (spec.md §4.5): a
// concurrent map from InfoSetKey to regret-sum/strategy-sum vectors,
// sharded for parallel training traversals. Grounded on the teacher's
// sdk/solver/regret.go (RegretTable/RegretEntry: 64-shard sync.RWMutex
// maps, per-entry mutex, regret-matching Strategy/Update/AverageStrategy),
// generalized in two ways the spec requires and the teacher didn't:
// shard selection uses a keyed hash (dchest/siphash) instead of FNV-1a, and
// a growing info-set's action list is a fatal InvariantViolation rather
// than the teacher's silent ensureSize growth (spec.md §4.5: "First-writer
// wins action-list registration... mismatch is a fatal invariant
// violation").
package store

import (
	"fmt"
	"math"
	"sync"

	"github.com/dchest/siphash"

	"github.com/lox/cfr-holdem-solver/internal/cards"
	"github.com/lox/cfr-holdem-solver/internal/solvererr"
)

// Key identifies an information set: street, abstracted bucket, and the
// canonical betting-history string on the current decision path (spec.md
// §3, §6: "street|bucket|history").
type Key struct {
	Street  cards.Street
	Bucket  int
	History string
}

func (k Key) String() string {
	return fmt.Sprintf("%d|%d|%s", k.Street, k.Bucket, k.History)
}

// InfoSet is the per-key record of spec.md §3: an immutable-after-creation
// action list, plus mutable regret-sum and strategy-sum vectors.
type InfoSet struct {
	mu          sync.Mutex
	actions     []string
	regretSum   []float64
	strategySum []float64
}

// Actions returns the info-set's fixed ordered action-tag list.
func (e *InfoSet) Actions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.actions...)
}

// UpdateOptions configures regret-sum and strategy-sum accumulation,
// recorded per spec.md §4.6 / §9: linear (iteration-weighted) averaging is
// an acceptable variant that MUST be documented in the artifact header.
type UpdateOptions struct {
	ClampNegativeRegrets bool // CFR+ variant
	LinearAveraging      bool
	Iteration            int
}

// Strategy returns the current regret-matching distribution (spec.md
// §4.6): positive regret normalized, uniform fallback when no action has
// positive regret.
func (e *InfoSet) Strategy() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return regretMatch(e.regretSum)
}

func regretMatch(regretSum []float64) []float64 {
	strat := make([]float64, len(regretSum))
	total := 0.0
	for i, r := range regretSum {
		if r > 0 {
			strat[i] = r
			total += r
		}
	}
	if total <= 0 {
		uniform := 1.0 / float64(len(strat))
		for i := range strat {
			strat[i] = uniform
		}
		return strat
	}
	for i := range strat {
		strat[i] /= total
	}
	return strat
}

// Update accumulates a per-action regret delta and strategy-sum
// contribution, weighted by reachWeight (and by iteration index under
// linear averaging). Returns InvariantViolation if the result would
// contain NaN.
func (e *InfoSet) Update(regretDelta, strategyDelta []float64, reachWeight float64, opts UpdateOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	iterWeight := 1.0
	if opts.LinearAveraging {
		iter := opts.Iteration
		if iter <= 0 {
			iter = 1
		}
		iterWeight = float64(iter)
	}
	weight := reachWeight * iterWeight

	for i := range regretDelta {
		e.regretSum[i] += regretDelta[i]
		if opts.ClampNegativeRegrets && e.regretSum[i] < 0 {
			e.regretSum[i] = 0
		}
		e.strategySum[i] += weight * strategyDelta[i]
		if math.IsNaN(e.regretSum[i]) || math.IsNaN(e.strategySum[i]) {
			return &solvererr.InvariantViolation{Reason: "NaN in regret or strategy sum"}
		}
	}
	return nil
}

// AverageStrategy returns the normalized strategy_sum: the published
// recommendation (spec.md §4.6). The normalizing denominator is the sum of
// strategy_sum itself (every per-update contribution is a regret-matching
// distribution that already sums to 1, so accumulated weight and
// accumulated strategy-sum total rise in lockstep) — this keeps the
// artifact's persisted {actions, regret_sum, strategy_sum} triple, with no
// extra hidden field, sufficient to reconstruct an equivalent InfoSet.
func (e *InfoSet) AverageStrategy() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return NormalizeStrategySum(e.strategySum)
}

// NormalizeStrategySum normalizes a raw strategy-sum vector into the
// published average strategy, falling back to uniform when nothing has
// accumulated yet. Exported so the artifact package can compute the same
// recommendation directly from a persisted entry without reconstructing a
// live InfoSet.
func NormalizeStrategySum(sum []float64) []float64 {
	strat := make([]float64, len(sum))
	total := 0.0
	for _, v := range sum {
		total += v
	}
	if total <= 0 {
		uniform := 1.0 / float64(len(strat))
		for i := range strat {
			strat[i] = uniform
		}
		return strat
	}
	for i, v := range sum {
		strat[i] = v / total
	}
	return strat
}

// RegretSum returns a copy of the entry's raw cumulative regret vector, for
// artifact persistence (spec.md §6's logical schema).
func (e *InfoSet) RegretSum() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]float64(nil), e.regretSum...)
}

// StrategySum returns a copy of the entry's raw cumulative strategy-sum
// vector, for artifact persistence.
func (e *InfoSet) StrategySum() []float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]float64(nil), e.strategySum...)
}

const shardCount = 64
const shardMask = shardCount - 1

// siphash keys used only to spread keys across shards; not a security
// boundary.
const shardHashK0, shardHashK1 = 0xcfc0ffee, 0x51d3f00d

type shard struct {
	mu      sync.RWMutex
	entries map[string]*InfoSet
}

// Table is the sharded, concurrency-safe information-set store (spec.md
// §4.5). See Snapshot for what a flush-time reader observes.
type Table struct {
	shards [shardCount]shard
}

// New returns an empty table ready for concurrent use.
func New() *Table {
	t := &Table{}
	for i := range t.shards {
		t.shards[i].entries = make(map[string]*InfoSet)
	}
	return t
}

// Restore inserts a fully-formed info-set directly under its raw string
// key, bypassing the first-writer-wins action check. Used when rebuilding
// a Table from a persisted artifact (spec.md §8 property 7's round-trip),
// where the incoming data is trusted rather than freshly derived from a
// traversal.
func (t *Table) Restore(rawKey string, actions []string, regretSum, strategySum []float64) {
	s := t.shardFor(rawKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[rawKey] = &InfoSet{
		actions:     append([]string(nil), actions...),
		regretSum:   append([]float64(nil), regretSum...),
		strategySum: append([]float64(nil), strategySum...),
	}
}

// GetOrCreate returns the info-set for key, creating it with the given
// action tags on first visit. A later call with a different action list
// for the same key is a fatal InvariantViolation (spec.md §4.5:
// "First-writer wins action-list registration").
func (t *Table) GetOrCreate(key Key, actions []string) (*InfoSet, error) {
	k := key.String()
	s := t.shardFor(k)

	s.mu.RLock()
	entry, ok := s.entries[k]
	s.mu.RUnlock()
	if ok {
		if err := checkActionsMatch(entry.Actions(), actions); err != nil {
			return nil, err
		}
		return entry, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok = s.entries[k]; ok {
		if err := checkActionsMatch(entry.Actions(), actions); err != nil {
			return nil, err
		}
		return entry, nil
	}

	entry = &InfoSet{
		actions:     append([]string(nil), actions...),
		regretSum:   make([]float64, len(actions)),
		strategySum: make([]float64, len(actions)),
	}
	s.entries[k] = entry
	return entry, nil
}

func checkActionsMatch(existing, want []string) error {
	if len(existing) != len(want) {
		return &solvererr.InvariantViolation{
			Reason: fmt.Sprintf("action-list length mismatch: existing %v, got %v", existing, want),
		}
	}
	for i := range existing {
		if existing[i] != want[i] {
			return &solvererr.InvariantViolation{
				Reason: fmt.Sprintf("action-list mismatch: existing %v, got %v", existing, want),
			}
		}
	}
	return nil
}

// Snapshot returns a new key-to-InfoSet map holding every tracked key,
// copied shard by shard under each shard's read lock (spec.md §4.5). The
// InfoSet values are the live entries, not copies, so the result reflects a
// single point in time only while no Update runs concurrently, as at the
// trainer's batch boundaries.
func (t *Table) Snapshot() map[string]*InfoSet {
	out := make(map[string]*InfoSet)
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		for k, v := range s.entries {
			out[k] = v
		}
		s.mu.RUnlock()
	}
	return out
}

// Size returns the number of tracked information sets.
func (t *Table) Size() int {
	total := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

func (t *Table) shardFor(key string) *shard {
	h := siphash.Hash(shardHashK0, shardHashK1, []byte(key))
	return &t.shards[h&shardMask]
}
