package cfr

import (
	"math/rand"

	"github.com/lox/cfr-holdem-solver/internal/cards"
	"github.com/lox/cfr-holdem-solver/internal/equity"
	"github.com/lox/cfr-holdem-solver/internal/store"
	"github.com/lox/cfr-holdem-solver/internal/tree"
)

// dealtHand is one iteration's root chance outcome: both hole pairs and the
// full board, sampled once up front per spec.md §4.6 ("Chance node:
// already sampled at the root; no branching needed internally"). Traversal
// reveals prefixes of hand.board as betting advances streets.
type dealtHand struct {
	hole  [2][]cards.Card
	board []cards.Card
}

func (t *Trainer) dealHand(rng *rand.Rand) dealtHand {
	deck := cards.NewDeck(rng)
	h0 := append([]cards.Card{}, deck.Deal(2)...)
	h1 := append([]cards.Card{}, deck.Deal(2)...)
	board := append([]cards.Card{}, deck.Deal(5)...)
	return dealtHand{hole: [2][]cards.Card{h0, h1}, board: board}
}

// traverse implements one external-sampling MCCFR recursion for updating
// player target (spec.md §4.6). Unlike vanilla CFR, external sampling
// never multiplies regret or strategy-sum deltas by an explicit reach
// probability: the opponent's and chance's contribution to the expectation
// is already captured by how often a node is visited under sampling, so
// the recursion only threads the updating player's identity and the
// iteration's (already-dealt) cards.
func (t *Trainer) traverse(hand dealtHand, state tree.State, target int, rng *rand.Rand, opts store.UpdateOptions) (float64, error) {
	switch state.Classify() {
	case tree.NodeTerminal:
		return float64(state.Payoff(target)), nil

	case tree.NodeChance:
		if t.cfg.Variant == VariantPreflop && state.Street == cards.Preflop {
			return t.syntheticPreflopTerminal(hand, state, target, rng), nil
		}
		pending := state.PendingStreet()
		from := len(state.Board)
		to := pending.BoardCards()
		next := state.AdvanceStreet(hand.board[from:to])
		return t.traverse(hand, next, target, rng, opts)
	}

	actor := state.Actor
	bucket := t.absCfg.bucketFor(state.Street, hand.hole[actor], state.Board, rng)
	key := store.Key{Street: state.Street, Bucket: bucket, History: state.History.String()}

	actions := state.LegalActionsCapped(t.cfg.MaxRaisesPerStreet)
	tags := make([]string, len(actions))
	for i, a := range actions {
		tags[i] = a.Tag()
	}
	entry, err := t.table.GetOrCreate(key, tags)
	if err != nil {
		return 0, err
	}
	strategy := entry.Strategy()

	if actor == target {
		util := make([]float64, len(actions))
		nodeUtil := 0.0
		for i, a := range actions {
			u, err := t.traverse(hand, state.Apply(a), target, rng, opts)
			if err != nil {
				return 0, err
			}
			util[i] = u
			nodeUtil += strategy[i] * u
		}
		regretDelta := make([]float64, len(actions))
		for i := range actions {
			regretDelta[i] = util[i] - nodeUtil
		}
		if err := entry.Update(regretDelta, make([]float64, len(actions)), 1.0, opts); err != nil {
			return 0, err
		}
		return nodeUtil, nil
	}

	idx := sampleStrategyIndex(strategy, rng)
	u, err := t.traverse(hand, state.Apply(actions[idx]), target, rng, opts)
	if err != nil {
		return 0, err
	}
	if err := entry.Update(make([]float64, len(actions)), strategy, 1.0, opts); err != nil {
		return 0, err
	}
	return u, nil
}

// syntheticPreflopTerminal implements spec.md §4.6's preflop-only variant:
// reaching the flop is treated as a terminal with utility equal to the
// current pot weighted by hero's preflop-class equity against a uniform
// opponent class. equity.Estimate already samples a uniformly random
// opponent hand, which is exactly that uniform class.
func (t *Trainer) syntheticPreflopTerminal(hand dealtHand, state tree.State, target int, rng *rand.Rand) float64 {
	eq := equity.Estimate(hand.hole[target], nil, t.cfg.EquitySamplesForSyntheticTerminal, rng)
	pot := float64(state.Pot())
	return eq*pot - float64(state.Committed[target])
}

// sampleStrategyIndex draws an action index proportional to strategy,
// falling back to uniform selection if the distribution sums to zero.
func sampleStrategyIndex(strategy []float64, rng *rand.Rand) int {
	if len(strategy) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range strategy {
		if p > 0 {
			total += p
		}
	}
	if total <= 0 {
		return rng.Intn(len(strategy))
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, p := range strategy {
		if p <= 0 {
			continue
		}
		acc += p
		if r <= acc {
			return i
		}
	}
	return len(strategy) - 1
}
