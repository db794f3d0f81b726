package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cfr-holdem-solver/internal/cards"
	"github.com/lox/cfr-holdem-solver/internal/solvererr"
)

func mustCards(t *testing.T, s string) []cards.Card {
	t.Helper()
	cs, err := cards.ParseCards(s)
	require.NoError(t, err)
	return cs
}

func freshHand(t *testing.T) State {
	t.Helper()
	hole := [2][]cards.Card{mustCards(t, "AhAd"), mustCards(t, "KsKd")}
	return NewHand(hole, 200, 1, 2)
}

func TestFoldUnavailableWhenCheckIsLegal(t *testing.T) {
	t.Parallel()
	s := freshHand(t)
	// button called, big blind now faces no bet and has the option.
	s = s.Apply(Action{Kind: Call, Amount: s.ToCall()})
	for _, a := range s.LegalActions() {
		assert.NotEqual(t, Fold, a.Kind)
	}
}

func TestFacingBetOffersFoldCallBet(t *testing.T) {
	t.Parallel()
	s := freshHand(t)
	kinds := make(map[ActionKind]bool)
	for _, a := range s.LegalActions() {
		kinds[a.Kind] = true
	}
	assert.True(t, kinds[Fold])
	assert.True(t, kinds[Call])
	assert.True(t, kinds[BetMin])
	assert.True(t, kinds[BetMid])
	assert.True(t, kinds[BetMax])
	assert.False(t, kinds[Check])
}

func TestBetSizesCollapseToStackWhenShallow(t *testing.T) {
	t.Parallel()
	hole := [2][]cards.Card{mustCards(t, "AhAd"), mustCards(t, "KsKd")}
	s := NewHand(hole, 3, 1, 2)
	_, _, max := s.betSizes()
	min, mid, _ := s.betSizes()
	assert.LessOrEqual(t, min, max)
	assert.LessOrEqual(t, mid, max)
}

func TestHistoryEncodingMatchesCanonicalForm(t *testing.T) {
	t.Parallel()
	s := freshHand(t)
	s = s.Apply(Action{Kind: Call, Amount: s.ToCall()})
	require.Equal(t, NodeDecision, s.Classify())
	s = s.Apply(Action{Kind: Check})
	require.Equal(t, NodeChance, s.Classify())
	s = s.AdvanceStreet(mustCards(t, "2h7c9d"))
	assert.Equal(t, cards.Flop, s.Street)
	assert.Equal(t, "c/", s.History.String())

	s = s.Apply(Action{Kind: Check})
	_, mid, _ := s.betSizes()
	s = s.Apply(Action{Kind: BetMid, Amount: mid})
	assert.Equal(t, "c/kbMID/", s.History.String())

	s = s.Apply(Action{Kind: Call, Amount: s.ToCall()})
	require.Equal(t, NodeChance, s.Classify())
	s = s.AdvanceStreet(mustCards(t, "Tc"))
	s = s.Apply(Action{Kind: Check})
	s = s.Apply(Action{Kind: Check})
	assert.Equal(t, "c/kbMIDc/kk/", s.History.String())
}

// property 4: every terminal's payoffs sum to zero.
func TestZeroSumAtFoldTerminal(t *testing.T) {
	t.Parallel()
	s := freshHand(t)
	s = s.Apply(Action{Kind: Fold})
	require.Equal(t, NodeTerminal, s.Classify())
	assert.Equal(t, 0, s.Payoff(0)+s.Payoff(1))
}

func TestZeroSumAtShowdownTerminal(t *testing.T) {
	t.Parallel()
	hole := [2][]cards.Card{mustCards(t, "AhAd"), mustCards(t, "KsKc")}
	s := NewHand(hole, 200, 1, 2)
	s = s.Apply(Action{Kind: Call, Amount: s.ToCall()})
	s = s.Apply(Action{Kind: Check})
	for _, board := range [][]cards.Card{mustCards(t, "2h7c9d"), mustCards(t, "Tc"), mustCards(t, "3s")} {
		s = s.AdvanceStreet(board)
		s = s.Apply(Action{Kind: Check})
		s = s.Apply(Action{Kind: Check})
	}
	require.Equal(t, NodeTerminal, s.Classify())
	assert.Equal(t, 0, s.Payoff(0)+s.Payoff(1))
	assert.Greater(t, s.Payoff(0), 0) // aces beat kings
}

func TestSplitPotIsZeroSum(t *testing.T) {
	t.Parallel()
	hole := [2][]cards.Card{mustCards(t, "AhKd"), mustCards(t, "AsKs")}
	s := NewHand(hole, 200, 1, 2)
	s = s.Apply(Action{Kind: Call, Amount: s.ToCall()})
	s = s.Apply(Action{Kind: Check})
	for _, board := range [][]cards.Card{mustCards(t, "QhJc9d"), mustCards(t, "2c"), mustCards(t, "2d")} {
		s = s.AdvanceStreet(board)
		s = s.Apply(Action{Kind: Check})
		s = s.Apply(Action{Kind: Check})
	}
	assert.Equal(t, 0, s.Payoff(0)+s.Payoff(1))
}

// spec.md §7: checking when facing a bet is an illegal action and must
// surface InvalidState rather than silently being applied.
func TestTryApplyRejectsCheckWhenFacingBet(t *testing.T) {
	t.Parallel()
	s := freshHand(t) // button owes a call preflop, so the big blind's bet stands
	_, err := s.TryApply(Action{Kind: Check})
	var invalid *solvererr.InvalidState
	assert.ErrorAs(t, err, &invalid)
}

// A legal action should apply identically whether routed through Apply or
// TryApply.
func TestTryApplyAcceptsLegalAction(t *testing.T) {
	t.Parallel()
	s := freshHand(t)
	call := Action{Kind: Call, Amount: s.ToCall()}
	viaApply := s.Apply(call)
	viaTryApply, err := s.TryApply(call)
	require.NoError(t, err)
	assert.Equal(t, viaApply, viaTryApply)
}
