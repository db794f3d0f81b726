package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/cfr-holdem-solver/internal/cards"
)

func TestNewPostflopHandStartsAtFlopWithOOPActing(t *testing.T) {
	t.Parallel()
	hole := [2][]cards.Card{mustCards(t, "AhAd"), mustCards(t, "KsKd")}
	board := mustCards(t, "2h7c9d")
	s := NewPostflopHand(hole, board, 20, 200, 2)
	assert.Equal(t, cards.Flop, s.Street)
	assert.Equal(t, 1, s.Actor)
	assert.Equal(t, 20, s.Pot())
	assert.Equal(t, NodeDecision, s.Classify())
}
