package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandAddContainsCount(t *testing.T) {
	t.Parallel()
	h := NewHand(NewCard(Ace, Hearts), NewCard(King, Spades))
	assert.Equal(t, 2, h.Count())
	assert.True(t, h.Contains(NewCard(Ace, Hearts)))
	assert.False(t, h.Contains(NewCard(Queen, Hearts)))
}

func TestHandCardsRoundTrip(t *testing.T) {
	t.Parallel()
	in := []Card{NewCard(Two, Clubs), NewCard(Ten, Diamonds), NewCard(Ace, Spades)}
	h := NewHand(in...)
	out := h.Cards()
	assert.ElementsMatch(t, in, out)
}

func TestHandSuitMask(t *testing.T) {
	t.Parallel()
	h := NewHand(NewCard(Two, Hearts), NewCard(Three, Hearts), NewCard(Four, Clubs))
	mask := h.SuitMask(Hearts)
	assert.Equal(t, uint16(1<<uint(Two)|1<<uint(Three)), mask)
	assert.Equal(t, uint16(1<<uint(Four)), h.SuitMask(Clubs))
}

func TestHandRankCounts(t *testing.T) {
	t.Parallel()
	h := NewHand(NewCard(Ace, Hearts), NewCard(Ace, Spades), NewCard(King, Clubs))
	counts := h.RankCounts()
	assert.Equal(t, 2, counts[Ace])
	assert.Equal(t, 1, counts[King])
	assert.Equal(t, 0, counts[Queen])
}
