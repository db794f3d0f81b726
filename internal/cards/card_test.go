package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardRoundTrip(t *testing.T) {
	t.Parallel()
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(rank, suit)
			assert.Equal(t, rank, c.Rank())
			assert.Equal(t, suit, c.Suit())

			parsed, err := ParseCard(c.String())
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		}
	}
}

func TestCardIndexIsBijective(t *testing.T) {
	t.Parallel()
	seen := make(map[Card]bool)
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Two; rank <= Ace; rank++ {
			c := NewCard(rank, suit)
			require.False(t, seen[c], "duplicate card index for %s", c)
			seen[c] = true
			require.Less(t, int(c), 52)
		}
	}
	assert.Len(t, seen, 52)
}

func TestParseCardCaseInsensitiveRank(t *testing.T) {
	t.Parallel()
	lower, err := ParseCard("th")
	require.NoError(t, err)
	upper, err := ParseCard("Th")
	require.NoError(t, err)
	assert.Equal(t, lower, upper)
}

func TestParseCardCaseSensitiveSuit(t *testing.T) {
	t.Parallel()
	_, err := ParseCard("AH")
	assert.Error(t, err)
}

func TestParseCardInvalid(t *testing.T) {
	t.Parallel()
	cases := []string{"", "A", "Xs", "Ax", "Ahh"}
	for _, c := range cases {
		_, err := ParseCard(c)
		assert.Error(t, err, "expected error for %q", c)
	}
}

func TestParseCards(t *testing.T) {
	t.Parallel()
	got, err := ParseCards("AhKh2c")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, NewCard(Ace, Hearts), got[0])
	assert.Equal(t, NewCard(King, Hearts), got[1])
	assert.Equal(t, NewCard(Two, Clubs), got[2])
}

func TestParseCardsOddLength(t *testing.T) {
	t.Parallel()
	_, err := ParseCards("Ah2")
	assert.Error(t, err)
}
