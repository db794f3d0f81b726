package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStreetBoardCards(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, Preflop.BoardCards())
	assert.Equal(t, 3, Flop.BoardCards())
	assert.Equal(t, 4, Turn.BoardCards())
	assert.Equal(t, 5, River.BoardCards())
}

func TestStreetString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "flop", Flop.String())
	assert.Equal(t, "river", River.String())
}
