package abstraction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/cfr-holdem-solver/internal/cards"
)

func TestChecksumStableAndSensitiveToCentroids(t *testing.T) {
	t.Parallel()
	flop := CentroidTable{Street: cards.Flop, K: 2, Centroids: [][]float64{{1, 2}, {3, 4}}}
	turn := CentroidTable{Street: cards.Turn, K: 1, Centroids: [][]float64{{5, 6}}}
	river := CentroidTable{Street: cards.River, K: 1, Centroids: [][]float64{{7, 8}}}

	a := Checksum(flop, turn, river)
	b := Checksum(flop, turn, river)
	assert.Equal(t, a, b)

	flop2 := flop
	flop2.Centroids = [][]float64{{1, 2}, {3, 4.1}}
	assert.NotEqual(t, a, Checksum(flop2, turn, river))
}
