package cfr

import (
	"math/rand"

	"github.com/lox/cfr-holdem-solver/internal/abstraction"
	"github.com/lox/cfr-holdem-solver/internal/cards"
)

// bucketFor derives the abstraction bucket id for hole/board at street,
// dispatching to the lossless preflop partition or the street's equity
// centroid table (spec.md §4.3).
func (c AbstractionConfig) bucketFor(street cards.Street, hole, board []cards.Card, rng *rand.Rand) int {
	if street == cards.Preflop {
		return abstraction.PreflopBucket(hole)
	}
	features := abstraction.FeatureVector(hole, board, c.EquitySamplesPerFeature, rng)
	return c.centroidFor(street).Bucket(features)
}
