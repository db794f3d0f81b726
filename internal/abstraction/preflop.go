// Package abstraction implements the card abstraction: a lossless 169-class
// preflop bucketing and an equity-clustered postflop bucketing per street
// (spec.md §4.3). The preflop scoring and bucket-count wiring follow the
// teacher's sdk/solver/bucket.go (BucketMapper.HoleBucket), generalized from
// a configurable coarse bucket count to the exact lossless 169-class
// partition the specification requires.
package abstraction

import "github.com/lox/cfr-holdem-solver/internal/cards"

// PreflopBucketCount is the exact cardinality of the lossless preflop
// abstraction (spec.md §8 property 3): 13 pairs + 78 suited rank-pairs + 78
// offsuit rank-pairs.
const PreflopBucketCount = 169

// PreflopBucket maps a two-card hole pair onto one of the 169 canonical
// preflop classes. Pairs occupy indices [0,13); suited rank-pairs occupy
// [13,91); offsuit rank-pairs occupy [91,169). Within the suited/offsuit
// ranges, indices are ordered by the unordered-pair combination index over
// the higher and lower rank, so [Ah,Kh] and [As,Ks] (both AKs) always map to
// the same bucket (spec.md §8 property 3, scenarios S6/S7).
func PreflopBucket(hole []cards.Card) int {
	if len(hole) != 2 {
		return 0
	}
	hi, lo := int(hole[0].Rank()), int(hole[1].Rank())
	if hi < lo {
		hi, lo = lo, hi
	}
	if hi == lo {
		return hi
	}
	suited := hole[0].Suit() == hole[1].Suit()
	idx := rankPairIndex(hi, lo)
	if suited {
		return PreflopPairCount + idx
	}
	return PreflopPairCount + RankPairCombinations + idx
}

// PreflopPairCount is the number of pocket-pair classes.
const PreflopPairCount = 13

// RankPairCombinations is C(13,2), the number of distinct unordered rank
// pairs with hi != lo.
const RankPairCombinations = 13 * 12 / 2

// rankPairIndex returns a stable index in [0, 78) for an unordered pair of
// distinct ranks hi > lo, via the standard triangular-number offset.
func rankPairIndex(hi, lo int) int {
	// Number of pairs with first element < hi is hi*(hi-1)/2; lo ranges
	// over [0, hi).
	return hi*(hi-1)/2 + lo
}
