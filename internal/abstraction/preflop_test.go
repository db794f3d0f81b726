package abstraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cfr-holdem-solver/internal/cards"
)

func mustCards(t *testing.T, s string) []cards.Card {
	t.Helper()
	cs, err := cards.ParseCards(s)
	require.NoError(t, err)
	return cs
}

// S6: suited and offsuit AK map to distinct preflop buckets.
func TestScenarioSuitedVsOffsuitAKDistinct(t *testing.T) {
	t.Parallel()
	suited := PreflopBucket(mustCards(t, "AhKh"))
	offsuit := PreflopBucket(mustCards(t, "AsKd"))
	assert.NotEqual(t, suited, offsuit)
}

// S7: all offsuit AK combinations map to the identical preflop bucket.
func TestScenarioAllOffsuitAKCombosIdentical(t *testing.T) {
	t.Parallel()
	a := PreflopBucket(mustCards(t, "AhKd"))
	b := PreflopBucket(mustCards(t, "AcKs"))
	assert.Equal(t, a, b)
}

func TestPreflopPairsHaveNoSuitedness(t *testing.T) {
	t.Parallel()
	a := PreflopBucket(mustCards(t, "AhAd"))
	b := PreflopBucket(mustCards(t, "AsAc"))
	assert.Equal(t, a, b)
}

// property: exactly 169 distinct bucket ids over all C(52,2) hole pairs.
func TestPreflopBucketCardinalityIs169(t *testing.T) {
	t.Parallel()
	all := cards.AllCards()
	seen := make(map[int]bool)
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			seen[PreflopBucket([]cards.Card{all[i], all[j]})] = true
		}
	}
	assert.Len(t, seen, PreflopBucketCount)
	for id := range seen {
		assert.GreaterOrEqual(t, id, 0)
		assert.Less(t, id, PreflopBucketCount)
	}
}
