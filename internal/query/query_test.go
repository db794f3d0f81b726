package query_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cfr-holdem-solver/internal/abstraction"
	"github.com/lox/cfr-holdem-solver/internal/artifact"
	"github.com/lox/cfr-holdem-solver/internal/cards"
	"github.com/lox/cfr-holdem-solver/internal/query"
	"github.com/lox/cfr-holdem-solver/internal/solvererr"
)

func mustCards(t *testing.T, s string) []cards.Card {
	t.Helper()
	cs, err := cards.ParseCards(s)
	require.NoError(t, err)
	return cs
}

// S3: compare_hands with a paired board should tie, since [Ah,Kd] and
// [As,Ks] both complete the same ace-high straight with the board's Q-J-T.
func TestCompareHandsBoardPairProducesTie(t *testing.T) {
	t.Parallel()
	board := mustCards(t, "QhJdTs2c2d")
	got := query.Compare(board, mustCards(t, "AhKd"), mustCards(t, "AsKs"))
	assert.Equal(t, 0, got)
}

func newTestService(t *testing.T, art artifact.Artifact) *query.Service {
	t.Helper()
	svc, err := query.NewService(art, query.Abstraction{EquitySamplesPerFeature: 20}, 2, 500, 7, 64)
	require.NoError(t, err)
	return svc
}

// spec.md §6: a non-zero abstraction_checksum that doesn't match the
// loaded abstraction must surface as an ArtifactError, but NewService still
// returns a usable Service rather than refusing to construct one.
func TestNewServiceSurfacesAbstractionChecksumMismatch(t *testing.T) {
	t.Parallel()
	art := artifact.Artifact{
		Header:  artifact.Header{Version: 1, AbstractionChecksum: 0xdeadbeef},
		Entries: map[string]artifact.Entry{},
	}
	svc, err := query.NewService(art, query.Abstraction{EquitySamplesPerFeature: 20}, 2, 500, 7, 64)
	require.NotNil(t, svc)
	var artifactErr *solvererr.ArtifactError
	assert.ErrorAs(t, err, &artifactErr)
}

// A zero abstraction_checksum (e.g. an artifact built before this field
// existed, or a deliberately preflop-only artifact) skips the check.
func TestNewServiceSkipsChecksumCheckWhenHeaderChecksumIsZero(t *testing.T) {
	t.Parallel()
	art := artifact.Artifact{Header: artifact.Header{Version: 1}, Entries: map[string]artifact.Entry{}}
	svc, err := query.NewService(art, query.Abstraction{EquitySamplesPerFeature: 20}, 2, 500, 7, 64)
	require.NoError(t, err)
	require.NotNil(t, svc)
}

// S8 (query-side): once an artifact carries a converged strategy for the
// AA-opening info set, recommend must surface it — bet mass > 0.95.
func TestRecommendSurfacesConvergedOpeningStrategy(t *testing.T) {
	t.Parallel()
	bucket := abstraction.PreflopBucket(mustCards(t, "AhAd"))
	key := "0|" + strconv.Itoa(bucket) + "|" // street 0 = preflop, opening history is empty
	art := artifact.Artifact{
		Header: artifact.Header{Version: 1, Variant: "preflop"},
		Entries: map[string]artifact.Entry{
			key: {
				Actions:     []string{"f", "c", "bMIN", "bMID", "bMAX"},
				StrategySum: []float64{0.001, 0.009, 0.97, 0.01, 0.01},
			},
		},
	}
	svc := newTestService(t, art)

	rec, err := svc.Recommend(query.State{
		Hole:         mustCards(t, "AhAd"),
		Board:        nil,
		History:      "",
		Pot:          3,
		ToCall:       1,
		HeroStack:    199,
		VillainStack: 198,
	})
	require.NoError(t, err)
	assert.Equal(t, "bMIN", rec.Action)
	assert.Greater(t, rec.Distribution["bMIN"], 0.95)
}

func TestRecommendFallsBackToEquityHeuristicWhenKeyAbsent(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, artifact.Artifact{Header: artifact.Header{Version: 1}, Entries: map[string]artifact.Entry{}})

	rec, err := svc.Recommend(query.State{
		Hole:         mustCards(t, "AhAd"),
		Board:        nil,
		History:      "unseen-path",
		Pot:          10,
		ToCall:       0,
		HeroStack:    190,
		VillainStack: 190,
	})
	require.NoError(t, err)
	assert.Equal(t, "bMID", rec.Action)
	assert.Greater(t, rec.Equity, 0.7)
}

func TestRecommendFallsBackToFoldOnWeakHandFacingBet(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, artifact.Artifact{Header: artifact.Header{Version: 1}, Entries: map[string]artifact.Entry{}})

	rec, err := svc.Recommend(query.State{
		Hole:         mustCards(t, "7h2d"),
		Board:        nil,
		History:      "unseen-path",
		Pot:          40,
		ToCall:       40,
		HeroStack:    160,
		VillainStack: 160,
	})
	require.NoError(t, err)
	assert.Equal(t, "f", rec.Action)
}

// property 8: query determinism given the same artifact and state.
func TestRecommendIsDeterministicGivenSameArtifactAndState(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, artifact.Artifact{Header: artifact.Header{Version: 1}, Entries: map[string]artifact.Entry{}})
	state := query.State{
		Hole: mustCards(t, "KdKc"), Board: nil, History: "x",
		Pot: 12, ToCall: 4, HeroStack: 180, VillainStack: 180,
	}
	a, err := svc.Recommend(state)
	require.NoError(t, err)
	b, err := svc.Recommend(state)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

// spec.md §4.7/§7: an AbstractionMiss must still be surfaced, but the
// query falls back to the equity heuristic rather than aborting — the
// caller gets both a usable recommendation and the error.
func TestRecommendReturnsAbstractionMissWithoutCentroidsPostflop(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, artifact.Artifact{Header: artifact.Header{Version: 1}, Entries: map[string]artifact.Entry{}})
	rec, err := svc.Recommend(query.State{
		Hole: mustCards(t, "AhAd"), Board: mustCards(t, "2h7c9d"),
		History: "c/", Pot: 6, ToCall: 0, HeroStack: 198, VillainStack: 198,
	})
	var miss *solvererr.AbstractionMiss
	assert.ErrorAs(t, err, &miss)
	assert.NotEmpty(t, rec.Action)
	assert.Greater(t, rec.Equity, 0.0)
}
