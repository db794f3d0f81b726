// Package query implements the query service (spec.md §4.7): given a
// loaded strategy artifact and a live game state, derive the same
// InfoSetKey training used and return a recommendation, falling back to an
// equity-threshold heuristic when the key is unknown. Grounded on the
// teacher's sdk/solver/runtime.Policy (load-once, read-only, uniform
// fallback on a missing key), generalized to the spec's equity-threshold
// fallback and its richer Recommendation shape, plus an LRU cache over
// repeated live-state lookups (the teacher declares golang-lru as a
// dependency without wiring it anywhere; this is where it earns its keep).
package query

import (
	"fmt"
	"math/rand"

	lru "github.com/opencoff/golang-lru"

	"github.com/lox/cfr-holdem-solver/internal/abstraction"
	"github.com/lox/cfr-holdem-solver/internal/artifact"
	"github.com/lox/cfr-holdem-solver/internal/cards"
	"github.com/lox/cfr-holdem-solver/internal/equity"
	"github.com/lox/cfr-holdem-solver/internal/evalengine"
	"github.com/lox/cfr-holdem-solver/internal/solvererr"
	"github.com/lox/cfr-holdem-solver/internal/store"
	"github.com/lox/cfr-holdem-solver/internal/tree"
)

// Abstraction bundles the centroid tables a Service needs to re-derive the
// same bucket ids training used (spec.md §4.3).
type Abstraction struct {
	Flop, Turn, River       abstraction.CentroidTable
	EquitySamplesPerFeature int
}

func (a Abstraction) bucketFor(street cards.Street, hole, board []cards.Card, rng *rand.Rand) int {
	if street == cards.Preflop {
		return abstraction.PreflopBucket(hole)
	}
	features := abstraction.FeatureVector(hole, board, a.EquitySamplesPerFeature, rng)
	switch street {
	case cards.Flop:
		return a.Flop.Bucket(features)
	case cards.Turn:
		return a.Turn.Bucket(features)
	default:
		return a.River.Bucket(features)
	}
}

// State is a live decision point (spec.md §4.7 / §6's get_ai_action
// parameters): hole and board cards, the canonical betting-history string
// on the current path, the pot and amount owed, and both players' stacks
// behind.
type State struct {
	Hole         []cards.Card
	Board        []cards.Card
	History      string
	Pot          int
	ToCall       int
	HeroStack    int
	VillainStack int
}

func (s State) street() cards.Street {
	switch len(s.Board) {
	case 0:
		return cards.Preflop
	case 3:
		return cards.Flop
	case 4:
		return cards.Turn
	default:
		return cards.River
	}
}

// Recommendation is the query API's `recommend` / `get_ai_action` result
// (spec.md §6).
type Recommendation struct {
	Action       string
	Amount       int
	Equity       float64
	Distribution map[string]float64
}

// Service answers equity/recommend/compare queries against a loaded
// artifact, per spec.md §4.7.
type Service struct {
	art           artifact.Artifact
	abs           Abstraction
	bigBlind      int
	equitySamples int
	seed          int64
	cache         *lru.Cache
}

// NewService wraps a loaded artifact with the abstraction and blind
// parameters it was trained under. equitySamples controls both the
// equity() query and the equity-threshold fallback's rollout count.
// cacheSize <= 0 disables caching.
//
// If art carries a non-zero AbstractionChecksum (spec.md §6) that does not
// match abstraction.Checksum(abs.Flop, abs.Turn, abs.River), the artifact
// was trained against a different abstraction than the one it is now being
// queried with — buckets would silently disagree with training. NewService
// still returns a usable Service (the caller may be running preflop-only,
// where the postflop tables are irrelevant), but wraps the mismatch as a
// *solvererr.ArtifactError for the caller to surface.
func NewService(art artifact.Artifact, abs Abstraction, bigBlind, equitySamples int, seed int64, cacheSize int) (*Service, error) {
	s := &Service{art: art, abs: abs, bigBlind: bigBlind, equitySamples: equitySamples, seed: seed}
	if cacheSize > 0 {
		c, err := lru.New(cacheSize)
		if err != nil {
			return nil, fmt.Errorf("query: create cache: %w", err)
		}
		s.cache = c
	}

	var checksumErr error
	if art.Header.AbstractionChecksum != 0 {
		got := abstraction.Checksum(abs.Flop, abs.Turn, abs.River)
		if got != art.Header.AbstractionChecksum {
			checksumErr = &solvererr.ArtifactError{
				Path: "abstraction",
				Err:  fmt.Errorf("checksum mismatch: artifact trained with %d, loaded abstraction is %d", art.Header.AbstractionChecksum, got),
			}
		}
	}
	return s, checksumErr
}

// newQueryRNG returns a deterministic RNG seeded purely from the service's
// configured seed. Reusing the same seed on every call (rather than a
// fresh time-based seed) is what makes Recommend/Equity reproducible given
// the same artifact and state (spec.md §8 property 8: "Query determinism").
func (s *Service) newQueryRNG() *rand.Rand {
	return rand.New(rand.NewSource(s.seed))
}

// Equity implements `get_equity(hole, board) -> p` (spec.md §6).
func (s *Service) Equity(hole, board []cards.Card) float64 {
	return equity.Estimate(hole, board, s.equitySamples, s.newQueryRNG())
}

// Compare implements `compare_hands(board, a, b) -> {-1, 0, +1}` (spec.md
// §6): best-of-7 rank comparison, no Monte Carlo involved.
func Compare(board, a, b []cards.Card) int {
	handA := append(append([]cards.Card{}, a...), board...)
	handB := append(append([]cards.Card{}, b...), board...)
	rankA := evalengine.Evaluate(handA)
	rankB := evalengine.Evaluate(handB)
	switch {
	case rankA > rankB:
		return 1
	case rankA < rankB:
		return -1
	default:
		return 0
	}
}

// Recommend implements `recommend(state) / get_ai_action` (spec.md §4.7,
// §6): look up the trained strategy for state's info-set key; if absent —
// including when the postflop abstraction itself is missing — fall back to
// the equity-threshold heuristic. An AbstractionMiss is still surfaced
// (spec.md §7), but wrapped around the fallback's own result rather than
// aborting the query, since §4.7 step 3 requires the heuristic to run in
// exactly this case.
func (s *Service) Recommend(state State) (Recommendation, error) {
	if cached, ok := s.cacheGet(state); ok {
		return cached, nil
	}

	street := state.street()
	if street != cards.Preflop && (s.abs.Flop.Centroids == nil && s.abs.Turn.Centroids == nil && s.abs.River.Centroids == nil) {
		rec, err := s.equityFallback(state)
		if err != nil {
			return Recommendation{}, err
		}
		return rec, &solvererr.AbstractionMiss{Street: street.String()}
	}

	rng := s.newQueryRNG()
	bucket := s.abs.bucketFor(street, state.Hole, state.Board, rng)
	key := store.Key{Street: street, Bucket: bucket, History: state.History}.String()

	rec, err := s.fromArtifact(state, key)
	if err != nil {
		return Recommendation{}, err
	}
	if rec == nil {
		fallback, err := s.equityFallback(state)
		if err != nil {
			return Recommendation{}, err
		}
		rec = &fallback
	}
	s.cachePut(state, *rec)
	return *rec, nil
}

func (s *Service) fromArtifact(state State, key string) (*Recommendation, error) {
	entry, ok := s.art.Entries[key]
	if !ok {
		return nil, nil
	}
	strat := entry.AverageStrategy()
	if len(strat) != len(entry.Actions) {
		return nil, &solvererr.InvariantViolation{Reason: fmt.Sprintf("artifact entry %q: action/strategy length mismatch", key)}
	}

	dist := make(map[string]float64, len(entry.Actions))
	bestIdx, bestP := 0, -1.0
	for i, tag := range entry.Actions {
		dist[tag] = strat[i]
		if strat[i] > bestP {
			bestIdx, bestP = i, strat[i]
		}
	}

	eq := s.Equity(state.Hole, state.Board)
	action := entry.Actions[bestIdx]
	amount := s.resolveAmount(state, action)
	return &Recommendation{Action: action, Amount: amount, Equity: eq, Distribution: dist}, nil
}

// equityFallback implements spec.md §4.7 step 3's "equity-threshold
// heuristic": call if equity*(pot+to_call) >= to_call, else fold; bet
// pot-sized if equity > 0.7.
func (s *Service) equityFallback(state State) (Recommendation, error) {
	eq := s.Equity(state.Hole, state.Board)

	if eq > 0.7 {
		_, mid, _ := tree.ResolveBetSizes(state.HeroStack, state.Pot, state.ToCall, s.bigBlind)
		amount := state.ToCall + mid
		return Recommendation{
			Action: "bMID",
			Amount: amount,
			Equity: eq,
			Distribution: map[string]float64{
				"f": 0, "c": 0, "bMID": 1,
			},
		}, nil
	}

	if eq*float64(state.Pot+state.ToCall) >= float64(state.ToCall) {
		tag := "c"
		if state.ToCall == 0 {
			tag = "k"
		}
		return Recommendation{
			Action: tag,
			Amount: state.ToCall,
			Equity: eq,
			Distribution: map[string]float64{
				tag: 1,
			},
		}, nil
	}

	return Recommendation{
		Action:       "f",
		Amount:       0,
		Equity:       eq,
		Distribution: map[string]float64{"f": 1},
	}, nil
}

func (s *Service) resolveAmount(state State, tag string) int {
	min, mid, max := tree.ResolveBetSizes(state.HeroStack, state.Pot, state.ToCall, s.bigBlind)
	switch tag {
	case "bMIN":
		return state.ToCall + min
	case "bMID":
		return state.ToCall + mid
	case "bMAX":
		return state.ToCall + max
	case "c":
		return state.ToCall
	default:
		return 0
	}
}

func (s *Service) cacheKey(state State) string {
	return fmt.Sprintf("%v|%v|%s|%d|%d|%d|%d", state.Hole, state.Board, state.History, state.Pot, state.ToCall, state.HeroStack, state.VillainStack)
}

func (s *Service) cacheGet(state State) (Recommendation, bool) {
	if s.cache == nil {
		return Recommendation{}, false
	}
	v, ok := s.cache.Get(s.cacheKey(state))
	if !ok {
		return Recommendation{}, false
	}
	return v.(Recommendation), true
}

func (s *Service) cachePut(state State, rec Recommendation) {
	if s.cache == nil {
		return
	}
	s.cache.Add(s.cacheKey(state), rec)
}
