// Package equity estimates hole-card-vs-random-opponent win probability via
// Monte Carlo rollout (spec.md §4.2). The sampling loop and the
// divide-samples-across-workers parallelization are grounded on the
// teacher's internal/evaluator/equity.go (EstimateEquityParallel,
// runEquityWorker): deal the remaining board, deal a random opponent hand
// from the undealt cards, evaluate both to a showdown, and accumulate
// win/tie/loss counts.
package equity

import (
	"context"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lox/cfr-holdem-solver/internal/cards"
	"github.com/lox/cfr-holdem-solver/internal/evalengine"
)

const maxWorkers = 8

// workerResult tallies one worker's share of samples.
type workerResult struct {
	wins, ties, valid int
}

// Estimate returns hero's equity against one random opponent hand, given a
// hole pair and a partial or complete board, using numSamples Monte Carlo
// rollouts split across up to maxWorkers goroutines. rng seeds an
// independent generator per worker so the result is reproducible for a
// given seed regardless of GOMAXPROCS (each worker's seed is derived
// deterministically from rng, consumed in worker-index order before any
// goroutine starts).
func Estimate(hole, board []cards.Card, numSamples int, rng *rand.Rand) float64 {
	if len(hole) != 2 {
		return 0
	}
	if len(board) > 5 {
		return 0
	}
	if numSamples <= 0 {
		return 0
	}

	workers := runtime.NumCPU()
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers > numSamples {
		workers = numSamples
	}

	removed := cards.RemovedSet(hole, board)
	available := cards.Remaining52(removed)

	seeds := make([]int64, workers)
	for w := range seeds {
		seeds[w] = rng.Int63()
	}

	perWorker := numSamples / workers
	remainder := numSamples % workers

	g, _ := errgroup.WithContext(context.Background())
	results := make([]workerResult, workers)

	for w := 0; w < workers; w++ {
		w := w
		samples := perWorker
		if w < remainder {
			samples++
		}
		g.Go(func() error {
			workerRng := rand.New(rand.NewSource(seeds[w]))
			results[w] = runWorker(hole, board, available, samples, workerRng)
			return nil
		})
	}
	_ = g.Wait()

	var wins, ties, valid int
	for _, r := range results {
		wins += r.wins
		ties += r.ties
		valid += r.valid
	}
	if valid == 0 {
		return 0
	}
	return (float64(wins) + float64(ties)/2) / float64(valid)
}

func runWorker(hole, board, available []cards.Card, samples int, rng *rand.Rand) workerResult {
	var res workerResult
	pool := make([]cards.Card, len(available))

	for i := 0; i < samples; i++ {
		copy(pool, available)
		shuffled := shuffleHead(pool, rng, 2+(5-len(board)))

		oppHole := shuffled[:2]
		boardFill := shuffled[2 : 2+(5-len(board))]

		fullBoard := make([]cards.Card, 0, 5)
		fullBoard = append(fullBoard, board...)
		fullBoard = append(fullBoard, boardFill...)

		heroHand := make([]cards.Card, 0, 7)
		heroHand = append(heroHand, hole...)
		heroHand = append(heroHand, fullBoard...)

		oppHand := make([]cards.Card, 0, 7)
		oppHand = append(oppHand, oppHole...)
		oppHand = append(oppHand, fullBoard...)

		heroRank := evalengine.Evaluate(heroHand)
		oppRank := evalengine.Evaluate(oppHand)

		res.valid++
		switch {
		case heroRank > oppRank:
			res.wins++
		case heroRank == oppRank:
			res.ties++
		}
	}
	return res
}

// shuffleHead performs a partial Fisher-Yates shuffle, returning the first n
// entries of pool shuffled into random order. pool is mutated in place.
func shuffleHead(pool []cards.Card, rng *rand.Rand, n int) []cards.Card {
	for i := 0; i < n && i < len(pool); i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
