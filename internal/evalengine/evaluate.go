package evalengine

import "github.com/lox/cfr-holdem-solver/internal/cards"

// Evaluate ranks a 5-7 card hand by finding the best 5-card subset. This
// gives the "adding a card never decreases rank" monotonicity invariant
// (spec.md §4.1, §8 property 2) for free: a 7-card hand's subsets are a
// superset of any of its 6-card subsets' subsets, so the max can only stay
// the same or grow as cards are added.
func Evaluate(hand []cards.Card) HandRank {
	switch len(hand) {
	case 5:
		return evaluate5(hand)
	case 6, 7:
		best := HandRank(0)
		combinations(hand, 5, func(five []cards.Card) {
			if r := evaluate5(five); r > best {
				best = r
			}
		})
		return best
	default:
		panic("evalengine: Evaluate requires 5, 6, or 7 cards")
	}
}

// combinations invokes fn with every k-length subset of items, reusing a
// single scratch buffer to avoid per-call allocation.
func combinations(items []cards.Card, k int, fn func([]cards.Card)) {
	n := len(items)
	if k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	buf := make([]cards.Card, k)
	emit := func() {
		for i, v := range idx {
			buf[i] = items[v]
		}
		fn(buf)
	}
	emit()
	for {
		i := k - 1
		for i >= 0 && idx[i] == i+n-k {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
		emit()
	}
}

// evaluate5 ranks exactly 5 cards via suit/rank histogram classification.
func evaluate5(hand []cards.Card) HandRank {
	h := cards.NewHand(hand...)

	var suitCounts [4]int
	for _, c := range hand {
		suitCounts[c.Suit()]++
	}
	flushSuit := -1
	for s := 0; s < 4; s++ {
		if suitCounts[s] == 5 {
			flushSuit = s
			break
		}
	}

	rankMask := h.RankMask()

	if flushSuit >= 0 {
		flushMask := h.SuitMask(cards.Suit(flushSuit))
		if high, ok := straightHigh(flushMask); ok {
			return pack(StraightFlush, high)
		}
		return pack(Flush, descendingRanks(flushMask, 5)...)
	}

	if high, ok := straightHigh(rankMask); ok {
		return pack(Straight, high)
	}

	counts := h.RankCounts()

	var quad, trips, pairs []int
	for rank := int(cards.Ace); rank >= int(cards.Two); rank-- {
		switch counts[rank] {
		case 4:
			quad = append(quad, rank)
		case 3:
			trips = append(trips, rank)
		case 2:
			pairs = append(pairs, rank)
		}
	}

	switch {
	case len(quad) == 1:
		kicker := highestExcluding(rankMask, quad[0])
		return pack(FourOfAKind, quad[0], kicker)
	case len(trips) == 1 && len(pairs) >= 1:
		return pack(FullHouse, trips[0], pairs[0])
	case len(trips) == 1:
		kickers := descendingRanksExcluding(rankMask, []int{trips[0]}, 2)
		return pack(ThreeOfAKind, append([]int{trips[0]}, kickers...)...)
	case len(pairs) >= 2:
		kicker := highestExcluding(rankMask, pairs[0], pairs[1])
		return pack(TwoPair, pairs[0], pairs[1], kicker)
	case len(pairs) == 1:
		kickers := descendingRanksExcluding(rankMask, []int{pairs[0]}, 3)
		return pack(OnePair, append([]int{pairs[0]}, kickers...)...)
	default:
		return pack(HighCard, descendingRanks(rankMask, 5)...)
	}
}

// straightHigh returns the high-card rank of the best straight present in
// mask, handling the wheel (A-2-3-4-5, high card Five).
func straightHigh(mask uint16) (int, bool) {
	const wheel = uint16(1<<uint(cards.Ace) | 1<<uint(cards.Two) | 1<<uint(cards.Three) | 1<<uint(cards.Four) | 1<<uint(cards.Five))
	if mask&wheel == wheel {
		return int(cards.Five), true
	}
	for high := int(cards.Ace); high >= int(cards.Six); high-- {
		needed := uint16(0x1F) << uint(high-4)
		if mask&needed == needed {
			return high, true
		}
	}
	return 0, false
}

// descendingRanks returns the top n set ranks in mask, descending.
func descendingRanks(mask uint16, n int) []int {
	out := make([]int, 0, n)
	for rank := int(cards.Ace); rank >= int(cards.Two) && len(out) < n; rank-- {
		if mask&(1<<uint(rank)) != 0 {
			out = append(out, rank)
		}
	}
	return out
}

// descendingRanksExcluding returns the top n set ranks in mask that are not
// in excl, descending.
func descendingRanksExcluding(mask uint16, excl []int, n int) []int {
	m := mask
	for _, e := range excl {
		m &^= 1 << uint(e)
	}
	return descendingRanks(m, n)
}

func highestExcluding(mask uint16, excl ...int) int {
	ranks := descendingRanksExcluding(mask, excl, 1)
	if len(ranks) == 0 {
		return 0
	}
	return ranks[0]
}
