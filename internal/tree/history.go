package tree

import "strings"

// BettingHistory is the ordered, per-street action log of one hand.
// Canonical string form concatenates per-street action tags separated by
// "/" (spec.md §3), e.g. "c/kbMID/kk/" — one segment per street reached so
// far, including an empty trailing segment for the street in progress.
type BettingHistory struct {
	segments [][]Action
}

// newBettingHistory starts a fresh history with one empty preflop segment.
func newBettingHistory() BettingHistory {
	return BettingHistory{segments: [][]Action{{}}}
}

// append records a onto the current (last) street segment.
func (h BettingHistory) append(a Action) BettingHistory {
	segments := make([][]Action, len(h.segments))
	copy(segments, h.segments)
	last := len(segments) - 1
	segments[last] = append(append([]Action{}, segments[last]...), a)
	return BettingHistory{segments: segments}
}

// advance opens a new empty segment for the next street.
func (h BettingHistory) advance() BettingHistory {
	segments := make([][]Action, len(h.segments)+1)
	copy(segments, h.segments)
	segments[len(segments)-1] = nil
	return BettingHistory{segments: segments}
}

// String renders the canonical history encoding used in InfoSetKey: each
// street's actions concatenated, one segment per street so far, separated
// by "/" (spec.md §3, e.g. "c/kbMID/kk/"). Once any action has been
// recorded, a trailing "/" marks the end of the current street; when that
// street has no actions yet (just after a street transition), joining the
// segments already produces it. A fresh hand with no actions renders as "".
func (h BettingHistory) String() string {
	parts := make([]string, len(h.segments))
	for i, seg := range h.segments {
		var sb strings.Builder
		for _, a := range seg {
			sb.WriteString(a.Tag())
		}
		parts[i] = sb.String()
	}
	joined := strings.Join(parts, "/")
	if len(parts) > 0 && parts[len(parts)-1] != "" {
		joined += "/"
	}
	return joined
}
