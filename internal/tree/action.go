// Package tree implements the heads-up NLHE betting tree (spec.md §4.4):
// betting state, legal-action enumeration, street transitions, and
// terminal/payoff detection. The REDESIGN FLAGS in spec.md §9 call for
// replacing an inheritance-based History hierarchy with a tagged variant
// over node kinds; Classify plays that role here, and State is a single
// concrete betting-state struct rather than a PreflopHistory/
// PostflopHistory subclass pair. The underlying mechanics (blinds, calling,
// raising, street advancement) are grounded on the teacher's
// internal/game/betting.go (BettingRound) and internal/game/pot.go.
package tree

import "fmt"

// ActionKind tags the six action shapes of spec.md §3/§6.
type ActionKind uint8

const (
	Fold ActionKind = iota
	Check
	Call
	BetMin
	BetMid
	BetMax
)

// Action is one legal move at a decision node. Amount is the resolved
// additional chip contribution for bet/call actions (0 for fold/check).
type Action struct {
	Kind   ActionKind
	Amount int
}

// Tag renders the canonical one-token encoding used inside betting-history
// strings and info-set keys (spec.md §3, §6): f | k | c | bMIN | bMID | bMAX.
func (a Action) Tag() string {
	switch a.Kind {
	case Fold:
		return "f"
	case Check:
		return "k"
	case Call:
		return "c"
	case BetMin:
		return "bMIN"
	case BetMid:
		return "bMID"
	case BetMax:
		return "bMAX"
	default:
		return "?"
	}
}

func (a Action) String() string {
	return fmt.Sprintf("%s(%d)", a.Tag(), a.Amount)
}
