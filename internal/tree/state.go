package tree

import (
	"fmt"

	"github.com/lox/cfr-holdem-solver/internal/cards"
	"github.com/lox/cfr-holdem-solver/internal/evalengine"
	"github.com/lox/cfr-holdem-solver/internal/solvererr"
)

// State is one heads-up hand's betting state: stacks, pot, committed
// amounts, street, board, current actor, and action log (spec.md §4.4). It
// replaces the teacher's mutable BettingRound with an immutable value:
// every mutator returns a new State, which keeps CFR's depth-first
// recursive traversal (spec.md §4.6) free of aliasing bugs between sibling
// branches explored from the same parent.
type State struct {
	Hole      [2][]cards.Card
	Board     []cards.Card
	Street    cards.Street
	Actor     int
	Stacks    [2]int
	Committed [2]int // total chips contributed to the pot so far, this hand
	street    [2]int // chips contributed during the current street only
	acted     [2]bool
	Folded    int // -1 if nobody has folded yet
	BigBlind  int
	History   BettingHistory
	raises    int // consecutive raises so far this street, reset on AdvanceStreet
}

// RaiseDepth is how many raises have occurred since the last street
// transition, used by the CFR engine's adaptive raise-width cap
// (supplemental to spec.md §4.4's fixed three bet sizes: it bounds how many
// times those three sizes may be re-raised in a row before the action
// abstraction collapses to fold/call, keeping the tree finite).
func (s State) RaiseDepth() int { return s.raises }

// NewHand deals blinds and returns the initial preflop state. Seat 0 is the
// button (small blind, acts first preflop); seat 1 is the big blind
// (spec.md §4.4's "Initial state").
func NewHand(hole [2][]cards.Card, startingStack, smallBlind, bigBlind int) State {
	s := State{
		Hole:     hole,
		Street:   cards.Preflop,
		Actor:    0,
		Stacks:   [2]int{startingStack - smallBlind, startingStack - bigBlind},
		Folded:   -1,
		BigBlind: bigBlind,
		History:  newBettingHistory(),
	}
	s.Committed = [2]int{smallBlind, bigBlind}
	s.street = [2]int{smallBlind, bigBlind}
	return s
}

// NewPostflopHand starts a hand already on the flop with committedPot chips
// already in the middle (split evenly), for the "postflop solver" variant
// of spec.md §4.6 ("conditions on a reached flop situation and solves the
// subtree from there"). The out-of-position player (seat 1) acts first,
// matching a normal post-preflop street transition.
func NewPostflopHand(hole [2][]cards.Card, board []cards.Card, committedPot, startingStack, bigBlind int) State {
	half := committedPot / 2
	s := State{
		Hole:     hole,
		Board:    board,
		Street:   cards.Flop,
		Actor:    1,
		Stacks:   [2]int{startingStack - half, startingStack - (committedPot - half)},
		Folded:   -1,
		BigBlind: bigBlind,
		History:  newBettingHistory(),
	}
	s.Committed = [2]int{half, committedPot - half}
	return s
}

func (s State) opponent() int { return 1 - s.Actor }

// ToCall is the additional amount the current actor must contribute to
// match the opponent's street commitment.
func (s State) ToCall() int {
	diff := s.street[s.opponent()] - s.street[s.Actor]
	if diff < 0 {
		return 0
	}
	return diff
}

func (s State) facingBet() bool { return s.ToCall() > 0 }

func ceilDiv(a, b int) int {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Pot is the total chips contributed by both players so far.
func (s State) Pot() int { return s.Committed[0] + s.Committed[1] }

// betSizes returns the resolved additional-contribution amounts for
// MIN/MID/MAX, clamped to the actor's remaining stack after covering any
// call (spec.md §4.4: "MIN/MID collapse to MAX if they would exceed
// stack").
func (s State) betSizes() (min, mid, max int) {
	return ResolveBetSizes(s.Stacks[s.Actor], s.Pot(), s.ToCall(), s.BigBlind)
}

// ResolveBetSizes computes the MIN/MID/MAX additional-contribution amounts
// from raw betting quantities, independent of a full State. Exported so the
// query service can resolve a bet tag's chip amount from a live
// (pot, to_call, hero_stack) tuple (spec.md §6's get_ai_action parameters)
// without reconstructing betting history.
func ResolveBetSizes(actorStack, pot, toCall, bigBlind int) (min, mid, max int) {
	remaining := actorStack - toCall

	min = ceilDiv(pot, 3)
	if min < bigBlind {
		min = bigBlind
	}
	mid = pot
	if mid < bigBlind {
		mid = bigBlind
	}
	max = remaining
	if max < 0 {
		max = 0
	}
	if min > max {
		min = max
	}
	if mid > max {
		mid = max
	}
	return min, mid, max
}

// LegalActions enumerates the actions available to the current actor
// (spec.md §4.4). Bet actions are omitted once the actor has no stack left
// beyond the call, since a raise of size 0 is not a real decision.
func (s State) LegalActions() []Action {
	toCall := s.ToCall()
	canRaise := s.Stacks[s.Actor]-toCall > 0

	var actions []Action
	if s.facingBet() {
		actions = append(actions, Action{Kind: Fold})
		callAmt := toCall
		if callAmt > s.Stacks[s.Actor] {
			callAmt = s.Stacks[s.Actor]
		}
		actions = append(actions, Action{Kind: Call, Amount: callAmt})
	} else {
		actions = append(actions, Action{Kind: Check})
	}
	if canRaise {
		min, mid, max := s.betSizes()
		actions = append(actions,
			Action{Kind: BetMin, Amount: toCall + min},
			Action{Kind: BetMid, Amount: toCall + mid},
			Action{Kind: BetMax, Amount: toCall + max},
		)
	}
	return actions
}

// LegalActionsCapped is LegalActions with the three bet tags dropped once
// RaiseDepth has reached maxRaises, bounding how deep a raising war can go
// (see RaiseDepth). maxRaises <= 0 means uncapped.
func (s State) LegalActionsCapped(maxRaises int) []Action {
	actions := s.LegalActions()
	if maxRaises <= 0 || s.raises < maxRaises {
		return actions
	}
	filtered := actions[:0:0]
	for _, a := range actions {
		if a.Kind != BetMin && a.Kind != BetMid && a.Kind != BetMax {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// isLegal reports whether a matches one of the current actor's legal moves
// exactly (kind and, for call/bet actions, the resolved amount).
func (s State) isLegal(a Action) bool {
	for _, legal := range s.LegalActions() {
		if legal.Kind == a.Kind && legal.Amount == a.Amount {
			return true
		}
	}
	return false
}

// TryApply validates a against the current actor's legal-action set before
// applying it, returning a *solvererr.InvalidState (spec.md §7: "illegal
// action for current game state (e.g., check when facing a bet)") on a
// mismatch rather than silently executing it. Use this for any action that
// did not come straight out of LegalActions/LegalActionsCapped.
func (s State) TryApply(a Action) (State, error) {
	if !s.isLegal(a) {
		return State{}, &solvererr.InvalidState{
			Reason: fmt.Sprintf("%s is not legal for actor %d on street %d (facing bet: %v)", a, s.Actor, s.Street, s.facingBet()),
		}
	}
	return s.Apply(a), nil
}

// Apply plays action for the current actor and returns the resulting
// state. It does not deal cards for street transitions; callers observe
// Classify() == Chance and supply the next street's cards via AdvanceStreet.
// It does not validate a against the legal-action set — callers supplying
// actions from outside LegalActions/LegalActionsCapped (e.g. external game
// state) should use TryApply instead.
func (s State) Apply(a Action) State {
	next := s
	next.Hole = s.Hole
	next.Board = s.Board
	next.street = s.street
	next.Committed = s.Committed
	next.acted = s.acted
	next.History = s.History.append(a)

	switch a.Kind {
	case Fold:
		next.Folded = s.Actor
	case Check:
		next.acted[s.Actor] = true
	case Call, BetMin, BetMid, BetMax:
		next.street[s.Actor] += a.Amount
		next.Committed[s.Actor] += a.Amount
		next.Stacks[s.Actor] -= a.Amount
		next.acted[s.Actor] = true
		if a.Kind != Call {
			// A raise reopens the action for the opponent.
			next.acted[s.opponent()] = false
			next.raises = s.raises + 1
		}
	}
	next.Actor = s.opponent()
	return next
}

// roundOver reports whether the current street's betting is complete:
// both players have acted since the last raise and contributions match, or
// both are all-in.
func (s State) roundOver() bool {
	if s.Stacks[0] == 0 && s.Stacks[1] == 0 {
		return true
	}
	return s.acted[0] && s.acted[1] && s.street[0] == s.street[1]
}

// NodeKind discriminates the three node shapes of the tagged variant
// described by spec.md §9 (Chance | Decision | Terminal).
type NodeKind uint8

const (
	NodeDecision NodeKind = iota
	NodeChance
	NodeTerminal
)

// Classify reports which kind of node s currently is, standing in for the
// tagged variant `Node = Chance | Decision | Terminal` that spec.md §9
// calls for in place of inheritance-based history subclassing.
func (s State) Classify() NodeKind {
	if s.Folded >= 0 {
		return NodeTerminal
	}
	if s.Street == cards.Showdown {
		return NodeTerminal
	}
	if s.roundOver() {
		if s.Street == cards.River {
			return NodeTerminal
		}
		return NodeChance
	}
	return NodeDecision
}

// PendingStreet is the street AdvanceStreet will deal into, valid only when
// Classify() == NodeChance.
func (s State) PendingStreet() cards.Street { return s.Street + 1 }

// AdvanceStreet deals newCards onto the board, opens the next street, and
// sets the actor to out-of-position (the big blind, seat 1), per spec.md
// §4.4's "Street transitions".
func (s State) AdvanceStreet(newCards []cards.Card) State {
	next := s
	next.Board = append(append([]cards.Card{}, s.Board...), newCards...)
	next.Street = s.Street + 1
	next.acted = [2]bool{false, false}
	next.street = [2]int{0, 0}
	next.raises = 0
	next.Actor = 1
	next.History = s.History.advance()
	return next
}

// Payoff returns player's zero-sum signed chip delta at a terminal state
// (spec.md §4.4's "Terminals", §8 property 4). Folds award the pot to the
// non-folder; showdowns compare best-of-7 hand rank, splitting on ties with
// the odd chip (if any) going to the button for determinism.
func (s State) Payoff(player int) int {
	pot := s.Pot()
	if s.Folded >= 0 {
		winner := 1 - s.Folded
		if player == winner {
			return pot - s.Committed[winner]
		}
		return -s.Committed[player]
	}

	hand0 := append(append([]cards.Card{}, s.Hole[0]...), s.Board...)
	hand1 := append(append([]cards.Card{}, s.Hole[1]...), s.Board...)
	rank0 := evalengine.Evaluate(hand0)
	rank1 := evalengine.Evaluate(hand1)

	switch {
	case rank0 > rank1:
		return winnerLoserPayoff(player, 0, pot, s.Committed)
	case rank1 > rank0:
		return winnerLoserPayoff(player, 1, pot, s.Committed)
	default:
		half := pot / 2
		odd := pot % 2
		share := [2]int{half, half}
		share[0] += odd // button takes the odd chip
		return share[player] - s.Committed[player]
	}
}

func winnerLoserPayoff(player, winner, pot int, committed [2]int) int {
	if player == winner {
		return pot - committed[winner]
	}
	return -committed[player]
}
