package rules

import "strings"

// NextEligible returns the index of the next player after current in order
// for which eligible returns true, wrapping around. It returns false when no
// other player is eligible. It is a pure function of its arguments.
func NextEligible(order []string, current int, eligible func(id string) bool) (int, bool) {
	n := len(order)
	if n == 0 {
		return 0, false
	}
	for step := 1; step <= n; step++ {
		idx := ((current+step)%n + n) % n
		if idx == current%n {
			continue
		}
		if eligible(order[idx]) {
			return idx, true
		}
	}
	return current, false
}

// TurnCursor tracks whose turn it is over a fixed seating order and counts
// completed turns.
type TurnCursor struct {
	order      []string
	index      int
	turnNumber int
}

// NewTurnCursor starts at the first seat on turn 1.
func NewTurnCursor(order []string) *TurnCursor {
	cp := make([]string, 0, len(order))
	for _, id := range order {
		cp = append(cp, strings.TrimSpace(id))
	}
	return &TurnCursor{order: cp, turnNumber: 1}
}

// RestoreTurnCursor rebuilds a cursor at a saved position.
func RestoreTurnCursor(order []string, index, turnNumber int) *TurnCursor {
	c := NewTurnCursor(order)
	c.index = index
	c.turnNumber = turnNumber
	return c
}

// Order returns a copy of the seating order.
func (c *TurnCursor) Order() []string {
	return append([]string(nil), c.order...)
}

// Index returns the seat of the current player.
func (c *TurnCursor) Index() int {
	return c.index
}

// TurnNumber returns the current turn number (1-based).
func (c *TurnCursor) TurnNumber() int {
	return c.turnNumber
}

// Current returns the id of the player whose turn it is.
func (c *TurnCursor) Current() string {
	if len(c.order) == 0 {
		return ""
	}
	return c.order[c.index]
}

// Advance moves to the next eligible player and increments the turn counter.
// It reports false, leaving the cursor unchanged, when nobody else is eligible.
func (c *TurnCursor) Advance(eligible func(id string) bool) bool {
	next, ok := NextEligible(c.order, c.index, eligible)
	if !ok {
		return false
	}
	c.index = next
	c.turnNumber++
	return true
}
