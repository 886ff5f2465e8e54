package rules

import "testing"

func TestNextEligibleSkipsIneligible(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	bankrupt := map[string]bool{"b": true, "c": true}
	eligible := func(id string) bool { return !bankrupt[id] }

	next, ok := NextEligible(order, 0, eligible)
	if !ok || next != 3 {
		t.Fatalf("expected seat 3, got %d (ok=%v)", next, ok)
	}
	next, ok = NextEligible(order, 3, eligible)
	if !ok || next != 0 {
		t.Fatalf("expected wrap to seat 0, got %d (ok=%v)", next, ok)
	}
}

func TestNextEligibleNoneLeft(t *testing.T) {
	order := []string{"a", "b"}
	_, ok := NextEligible(order, 0, func(id string) bool { return id == "a" })
	if ok {
		t.Fatalf("expected no eligible successor")
	}
	if _, ok := NextEligible(nil, 0, func(string) bool { return true }); ok {
		t.Fatalf("empty order must have no successor")
	}
}

func TestNextEligibleIsPure(t *testing.T) {
	order := []string{"a", "b", "c"}
	eligible := func(string) bool { return true }
	for i := 0; i < 5; i++ {
		next, _ := NextEligible(order, 1, eligible)
		if next != 2 {
			t.Fatalf("call %d: expected 2, got %d", i, next)
		}
	}
	if order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("order mutated: %v", order)
	}
}

func TestTurnCursorVisitsEachEligibleOnce(t *testing.T) {
	order := []string{"a", "b", "c", "d"}
	bankrupt := map[string]bool{"c": true}
	cursor := NewTurnCursor(order)
	eligible := func(id string) bool { return !bankrupt[id] }

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		if !cursor.Advance(eligible) {
			t.Fatalf("advance %d failed", i)
		}
		seen[cursor.Current()] = true
	}
	if len(seen) != 3 || seen["c"] {
		t.Fatalf("expected three distinct non-bankrupt players, got %v", seen)
	}
	if cursor.TurnNumber() != 4 {
		t.Fatalf("expected turn 4, got %d", cursor.TurnNumber())
	}
}

func TestTurnCursorAdvanceFailsWhenAlone(t *testing.T) {
	cursor := NewTurnCursor([]string{"a", "b"})
	if cursor.Advance(func(id string) bool { return id == "a" }) {
		t.Fatalf("advance should fail when only the current player is eligible")
	}
	if cursor.Current() != "a" || cursor.TurnNumber() != 1 {
		t.Fatalf("cursor changed on failed advance: %s turn %d", cursor.Current(), cursor.TurnNumber())
	}
}

func TestRestoreTurnCursor(t *testing.T) {
	cursor := RestoreTurnCursor([]string{"a", "b", "c"}, 2, 9)
	if cursor.Current() != "c" || cursor.Index() != 2 || cursor.TurnNumber() != 9 {
		t.Fatalf("unexpected restored cursor: %s %d %d", cursor.Current(), cursor.Index(), cursor.TurnNumber())
	}
}
