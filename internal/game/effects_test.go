package game

import (
	"testing"

	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drawChance lands the current player on the chance space at 7 with the
// given card on top of the deck.
func drawChance(t *testing.T, g *Game, seqPush func(), cardID int) *player.Player {
	t.Helper()
	stackDeck(t, g, board.DeckChance, cardID)
	pl := mustPlayer(t, g, g.CurrentPlayerID())
	pl.Position = 3
	seqPush()
	requireSuccess(t, g.RollDice(pl.ID))
	return pl
}

func TestChanceCards(t *testing.T) {
	tests := []struct {
		name     string
		card     int
		cash     int
		position int
		phase    Phase
		state    player.State
	}{
		{name: "pay money", card: 12, cash: 1425, position: 7, phase: PhasePostRoll},
		{name: "collect money", card: 5, cash: 1550, position: 7, phase: PhasePostRoll},
		{name: "advance to go", card: 1, cash: 1700, position: 0, phase: PhasePostRoll},
		{name: "advance without passing go", card: 2, cash: 1500, position: 11, phase: PhasePropertyDecision},
		{name: "advance past go", card: 4, cash: 1700, position: 5, phase: PhasePropertyDecision},
		{name: "back three onto tax", card: 3, cash: 1300, position: 4, phase: PhasePostRoll},
		{name: "nearest railroad", card: 9, cash: 1500, position: 15, phase: PhasePropertyDecision},
		{name: "nearest utility", card: 11, cash: 1500, position: 12, phase: PhasePropertyDecision},
		{name: "go to jail", card: 16, cash: 1500, position: board.PositionJail, phase: PhasePostRoll, state: player.StateInJail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, seq := newTestGame(t)
			alice := drawChance(t, g, func() { seq.Push(roll(1, 3)) }, tt.card)

			assert.Equal(t, tt.cash, alice.Cash)
			assert.Equal(t, tt.position, alice.Position)
			assert.Equal(t, tt.phase, g.Phase())
			assert.Equal(t, tt.state, alice.State)
		})
	}
}

func TestNearestRailroadChargesRent(t *testing.T) {
	g, seq := newTestGame(t)
	own(t, g, "bob", 15)

	alice := drawChance(t, g, func() { seq.Push(roll(1, 3)) }, 9)
	assert.Equal(t, 15, alice.Position)
	assert.Equal(t, 1475, alice.Cash)
	assert.Equal(t, 1525, mustPlayer(t, g, "bob").Cash)
	assert.Equal(t, PhasePostRoll, g.Phase())
}

func TestPayEachPlayer(t *testing.T) {
	g, seq := newTestGame(t, "alice", "bob", "carol")

	alice := drawChance(t, g, func() { seq.Push(roll(1, 3)) }, 13)
	assert.Equal(t, 1400, alice.Cash)
	assert.Equal(t, 1550, mustPlayer(t, g, "bob").Cash)
	assert.Equal(t, 1550, mustPlayer(t, g, "carol").Cash)
}

func TestPayEachPlayerUnaffordable(t *testing.T) {
	g, seq := newTestGame(t, "alice", "bob", "carol")
	mustPlayer(t, g, "alice").Cash = 60

	alice := drawChance(t, g, func() { seq.Push(roll(1, 3)) }, 13)
	require.Equal(t, PhasePayingRent, g.Phase())
	debt, owed := g.PendingDebt()
	require.True(t, owed)
	assert.Equal(t, Debt{Amount: 100, Reason: DebtCard, Payees: []string{"bob", "carol"}, PerPayee: 50}, debt)

	alice.Cash = 200
	requireSuccess(t, g.PayDebt("alice"))
	assert.Equal(t, 100, alice.Cash)
	assert.Equal(t, 1550, mustPlayer(t, g, "bob").Cash)
	assert.Equal(t, 1550, mustPlayer(t, g, "carol").Cash)
	assert.Equal(t, PhasePostRoll, g.Phase())
}

func TestCollectFromEveryPlayer(t *testing.T) {
	g, seq := newTestGame(t, "alice", "bob", "carol")
	alice := mustPlayer(t, g, "alice")
	bob := mustPlayer(t, g, "bob")
	bob.Cash = 5
	stackDeck(t, g, board.DeckCommunityChest, 23)
	alice.Position = 13

	seq.Push(roll(1, 3))
	requireSuccess(t, g.RollDice("alice"))
	assert.Equal(t, 17, alice.Position)
	assert.Equal(t, 1515, alice.Cash)
	assert.Equal(t, 0, bob.Cash)
	assert.Equal(t, 1490, mustPlayer(t, g, "carol").Cash)
}

func TestRepairs(t *testing.T) {
	g, seq := newTestGame(t)
	own(t, g, "alice", 1, 3)
	develop(t, g, 1, 2)
	develop(t, g, 3, 1)

	alice := drawChance(t, g, func() { seq.Push(roll(1, 3)) }, 15)
	assert.Equal(t, 1425, alice.Cash)
	assert.Equal(t, PhasePostRoll, g.Phase())
}

func TestCardPaymentUnaffordable(t *testing.T) {
	g, seq := newTestGame(t)
	mustPlayer(t, g, "alice").Cash = 50

	drawChance(t, g, func() { seq.Push(roll(1, 3)) }, 14)
	require.Equal(t, PhasePayingRent, g.Phase())
	debt, owed := g.PendingDebt()
	require.True(t, owed)
	assert.Equal(t, Debt{Amount: 100, Reason: DebtCard}, debt)
}

func TestDrawnCardGoesToDiscard(t *testing.T) {
	g, seq := newTestGame(t)

	drawChance(t, g, func() { seq.Push(roll(1, 3)) }, 5)
	deck, _ := g.cards.Deck(board.DeckChance)
	assert.Zero(t, deck.Remaining())
	assert.Equal(t, 16, deck.Discarded())
	assert.NoError(t, g.Fault())
}
