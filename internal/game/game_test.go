package game

import (
	"errors"
	"testing"

	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/dice"
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/landlord/landlord-server/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinPlayers = 1

	_, err := New("g", "bad", cfg, 1, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestLobby(t *testing.T) {
	g, err := New("g", "lobby", DefaultConfig(), 1, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, PhaseWaiting, g.Phase())

	requireSuccess(t, g.AddPlayer("alice", "Alice"))
	assert.Equal(t, rules.ResultNotEnoughPlayers, g.Start().Kind)
	assert.Equal(t, rules.ResultInvalidPlayer, g.AddPlayer("alice", "Again").Kind)
	assert.Equal(t, rules.ResultInvalidPlayer, g.AddPlayer("  ", "Blank").Kind)

	for _, id := range []string{"bob", "carol", "dave"} {
		requireSuccess(t, g.AddPlayer(id, ""))
	}
	assert.Equal(t, rules.ResultGameFull, g.AddPlayer("erin", "Erin").Kind)

	requireSuccess(t, g.RemovePlayer("dave"))
	assert.Len(t, g.Players(), 3)

	requireSuccess(t, g.Start())
	assert.Equal(t, PhasePreRoll, g.Phase())
	assert.Equal(t, "alice", g.CurrentPlayerID())
	assert.Equal(t, 1, g.TurnNumber())
	assert.Equal(t, rules.ResultInvalidPhase, g.AddPlayer("erin", "Erin").Kind)
	assert.Equal(t, rules.ResultInvalidPhase, g.Start().Kind)

	for _, pl := range g.Players() {
		assert.Equal(t, 1500, pl.Cash)
		assert.Equal(t, board.PositionGo, pl.Position)
	}
}

func TestTurnChecks(t *testing.T) {
	g, seq := newTestGame(t)

	assert.Equal(t, rules.ResultNotYourTurn, g.RollDice("bob").Kind)
	assert.Equal(t, rules.ResultInvalidPlayer, g.RollDice("mallory").Kind)
	assert.Equal(t, rules.ResultInvalidPhase, g.EndTurn("alice").Kind)
	assert.Equal(t, rules.ResultInvalidPhase, g.BuyProperty("alice").Kind)

	seq.Push(roll(4, 6))
	requireSuccess(t, g.RollDice("alice"))
	assert.Equal(t, PhasePostRoll, g.Phase())
	assert.Equal(t, rules.ResultInvalidPhase, g.RollDice("alice").Kind)
}

func TestBuyPropertyAfterPassingGo(t *testing.T) {
	g, seq := newTestGame(t)
	alice := mustPlayer(t, g, "alice")
	alice.Position = 39

	seq.Push(roll(1, 1))
	res := g.RollDice("alice")
	requireSuccess(t, res)
	assert.Equal(t, 1, alice.Position)
	assert.Equal(t, 1700, alice.Cash)
	assert.Equal(t, PhasePropertyDecision, g.Phase())
	assert.Equal(t, 1, res.Payload["position"])

	requireSuccess(t, g.BuyProperty("alice"))
	prop, _ := g.Board().Property(1)
	assert.Equal(t, "alice", prop.Owner)
	assert.True(t, alice.OwnsProperty(1))
	assert.Equal(t, 1640, alice.Cash)
	assert.Equal(t, PhasePostRoll, g.Phase())

	// Doubles give the same player another roll.
	requireSuccess(t, g.EndTurn("alice"))
	assert.Equal(t, PhasePreRoll, g.Phase())
	assert.Equal(t, "alice", g.CurrentPlayerID())
	assert.Equal(t, 1, g.TurnNumber())
}

func TestBuyPropertyInsufficientFunds(t *testing.T) {
	g, seq := newTestGame(t)
	alice := mustPlayer(t, g, "alice")
	alice.Cash = 50

	seq.Push(roll(1, 2))
	requireSuccess(t, g.RollDice("alice"))
	assert.Equal(t, PhasePropertyDecision, g.Phase())

	res := g.BuyProperty("alice")
	assert.Equal(t, rules.ResultInsufficientFunds, res.Kind)
	assert.Equal(t, PhasePropertyDecision, g.Phase())

	requireSuccess(t, g.DeclineProperty("alice"))
	prop, _ := g.Board().Property(3)
	assert.False(t, prop.Owned())
	assert.Equal(t, PhasePostRoll, g.Phase())
}

func TestRent(t *testing.T) {
	tests := []struct {
		name      string
		owned     []int
		mortgaged int
		start     int
		dice      [2]int
		rent      int
	}{
		{name: "railroads", owned: []int{5, 15}, start: 0, dice: [2]int{2, 3}, rent: 50},
		{name: "monopoly doubles bare street", owned: []int{1, 3}, start: 0, dice: [2]int{1, 2}, rent: 8},
		{name: "single utility", owned: []int{12}, start: 7, dice: [2]int{2, 3}, rent: 20},
		{name: "both utilities", owned: []int{12, 28}, start: 7, dice: [2]int{2, 3}, rent: 50},
		{name: "mortgaged", owned: []int{5}, mortgaged: 5, start: 0, dice: [2]int{2, 3}, rent: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, seq := newTestGame(t)
			own(t, g, "bob", tt.owned...)
			if tt.mortgaged != 0 {
				prop, _ := g.Board().Property(tt.mortgaged)
				prop.Mortgaged = true
			}
			alice := mustPlayer(t, g, "alice")
			bob := mustPlayer(t, g, "bob")
			alice.Position = tt.start

			seq.Push(roll(tt.dice[0], tt.dice[1]))
			requireSuccess(t, g.RollDice("alice"))
			assert.Equal(t, PhasePostRoll, g.Phase())
			assert.Equal(t, 1500-tt.rent, alice.Cash)
			assert.Equal(t, 1500+tt.rent, bob.Cash)
		})
	}
}

func TestOwnPropertyChargesNothing(t *testing.T) {
	g, seq := newTestGame(t)
	own(t, g, "alice", 5)

	seq.Push(roll(2, 3))
	requireSuccess(t, g.RollDice("alice"))
	assert.Equal(t, PhasePostRoll, g.Phase())
	assert.Equal(t, 1500, mustPlayer(t, g, "alice").Cash)
}

func TestIncomeTax(t *testing.T) {
	g, seq := newTestGame(t)

	seq.Push(roll(1, 3))
	requireSuccess(t, g.RollDice("alice"))
	assert.Equal(t, 1300, mustPlayer(t, g, "alice").Cash)
	assert.Equal(t, PhasePostRoll, g.Phase())
}

func TestGoToJailSpace(t *testing.T) {
	g, seq := newTestGame(t)
	alice := mustPlayer(t, g, "alice")
	alice.Position = 26

	seq.Push(roll(2, 2))
	requireSuccess(t, g.RollDice("alice"))
	assert.Equal(t, board.PositionJail, alice.Position)
	assert.Equal(t, player.StateInJail, alice.State)
	assert.Equal(t, PhasePostRoll, g.Phase())
	assert.Equal(t, 1500, alice.Cash, "no salary on the way to jail")

	// Doubles that end in jail do not earn another roll.
	requireSuccess(t, g.EndTurn("alice"))
	assert.Equal(t, "bob", g.CurrentPlayerID())
}

func TestThreeDoublesGoToJail(t *testing.T) {
	g, seq := newTestGame(t)
	alice := mustPlayer(t, g, "alice")

	seq.Push(roll(3, 3))
	requireSuccess(t, g.RollDice("alice"))
	assert.Equal(t, 6, alice.Position)
	requireSuccess(t, g.DeclineProperty("alice"))
	requireSuccess(t, g.EndTurn("alice"))
	assert.Equal(t, "alice", g.CurrentPlayerID())

	seq.Push(roll(2, 2))
	requireSuccess(t, g.RollDice("alice"))
	assert.Equal(t, board.PositionJail, alice.Position)
	assert.Equal(t, player.StateActive, alice.State, "just visiting")
	requireSuccess(t, g.EndTurn("alice"))
	assert.Equal(t, "alice", g.CurrentPlayerID())

	seq.Push(roll(5, 5))
	requireSuccess(t, g.RollDice("alice"))
	assert.Equal(t, board.PositionJail, alice.Position)
	assert.Equal(t, player.StateInJail, alice.State)
	assert.Equal(t, 0, alice.ConsecutiveDoubles)
	assert.Equal(t, PhasePostRoll, g.Phase())

	requireSuccess(t, g.EndTurn("alice"))
	assert.Equal(t, "bob", g.CurrentPlayerID())
	assert.Equal(t, 2, g.TurnNumber())
}

func TestTurnOrderSkipsBankruptPlayers(t *testing.T) {
	g, seq := newTestGame(t, "alice", "bob", "carol")

	requireSuccess(t, g.DeclareBankruptcy("bob", ""))
	assert.Equal(t, PhasePreRoll, g.Phase())
	assert.Equal(t, "alice", g.CurrentPlayerID())

	seq.Push(roll(4, 6), roll(4, 6))
	requireSuccess(t, g.RollDice("alice"))
	requireSuccess(t, g.EndTurn("alice"))
	assert.Equal(t, "carol", g.CurrentPlayerID())

	requireSuccess(t, g.RollDice("carol"))
	requireSuccess(t, g.EndTurn("carol"))
	assert.Equal(t, "alice", g.CurrentPlayerID())
	assert.Equal(t, 3, g.TurnNumber())

	assert.Equal(t, rules.ResultInvalidPlayer, g.RollDice("bob").Kind)
}

func TestBankruptcyToCreditorEndsGame(t *testing.T) {
	g, seq := newTestGame(t)
	alice := mustPlayer(t, g, "alice")
	bob := mustPlayer(t, g, "bob")
	alice.Cash = 100
	own(t, g, "bob", 5, 15, 25, 35)
	own(t, g, "alice", 39)
	boardwalk, _ := g.Board().Property(39)
	boardwalk.Mortgaged = true

	seq.Push(roll(2, 3))
	requireSuccess(t, g.RollDice("alice"))
	require.Equal(t, PhasePayingRent, g.Phase())
	debt, owed := g.PendingDebt()
	require.True(t, owed)
	assert.Equal(t, Debt{Amount: 200, Creditor: "bob", Reason: DebtRent}, debt)

	assert.Equal(t, rules.ResultInsufficientFunds, g.PayDebt("alice").Kind)
	assert.Equal(t, rules.ResultInvalidPhase, g.EndTurn("alice").Kind)

	requireSuccess(t, g.DeclareBankruptcy("alice", "bob"))
	assert.Equal(t, PhaseGameOver, g.Phase())
	assert.Equal(t, "bob", g.Winner())
	assert.True(t, alice.IsBankrupt())
	assert.Equal(t, 0, alice.Cash)
	assert.Empty(t, alice.Properties())
	assert.Equal(t, 1600, bob.Cash)
	assert.Equal(t, "bob", boardwalk.Owner)
	assert.True(t, boardwalk.Mortgaged, "mortgage travels with the property")
	_, owed = g.PendingDebt()
	assert.False(t, owed)

	assert.Equal(t, rules.ResultInvalidPhase, g.RollDice("bob").Kind)
	assert.Equal(t, rules.ResultInvalidPhase, g.DeclareBankruptcy("bob", "").Kind)
}

func TestMortgageToPayDebt(t *testing.T) {
	g, seq := newTestGame(t)
	alice := mustPlayer(t, g, "alice")
	bob := mustPlayer(t, g, "bob")
	alice.Cash = 100
	own(t, g, "bob", 5, 15, 25, 35)
	own(t, g, "alice", 39)

	seq.Push(roll(2, 3))
	requireSuccess(t, g.RollDice("alice"))
	require.Equal(t, PhasePayingRent, g.Phase())

	requireSuccess(t, g.MortgageProperty("alice", 39))
	assert.Equal(t, 300, alice.Cash)
	assert.Equal(t, rules.ResultInvalidPhase, g.UnmortgageProperty("alice", 39).Kind)

	requireSuccess(t, g.PayDebt("alice"))
	assert.Equal(t, 100, alice.Cash)
	assert.Equal(t, 1700, bob.Cash)
	assert.Equal(t, PhasePostRoll, g.Phase())

	// $200 mortgage plus 10% interest.
	assert.Equal(t, rules.ResultInsufficientFunds, g.UnmortgageProperty("alice", 39).Kind)
	alice.Cash = 300
	requireSuccess(t, g.UnmortgageProperty("alice", 39))
	assert.Equal(t, 80, alice.Cash)
}

func TestBankruptcyToBankReturnsAssets(t *testing.T) {
	g, _ := newTestGame(t, "alice", "bob", "carol")
	alice := mustPlayer(t, g, "alice")
	own(t, g, "alice", 1, 3, 5)
	develop(t, g, 1, 2)
	develop(t, g, 3, 2)
	rr, _ := g.Board().Property(5)
	rr.Mortgaged = true

	var chance []int
	for _, id := range g.cards.Catalog().IDs(board.DeckChance) {
		if id != 8 {
			chance = append(chance, id)
		}
	}
	require.NoError(t, g.cards.Restore(board.DeckChance, chance, nil))
	alice.AddEscapeCard(8)

	requireSuccess(t, g.DeclareBankruptcy("alice", ""))
	assert.Equal(t, PhasePreRoll, g.Phase())
	assert.Equal(t, "bob", g.CurrentPlayerID())

	for _, pos := range []int{1, 3, 5} {
		prop, _ := g.Board().Property(pos)
		assert.False(t, prop.Owned(), "position %d", pos)
		assert.Zero(t, prop.Houses)
		assert.False(t, prop.Mortgaged)
	}
	assert.Equal(t, 32, g.Bank().HousesAvailable())
	requireBankInvariant(t, g)

	deck, _ := g.cards.Deck(board.DeckChance)
	assert.Equal(t, 16, deck.Remaining()+deck.Discarded())
	assert.Zero(t, alice.EscapeCardCount())
}

func TestBankruptcyRejectsBadCreditor(t *testing.T) {
	g, _ := newTestGame(t)

	assert.Equal(t, rules.ResultInvalidPlayer, g.DeclareBankruptcy("alice", "alice").Kind)
	assert.Equal(t, rules.ResultInvalidPlayer, g.DeclareBankruptcy("alice", "mallory").Kind)
	assert.Equal(t, rules.ResultInvalidPlayer, g.DeclareBankruptcy("mallory", "").Kind)
}

func TestBankruptcyCreditorFollowsDebt(t *testing.T) {
	g, seq := newTestGame(t, "alice", "bob", "carol")
	alice := mustPlayer(t, g, "alice")
	bob := mustPlayer(t, g, "bob")
	carol := mustPlayer(t, g, "carol")
	own(t, g, "bob", 5, 15, 25, 35)
	own(t, g, "carol", 39)
	alice.Cash = 100

	// Off turn, a player can only resign to the bank.
	assert.Equal(t, rules.ResultInvalidPlayer, g.DeclareBankruptcy("carol", "bob").Kind)
	assert.False(t, carol.IsBankrupt())

	seq.Push(roll(2, 3))
	requireSuccess(t, g.RollDice("alice"))
	require.Equal(t, PhasePayingRent, g.Phase())

	// The rent is owed to bob and cannot be redirected.
	assert.Equal(t, rules.ResultInvalidPlayer, g.DeclareBankruptcy("alice", "carol").Kind)
	assert.Equal(t, rules.ResultInvalidPlayer, g.DeclareBankruptcy("alice", "").Kind)
	assert.False(t, alice.IsBankrupt())
	assert.Equal(t, 1500, carol.Cash)

	requireSuccess(t, g.DeclareBankruptcy("alice", "bob"))
	assert.Equal(t, 1600, bob.Cash)
	assert.Equal(t, "bob", g.CurrentPlayerID())
}

func TestRemovePlayerPaysTheCreditor(t *testing.T) {
	g, seq := newTestGame(t, "alice", "bob", "carol")
	own(t, g, "bob", 5, 15, 25, 35)
	mustPlayer(t, g, "alice").Cash = 100

	seq.Push(roll(2, 3))
	requireSuccess(t, g.RollDice("alice"))
	require.Equal(t, PhasePayingRent, g.Phase())

	requireSuccess(t, g.RemovePlayer("alice"))
	assert.Equal(t, 1600, mustPlayer(t, g, "bob").Cash)
}

func TestOffTurnBankruptcyDuringDecision(t *testing.T) {
	g, seq := newTestGame(t, "alice", "bob", "carol")
	own(t, g, "bob", 39)

	seq.Push(roll(1, 2))
	requireSuccess(t, g.RollDice("alice"))
	require.Equal(t, PhasePropertyDecision, g.Phase())

	assert.Equal(t, rules.ResultInvalidPlayer, g.DeclareBankruptcy("bob", "carol").Kind)
	assert.Equal(t, 1500, mustPlayer(t, g, "carol").Cash)

	requireSuccess(t, g.DeclareBankruptcy("bob", ""))
	boardwalk, _ := g.Board().Property(39)
	assert.False(t, boardwalk.Owned())
	assert.Equal(t, PhasePropertyDecision, g.Phase(), "alice's decision is untouched")
	assert.Equal(t, "alice", g.CurrentPlayerID())
}

func TestEvenBuildingThroughGame(t *testing.T) {
	g, _ := newTestGame(t)
	alice := mustPlayer(t, g, "alice")
	own(t, g, "alice", 1, 3)

	requireSuccess(t, g.BuildHouse("alice", 1))
	assert.Equal(t, rules.ResultUnevenBuilding, g.BuildHouse("alice", 1).Kind)
	requireSuccess(t, g.BuildHouse("alice", 3))
	assert.Equal(t, 1400, alice.Cash)
	assert.Equal(t, 30, g.Bank().HousesAvailable())
	requireBankInvariant(t, g)

	assert.Equal(t, rules.ResultNotYourTurn, g.BuildHouse("bob", 1).Kind)
	assert.Equal(t, rules.ResultHasBuildings, g.MortgageProperty("alice", 1).Kind)

	requireSuccess(t, g.BuildHouse("alice", 1))
	assert.Equal(t, rules.ResultUnevenBuilding, g.SellBuilding("alice", 3).Kind)
	requireSuccess(t, g.SellBuilding("alice", 1))
	assert.Equal(t, 1375, alice.Cash)
	assert.Equal(t, 30, g.Bank().HousesAvailable())
	requireBankInvariant(t, g)
}

func TestHotelCycle(t *testing.T) {
	g, _ := newTestGame(t)
	alice := mustPlayer(t, g, "alice")
	own(t, g, "alice", 1, 3)
	develop(t, g, 1, 4)
	develop(t, g, 3, 4)

	requireSuccess(t, g.BuildHotel("alice", 1))
	prop, _ := g.Board().Property(1)
	assert.True(t, prop.Hotel)
	assert.Zero(t, prop.Houses)
	assert.Equal(t, 1450, alice.Cash)
	assert.Equal(t, 28, g.Bank().HousesAvailable())
	assert.Equal(t, 11, g.Bank().HotelsAvailable())
	assert.Equal(t, rules.ResultMaxDevelopment, g.BuildHouse("alice", 1).Kind)
	requireBankInvariant(t, g)

	requireSuccess(t, g.SellBuilding("alice", 1))
	assert.False(t, prop.Hotel)
	assert.Equal(t, 4, prop.Houses)
	assert.Equal(t, 24, g.Bank().HousesAvailable())
	assert.Equal(t, 12, g.Bank().HotelsAvailable())
	assert.Equal(t, 1475, alice.Cash)
	requireBankInvariant(t, g)
}

func TestHotelSaleNeedsHousesInBank(t *testing.T) {
	g, _ := newTestGame(t)
	own(t, g, "alice", 1, 3)
	develop(t, g, 1, 4)
	develop(t, g, 3, 4)
	requireSuccess(t, g.BuildHotel("alice", 1))
	require.True(t, g.bank.TakeHouses(g.bank.HousesAvailable()-3))

	assert.Equal(t, rules.ResultNoBuildingsAvailable, g.SellBuilding("alice", 1).Kind)
}

func TestEventsPublished(t *testing.T) {
	g, seq := newTestGame(t)
	var seen []rules.EventType
	g.Events().Subscribe(func(evt rules.Event) {
		seen = append(seen, evt.Type)
	})

	seq.Push(roll(1, 2))
	requireSuccess(t, g.RollDice("alice"))
	requireSuccess(t, g.BuyProperty("alice"))
	requireSuccess(t, g.EndTurn("alice"))

	assert.Equal(t, []rules.EventType{
		rules.EventDiceRolled,
		rules.EventPlayerMoved,
		rules.EventPhaseChanged,
		rules.EventPropertyBought,
		rules.EventPhaseChanged,
		rules.EventTurnEnded,
		rules.EventPhaseChanged,
	}, seen)
}

func TestRemovePlayerDuringPlay(t *testing.T) {
	g, _ := newTestGame(t, "alice", "bob", "carol")

	requireSuccess(t, g.RemovePlayer("alice"))
	assert.True(t, mustPlayer(t, g, "alice").IsBankrupt())
	assert.Equal(t, "bob", g.CurrentPlayerID())

	requireSuccess(t, g.RemovePlayer("carol"))
	assert.Equal(t, PhaseGameOver, g.Phase())
	assert.Equal(t, "bob", g.Winner())
	assert.Equal(t, rules.ResultInvalidPhase, g.RemovePlayer("bob").Kind)
}

func TestDiceHistoryIsBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DiceHistory = 2
	g, err := New("g", "history", cfg, 7, zap.NewNop())
	require.NoError(t, err)
	requireSuccess(t, g.AddPlayer("alice", ""))
	requireSuccess(t, g.AddPlayer("bob", ""))
	requireSuccess(t, g.Start())
	seq := dice.NewSequence(roll(4, 6), roll(1, 2), roll(2, 6))
	g.SetRoller(seq)

	for _, id := range []string{"alice", "bob", "alice"} {
		requireSuccess(t, g.RollDice(id))
		if g.Phase() == PhasePropertyDecision {
			requireSuccess(t, g.DeclineProperty(id))
		}
		requireSuccess(t, g.EndTurn(id))
	}

	history := g.DiceHistory()
	require.Len(t, history, 2)
	assert.Equal(t, roll(1, 2), history[0])
	assert.Equal(t, roll(2, 6), history[1])
	assert.Equal(t, roll(2, 6), g.LastDice())
}
