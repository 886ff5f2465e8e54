package game

import (
	"testing"

	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/dice"
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestGame starts a game with the given players seated in order. Dice come
// from the returned sequence; push results before each roll.
func newTestGame(t *testing.T, ids ...string) (*Game, *dice.Sequence) {
	t.Helper()
	if len(ids) == 0 {
		ids = []string{"alice", "bob"}
	}
	g, err := New("game-1", "test", DefaultConfig(), 42, zap.NewNop())
	require.NoError(t, err)
	for _, id := range ids {
		res := g.AddPlayer(id, id)
		require.True(t, res.Success, res.Message)
	}
	seq := dice.NewSequence()
	g.SetRoller(seq)
	res := g.Start()
	require.True(t, res.Success, res.Message)
	return g, seq
}

func roll(d1, d2 int) dice.Result {
	return dice.Result{Die1: d1, Die2: d2}
}

func mustPlayer(t *testing.T, g *Game, id string) *player.Player {
	t.Helper()
	pl, exists := g.Player(id)
	require.True(t, exists, "player %s", id)
	return pl
}

// own hands positions to id without charging.
func own(t *testing.T, g *Game, id string, positions ...int) {
	t.Helper()
	pl := mustPlayer(t, g, id)
	for _, pos := range positions {
		prop, exists := g.board.Property(pos)
		require.True(t, exists, "position %d", pos)
		prop.Owner = id
		pl.AddProperty(pos)
	}
}

// develop places houses on a property, drawing them from the bank.
func develop(t *testing.T, g *Game, pos, houses int) {
	t.Helper()
	prop, exists := g.board.Property(pos)
	require.True(t, exists)
	require.True(t, g.bank.TakeHouses(houses))
	prop.Houses += houses
}

// stackDeck puts ids on top of a deck; the rest of the deck goes to discard.
func stackDeck(t *testing.T, g *Game, deck board.Deck, ids ...int) {
	t.Helper()
	top := make(map[int]bool, len(ids))
	for _, id := range ids {
		top[id] = true
	}
	var rest []int
	for _, id := range g.cards.Catalog().IDs(deck) {
		if !top[id] {
			rest = append(rest, id)
		}
	}
	require.NoError(t, g.cards.Restore(deck, ids, rest))
}

func requireSuccess(t *testing.T, res Result) {
	t.Helper()
	require.True(t, res.Success, "%s: %s", res.Kind, res.Message)
}

// requireBankInvariant checks that every house and hotel is either on the
// board or in the bank.
func requireBankInvariant(t *testing.T, g *Game) {
	t.Helper()
	houses, hotels := g.board.BuildingCounts()
	require.Equal(t, g.cfg.TotalHouses, houses+g.bank.HousesAvailable(), "houses")
	require.Equal(t, g.cfg.TotalHotels, hotels+g.bank.HotelsAvailable(), "hotels")
}
