package game

import (
	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/dice"
	"github.com/landlord/landlord-server/internal/game/rules"
)

// View is the broadcast-ready state sent to every participant.
type View struct {
	GameID          string            `json:"game_id"`
	Name            string            `json:"name"`
	Phase           Phase             `json:"phase"`
	CurrentPlayer   string            `json:"current_player,omitempty"`
	Turn            int               `json:"turn"`
	LastDice        *dice.Result      `json:"last_dice,omitempty"`
	DiceHistory     []dice.Result     `json:"dice_history,omitempty"`
	Winner          string            `json:"winner,omitempty"`
	Players         []PlayerView      `json:"players"`
	Properties      []PropertyView    `json:"properties"`
	HousesAvailable int               `json:"houses_available"`
	HotelsAvailable int               `json:"hotels_available"`
	Decks           map[string]int    `json:"decks"`
	PendingDebt     *Debt             `json:"pending_debt,omitempty"`
	PendingTrade    *rules.TradeOffer `json:"pending_trade,omitempty"`
}

// PlayerView is the public state of a participant.
type PlayerView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Cash        int    `json:"cash"`
	Position    int    `json:"position"`
	State       string `json:"state"`
	InJail      bool   `json:"in_jail"`
	JailTurns   int    `json:"jail_turns"`
	EscapeCards int    `json:"escape_cards"`
	Properties  []int  `json:"properties"`
	NetWorth    int    `json:"net_worth"`
}

// PropertyView is the mutable state of an owned property.
type PropertyView struct {
	Position  int    `json:"position"`
	Name      string `json:"name"`
	Owner     string `json:"owner"`
	Houses    int    `json:"houses"`
	Hotel     bool   `json:"hotel"`
	Mortgaged bool   `json:"mortgaged"`
}

// View builds the current public state.
func (g *Game) View() *View {
	v := &View{
		GameID:          g.id,
		Name:            g.name,
		Phase:           g.phase,
		CurrentPlayer:   g.CurrentPlayerID(),
		Turn:            g.TurnNumber(),
		DiceHistory:     g.DiceHistory(),
		Winner:          g.winner,
		HousesAvailable: g.bank.HousesAvailable(),
		HotelsAvailable: g.bank.HotelsAvailable(),
		Decks:           make(map[string]int, 2),
	}
	if len(g.diceHistory) > 0 {
		last := g.lastDice
		v.LastDice = &last
	}
	for _, pl := range g.Players() {
		v.Players = append(v.Players, PlayerView{
			ID:          pl.ID,
			Name:        pl.Name,
			Cash:        pl.Cash,
			Position:    pl.Position,
			State:       pl.State.String(),
			InJail:      pl.InJail(),
			JailTurns:   pl.JailTurns,
			EscapeCards: pl.EscapeCardCount(),
			Properties:  pl.Properties(),
			NetWorth:    g.engine.TotalAssets(pl),
		})
	}
	for _, prop := range g.board.Properties() {
		if !prop.Owned() {
			continue
		}
		v.Properties = append(v.Properties, PropertyView{
			Position:  prop.Position,
			Name:      prop.Name,
			Owner:     prop.Owner,
			Houses:    prop.Houses,
			Hotel:     prop.Hotel,
			Mortgaged: prop.Mortgaged,
		})
	}
	for _, name := range []board.Deck{board.DeckChance, board.DeckCommunityChest} {
		if d, exists := g.cards.Deck(name); exists {
			v.Decks[string(name)] = d.Remaining()
		}
	}
	if d, owed := g.PendingDebt(); owed {
		v.PendingDebt = &d
	}
	if t, pending := g.PendingTrade(); pending {
		v.PendingTrade = &t
	}
	return v
}
