package game

import (
	"github.com/landlord/landlord-server/internal/game/rules"
)

// ActionType names a discrete player intent.
type ActionType string

const (
	ActionJoin              ActionType = "join_game"
	ActionLeave             ActionType = "leave_game"
	ActionStart             ActionType = "start_game"
	ActionRollDice          ActionType = "roll_dice"
	ActionBuyProperty       ActionType = "buy_property"
	ActionDeclineProperty   ActionType = "decline_property"
	ActionPayBail           ActionType = "pay_bail"
	ActionUseJailCard       ActionType = "use_jail_card"
	ActionBuildHouse        ActionType = "build_house"
	ActionBuildHotel        ActionType = "build_hotel"
	ActionSellBuilding      ActionType = "sell_building"
	ActionMortgage          ActionType = "mortgage_property"
	ActionUnmortgage        ActionType = "unmortgage_property"
	ActionProposeTrade      ActionType = "propose_trade"
	ActionAcceptTrade       ActionType = "accept_trade"
	ActionRejectTrade       ActionType = "reject_trade"
	ActionCancelTrade       ActionType = "cancel_trade"
	ActionPayDebt           ActionType = "pay_debt"
	ActionDeclareBankruptcy ActionType = "declare_bankruptcy"
	ActionEndTurn           ActionType = "end_turn"
)

// Action is an already-authenticated intent from the transport layer.
type Action struct {
	Type       ActionType        `json:"type"`
	PlayerID   string            `json:"player_id"`
	Name       string            `json:"name,omitempty"`
	Position   int               `json:"position,omitempty"`
	CreditorID string            `json:"creditor_id,omitempty"`
	Trade      *rules.TradeOffer `json:"trade,omitempty"`
}

type actionHandler func(g *Game, a Action) Result

var actionHandlers = map[ActionType]actionHandler{
	ActionJoin:            func(g *Game, a Action) Result { return g.AddPlayer(a.PlayerID, a.Name) },
	ActionLeave:           func(g *Game, a Action) Result { return g.RemovePlayer(a.PlayerID) },
	ActionStart:           func(g *Game, a Action) Result { return g.startBy(a.PlayerID) },
	ActionRollDice:        func(g *Game, a Action) Result { return g.RollDice(a.PlayerID) },
	ActionBuyProperty:     func(g *Game, a Action) Result { return g.BuyProperty(a.PlayerID) },
	ActionDeclineProperty: func(g *Game, a Action) Result { return g.DeclineProperty(a.PlayerID) },
	ActionPayBail:         func(g *Game, a Action) Result { return g.PayBail(a.PlayerID) },
	ActionUseJailCard:     func(g *Game, a Action) Result { return g.UseJailCard(a.PlayerID) },
	ActionBuildHouse:      func(g *Game, a Action) Result { return g.BuildHouse(a.PlayerID, a.Position) },
	ActionBuildHotel:      func(g *Game, a Action) Result { return g.BuildHotel(a.PlayerID, a.Position) },
	ActionSellBuilding:    func(g *Game, a Action) Result { return g.SellBuilding(a.PlayerID, a.Position) },
	ActionMortgage:        func(g *Game, a Action) Result { return g.MortgageProperty(a.PlayerID, a.Position) },
	ActionUnmortgage:      func(g *Game, a Action) Result { return g.UnmortgageProperty(a.PlayerID, a.Position) },
	ActionProposeTrade: func(g *Game, a Action) Result {
		if a.Trade == nil {
			return reject(rules.ResultInvalidTrade, "trade terms are required")
		}
		return g.ProposeTrade(a.PlayerID, *a.Trade)
	},
	ActionAcceptTrade:       func(g *Game, a Action) Result { return g.AcceptTrade(a.PlayerID) },
	ActionRejectTrade:       func(g *Game, a Action) Result { return g.RejectTrade(a.PlayerID) },
	ActionCancelTrade:       func(g *Game, a Action) Result { return g.CancelTrade(a.PlayerID) },
	ActionPayDebt:           func(g *Game, a Action) Result { return g.PayDebt(a.PlayerID) },
	ActionDeclareBankruptcy: func(g *Game, a Action) Result { return g.DeclareBankruptcy(a.PlayerID, a.CreditorID) },
	ActionEndTurn:           func(g *Game, a Action) Result { return g.EndTurn(a.PlayerID) },
}

// Apply dispatches an action by name.
func (g *Game) Apply(a Action) Result {
	handler, exists := actionHandlers[a.Type]
	if !exists {
		return reject(rules.ResultUnknownAction, "unknown action %q", a.Type)
	}
	return handler(g, a)
}

// startBy lets any seated player start the game.
func (g *Game) startBy(playerID string) Result {
	if _, seated := g.players[playerID]; !seated {
		return reject(rules.ResultInvalidPlayer, "only seated players can start the game")
	}
	return g.Start()
}
