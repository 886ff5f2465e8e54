package game

import (
	"fmt"

	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/rules"
	"go.uber.org/zap"
)

// Phases in which the current player may raise cash.
var liquidationPhases = []Phase{PhasePreRoll, PhasePostRoll, PhasePropertyDecision, PhasePayingRent}

// BuyProperty buys the unowned space the current player landed on.
func (g *Game) BuyProperty(playerID string) Result {
	pl, res, allowed := g.checkTurn(playerID, PhasePropertyDecision)
	if !allowed {
		return res
	}
	prop, exists := g.board.Property(pl.Position)
	if !exists || prop.Owned() {
		return reject(rules.ResultInvalidProperty, "nothing to buy at position %d", pl.Position)
	}
	if !pl.RemoveCash(prop.Price) {
		return reject(rules.ResultInsufficientFunds, "%s costs $%d, you have $%d", prop.Name, prop.Price, pl.Cash)
	}

	prop.Owner = pl.ID
	pl.AddProperty(prop.Position)
	g.publish(g.eventAt(rules.EventPropertyBought, pl.ID, prop.Position, prop.Price))
	g.setPhase(PhasePostRoll)

	if g.logger != nil {
		g.logger.Debug("property bought",
			zap.String("game_id", g.id),
			zap.String("player_id", pl.ID),
			zap.Int("position", prop.Position),
			zap.Int("price", prop.Price),
		)
	}
	return ok(fmt.Sprintf("bought %s for $%d", prop.Name, prop.Price), map[string]interface{}{
		"position": prop.Position,
		"cash":     pl.Cash,
	})
}

// DeclineProperty passes on the purchase.
func (g *Game) DeclineProperty(playerID string) Result {
	pl, res, allowed := g.checkTurn(playerID, PhasePropertyDecision)
	if !allowed {
		return res
	}
	g.publish(g.eventAt(rules.EventPropertyDeclined, pl.ID, pl.Position, 0))
	g.setPhase(PhasePostRoll)
	return ok("declined", nil)
}

// BuildHouse adds a house at position.
func (g *Game) BuildHouse(playerID string, position int) Result {
	pl, res, allowed := g.checkTurn(playerID, PhasePreRoll, PhasePostRoll)
	if !allowed {
		return res
	}
	if v := g.engine.ValidateBuildHouse(pl, position); !v.Valid {
		return fromValidation(v)
	}

	prop, _ := g.board.Property(position)
	g.bank.TakeHouse()
	pl.RemoveCash(prop.HouseCost)
	prop.Houses++

	g.publish(g.eventAt(rules.EventHouseBuilt, pl.ID, position, prop.HouseCost))
	return ok(fmt.Sprintf("built house %d on %s", prop.Houses, prop.Name), developmentPayload(prop, pl.Cash))
}

// BuildHotel replaces four houses at position with a hotel. The houses go
// back to the bank.
func (g *Game) BuildHotel(playerID string, position int) Result {
	pl, res, allowed := g.checkTurn(playerID, PhasePreRoll, PhasePostRoll)
	if !allowed {
		return res
	}
	if v := g.engine.ValidateBuildHotel(pl, position); !v.Valid {
		return fromValidation(v)
	}

	prop, _ := g.board.Property(position)
	g.bank.TakeHotel()
	g.bank.ReturnHouses(prop.Houses)
	pl.RemoveCash(prop.HouseCost)
	prop.Houses = 0
	prop.Hotel = true

	g.publish(g.eventAt(rules.EventHotelBuilt, pl.ID, position, prop.HouseCost))
	return ok("built hotel on "+prop.Name, developmentPayload(prop, pl.Cash))
}

// SellBuilding sells one level of development at position for half its cost.
// A hotel breaks back down into four houses.
func (g *Game) SellBuilding(playerID string, position int) Result {
	pl, res, allowed := g.checkTurn(playerID, liquidationPhases...)
	if !allowed {
		return res
	}
	if v := g.engine.ValidateSellBuilding(pl, position); !v.Valid {
		return fromValidation(v)
	}

	prop, _ := g.board.Property(position)
	if prop.Hotel {
		g.bank.TakeHouses(board.MaxHouses)
		g.bank.ReturnHotel()
		prop.Hotel = false
		prop.Houses = board.MaxHouses
	} else {
		prop.Houses--
		g.bank.ReturnHouses(1)
	}
	refund := prop.HouseCost / 2
	pl.AddCash(refund)

	g.publish(g.eventAt(rules.EventBuildingSold, pl.ID, position, refund))
	return ok(fmt.Sprintf("sold a building on %s for $%d", prop.Name, refund), developmentPayload(prop, pl.Cash))
}

// MortgageProperty mortgages position for half its price.
func (g *Game) MortgageProperty(playerID string, position int) Result {
	pl, res, allowed := g.checkTurn(playerID, liquidationPhases...)
	if !allowed {
		return res
	}
	if v := g.engine.ValidateMortgage(pl, position); !v.Valid {
		return fromValidation(v)
	}

	prop, _ := g.board.Property(position)
	value := prop.MortgageValue()
	prop.Mortgaged = true
	pl.AddCash(value)

	g.publish(g.eventAt(rules.EventPropertyMortgaged, pl.ID, position, value))
	return ok(fmt.Sprintf("mortgaged %s for $%d", prop.Name, value), map[string]interface{}{
		"position": position,
		"cash":     pl.Cash,
	})
}

// UnmortgageProperty lifts the mortgage on position, paying interest.
func (g *Game) UnmortgageProperty(playerID string, position int) Result {
	pl, res, allowed := g.checkTurn(playerID, PhasePreRoll, PhasePostRoll)
	if !allowed {
		return res
	}
	if v := g.engine.ValidateUnmortgage(pl, position); !v.Valid {
		return fromValidation(v)
	}

	prop, _ := g.board.Property(position)
	cost := g.engine.UnmortgageCost(prop)
	pl.RemoveCash(cost)
	prop.Mortgaged = false

	g.publish(g.eventAt(rules.EventPropertyRedeemed, pl.ID, position, cost))
	return ok(fmt.Sprintf("lifted the mortgage on %s for $%d", prop.Name, cost), map[string]interface{}{
		"position": position,
		"cash":     pl.Cash,
	})
}

func developmentPayload(prop *board.Property, cash int) map[string]interface{} {
	return map[string]interface{}{
		"position": prop.Position,
		"houses":   prop.Houses,
		"hotel":    prop.Hotel,
		"cash":     cash,
	}
}
