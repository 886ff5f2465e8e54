package game

import (
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/landlord/landlord-server/internal/game/rules"
)

func (g *Game) checkJailed(playerID string) (*player.Player, Result, bool) {
	pl, res, allowed := g.checkTurn(playerID, PhasePreRoll)
	if !allowed {
		return nil, res, false
	}
	if !pl.InJail() {
		return nil, reject(rules.ResultNotInJail, "%s is not in jail", pl.Name), false
	}
	return pl, Result{}, true
}

// PayBail releases the current player before rolling. The turn continues.
func (g *Game) PayBail(playerID string) Result {
	pl, res, allowed := g.checkJailed(playerID)
	if !allowed {
		return res
	}
	if !pl.RemoveCash(g.cfg.BailCost) {
		return reject(rules.ResultInsufficientFunds, "bail is $%d, you have $%d", g.cfg.BailCost, pl.Cash)
	}
	g.publish(g.eventAt(rules.EventBailPaid, pl.ID, pl.Position, g.cfg.BailCost))
	g.release(pl)
	return ok("bail paid", map[string]interface{}{"cash": pl.Cash})
}

// UseJailCard spends a retained escape card. The card returns to its deck.
// Before rolling it releases the player; against bail forced by the last
// jail turn it settles the debt and the player moves by that roll.
func (g *Game) UseJailCard(playerID string) Result {
	pl, res, allowed := g.checkTurn(playerID, PhasePreRoll, PhasePayingRent)
	if !allowed {
		return res
	}
	bailDue := g.phase == PhasePayingRent
	if bailDue && (g.debt == nil || g.debt.Reason != DebtBail) {
		return reject(rules.ResultInvalidPhase, "an escape card only settles bail")
	}
	if !pl.InJail() {
		return reject(rules.ResultNotInJail, "%s is not in jail", pl.Name)
	}
	id, held := pl.TakeEscapeCard()
	if !held {
		return reject(rules.ResultNoJailCard, "%s holds no escape card", pl.Name)
	}
	if err := g.cards.Return(id); err != nil {
		g.setFault(err)
	}

	evt := g.eventAt(rules.EventJailCardUsed, pl.ID, pl.Position, 0)
	g.publish(evt)
	if bailDue {
		g.debt = nil
		g.leaveJailByRoll(pl)
	} else {
		g.release(pl)
	}
	return ok("escape card used", map[string]interface{}{"escape_cards": pl.EscapeCardCount()})
}

// leaveJailByRoll releases a player whose bail was settled after the last
// jail roll and moves them by that roll.
func (g *Game) leaveJailByRoll(pl *player.Player) {
	g.release(pl)
	g.moveBy(pl, g.lastDice.Total())
	g.resolveLanding(pl, g.lastDice.Total())
}
