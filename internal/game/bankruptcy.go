package game

import (
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/landlord/landlord-server/internal/game/rules"
	"go.uber.org/zap"
)

// DeclareBankruptcy takes playerID out of the game. With a creditor, cash,
// properties (mortgages and buildings intact) and escape cards go to the
// creditor. Without one, properties return to the bank unmortgaged, their
// buildings return to the bank pool, escape cards return to their decks and
// the remaining cash is dropped.
//
// The creditor must be the one the rules dictate: the holder of the current
// player's pending debt, or the bank for everyone else. A player who is not
// on turn may only resign to the bank.
func (g *Game) DeclareBankruptcy(playerID, creditorID string) Result {
	if !g.phase.InPlay() {
		return reject(rules.ResultInvalidPhase, "game is %s", g.phase)
	}
	pl, exists := g.players[playerID]
	if !exists {
		return reject(rules.ResultInvalidPlayer, "unknown player %q", playerID)
	}
	if pl.IsBankrupt() {
		return reject(rules.ResultInvalidPlayer, "%s is already bankrupt", pl.Name)
	}
	var creditor *player.Player
	if creditorID != "" {
		c, exists := g.players[creditorID]
		if !exists || c.ID == pl.ID || c.IsBankrupt() {
			return reject(rules.ResultInvalidPlayer, "invalid creditor %q", creditorID)
		}
		creditor = c
	}

	wasCurrent := g.CurrentPlayerID() == pl.ID
	if owed := g.bankruptcyCreditor(pl.ID); creditorID != owed {
		if owed == "" {
			return reject(rules.ResultInvalidPlayer, "%s owes no player and can only go bankrupt to the bank", pl.Name)
		}
		return reject(rules.ResultInvalidPlayer, "%s owes %s", pl.Name, owed)
	}
	if creditor != nil {
		g.bankruptToPlayer(pl, creditor)
	} else {
		g.bankruptToBank(pl)
	}
	pl.ClearProperties()
	pl.Bankrupt()

	if g.debt != nil && wasCurrent {
		g.debt = nil
	}
	if g.trade != nil && (g.trade.From == pl.ID || g.trade.To == pl.ID) {
		g.cancelTrade("participant bankrupt")
	}

	evt := rules.NewEvent(rules.EventBankrupt, g.id, pl.ID)
	evt.TargetID = creditorID
	g.publish(evt)

	if g.logger != nil {
		g.logger.Info("player bankrupt",
			zap.String("game_id", g.id),
			zap.String("player_id", pl.ID),
			zap.String("creditor", creditorID),
		)
	}

	if !g.checkGameOver() && wasCurrent {
		g.advanceTurn()
	}
	return ok(pl.Name+" is bankrupt", map[string]interface{}{
		"winner": g.winner,
		"phase":  string(g.phase),
	})
}

// bankruptcyCreditor is the player a bankrupt playerID's assets go to, or
// "" for the bank. Only the current player can owe a player.
func (g *Game) bankruptcyCreditor(playerID string) string {
	if g.CurrentPlayerID() != playerID || g.debt == nil || !g.eligible(g.debt.Creditor) {
		return ""
	}
	return g.debt.Creditor
}

func (g *Game) bankruptToPlayer(pl, creditor *player.Player) {
	creditor.AddCash(pl.Cash)
	for _, pos := range pl.Properties() {
		g.transferProperty(pos, pl, creditor)
	}
	moveEscapeCards(pl, creditor, pl.EscapeCardCount())
}

func (g *Game) bankruptToBank(pl *player.Player) {
	for _, pos := range pl.Properties() {
		prop, exists := g.board.Property(pos)
		if !exists {
			continue
		}
		g.bank.ReturnHouses(prop.Houses)
		if prop.Hotel {
			g.bank.ReturnHotel()
		}
		prop.Owner = ""
		prop.Houses = 0
		prop.Hotel = false
		prop.Mortgaged = false
	}
	for {
		id, held := pl.TakeEscapeCard()
		if !held {
			break
		}
		if err := g.cards.Return(id); err != nil {
			g.setFault(err)
		}
	}
}
