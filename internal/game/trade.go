package game

import (
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/landlord/landlord-server/internal/game/rules"
	"go.uber.org/zap"
)

// ProposeTrade opens an offer from the current player. Only one offer may be
// pending per game.
func (g *Game) ProposeTrade(playerID string, offer rules.TradeOffer) Result {
	pl, res, allowed := g.checkTurn(playerID, PhasePreRoll, PhasePostRoll)
	if !allowed {
		return res
	}
	if g.trade != nil {
		return reject(rules.ResultInvalidTrade, "a trade is already pending")
	}
	offer = offer.Clone()
	offer.From = pl.ID
	if v := g.engine.ValidateTrade(pl, g.players[offer.To], offer); !v.Valid {
		return fromValidation(v)
	}

	g.trade = &offer
	evt := rules.NewEvent(rules.EventTradeProposed, g.id, pl.ID)
	evt.TargetID = offer.To
	g.publish(evt)
	return ok("trade proposed", map[string]interface{}{"trade": offer})
}

func (g *Game) checkTradeParty(playerID string, proposer bool) (rules.TradeOffer, Result, bool) {
	if !g.phase.InPlay() {
		return rules.TradeOffer{}, reject(rules.ResultInvalidPhase, "game is %s", g.phase), false
	}
	if g.trade == nil {
		return rules.TradeOffer{}, reject(rules.ResultInvalidTrade, "no trade is pending"), false
	}
	want := g.trade.To
	if proposer {
		want = g.trade.From
	}
	if playerID != want {
		return rules.TradeOffer{}, reject(rules.ResultInvalidPlayer, "%q cannot answer this trade", playerID), false
	}
	return *g.trade, Result{}, true
}

// AcceptTrade re-validates the pending offer and swaps every asset at once.
func (g *Game) AcceptTrade(playerID string) Result {
	offer, res, allowed := g.checkTradeParty(playerID, false)
	if !allowed {
		return res
	}
	from, to := g.players[offer.From], g.players[offer.To]
	if v := g.engine.ValidateTrade(from, to, offer); !v.Valid {
		return fromValidation(v)
	}

	from.RemoveCash(offer.OfferedCash)
	to.AddCash(offer.OfferedCash)
	to.RemoveCash(offer.RequestedCash)
	from.AddCash(offer.RequestedCash)
	for _, pos := range offer.OfferedProperties {
		g.transferProperty(pos, from, to)
	}
	for _, pos := range offer.RequestedProperties {
		g.transferProperty(pos, to, from)
	}
	moveEscapeCards(from, to, offer.OfferedEscapeCards)
	moveEscapeCards(to, from, offer.RequestedEscapeCards)

	g.trade = nil
	evt := rules.NewEvent(rules.EventTradeAccepted, g.id, to.ID)
	evt.TargetID = from.ID
	g.publish(evt)

	if g.logger != nil {
		g.logger.Info("trade completed",
			zap.String("game_id", g.id),
			zap.String("from", from.ID),
			zap.String("to", to.ID),
		)
	}
	return ok("trade accepted", map[string]interface{}{"trade": offer})
}

// RejectTrade declines the pending offer.
func (g *Game) RejectTrade(playerID string) Result {
	offer, res, allowed := g.checkTradeParty(playerID, false)
	if !allowed {
		return res
	}
	g.trade = nil
	evt := rules.NewEvent(rules.EventTradeRejected, g.id, playerID)
	evt.TargetID = offer.From
	g.publish(evt)
	return ok("trade rejected", nil)
}

// CancelTrade withdraws the pending offer.
func (g *Game) CancelTrade(playerID string) Result {
	if _, res, allowed := g.checkTradeParty(playerID, true); !allowed {
		return res
	}
	g.cancelTrade("withdrawn")
	return ok("trade canceled", nil)
}

func (g *Game) cancelTrade(reason string) {
	if g.trade == nil {
		return
	}
	evt := rules.NewEvent(rules.EventTradeCanceled, g.id, g.trade.From)
	evt.TargetID = g.trade.To
	evt.Metadata["reason"] = reason
	g.trade = nil
	g.publish(evt)
}

// transferProperty moves ownership; mortgage state and buildings travel with it.
func (g *Game) transferProperty(pos int, from, to *player.Player) {
	prop, exists := g.board.Property(pos)
	if !exists {
		return
	}
	from.RemoveProperty(pos)
	to.AddProperty(pos)
	prop.Owner = to.ID

	evt := g.eventAt(rules.EventPropertyTransferred, to.ID, pos, 0)
	evt.TargetID = from.ID
	g.publish(evt)
}

func moveEscapeCards(from, to *player.Player, n int) {
	for i := 0; i < n; i++ {
		id, held := from.TakeEscapeCard()
		if !held {
			return
		}
		to.AddEscapeCard(id)
	}
}
