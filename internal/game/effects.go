package game

import (
	"fmt"
	"strconv"

	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/cards"
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/landlord/landlord-server/internal/game/rules"
)

// effectHandler applies one card effect and leaves the game in its next phase.
type effectHandler func(g *Game, pl *player.Player, card cards.Card, diceTotal int)

func (g *Game) effectTable() map[cards.Effect]effectHandler {
	return map[cards.Effect]effectHandler{
		cards.EffectCollectMoney:       collectMoney,
		cards.EffectPayMoney:           payMoney,
		cards.EffectCollectFromPlayers: collectFromPlayers,
		cards.EffectPayToPlayers:       payToPlayers,
		cards.EffectMoveTo:             moveToSpace,
		cards.EffectMoveForward:        moveForward,
		cards.EffectMoveBack:           moveBack,
		cards.EffectGoToJail:           goToJail,
		cards.EffectGetOutOfJail:       keepEscapeCard,
		cards.EffectRepairs:            payRepairs,
	}
}

func (g *Game) drawCard(pl *player.Player, deck board.Deck, diceTotal int) {
	card, err := g.cards.Draw(deck)
	if err != nil {
		g.setFault(fmt.Errorf("draw %s: %w", deck, err))
		g.setPhase(PhasePostRoll)
		return
	}

	evt := g.eventAt(rules.EventCardDrawn, pl.ID, pl.Position, card.Value)
	evt.Metadata["card_id"] = strconv.Itoa(card.ID)
	evt.Metadata["deck"] = string(card.Deck)
	evt.Metadata["effect"] = card.Effect.String()
	evt.Metadata["text"] = card.Text
	g.publish(evt)

	handler, exists := g.effects[card.Effect]
	if !exists {
		g.setFault(fmt.Errorf("card %d: no handler for effect %s", card.ID, card.Effect))
		g.setPhase(PhasePostRoll)
		return
	}
	handler(g, pl, card, diceTotal)
}

func collectMoney(g *Game, pl *player.Player, card cards.Card, _ int) {
	pl.AddCash(card.Value)
	g.setPhase(PhasePostRoll)
}

func payMoney(g *Game, pl *player.Player, card cards.Card, _ int) {
	g.charge(pl, card.Value, "", DebtCard, rules.EventCardPaid)
}

// collectFromPlayers takes what each opponent can pay, up to the card value.
func collectFromPlayers(g *Game, pl *player.Player, card cards.Card, _ int) {
	total := 0
	for _, other := range g.activePlayers() {
		if other.ID == pl.ID {
			continue
		}
		take := card.Value
		if other.Cash < take {
			take = other.Cash
		}
		other.RemoveCash(take)
		total += take
	}
	pl.AddCash(total)
	g.setPhase(PhasePostRoll)
}

// payToPlayers pays each opponent the card value, or leaves one combined debt.
func payToPlayers(g *Game, pl *player.Player, card cards.Card, _ int) {
	var payees []string
	for _, other := range g.activePlayers() {
		if other.ID != pl.ID {
			payees = append(payees, other.ID)
		}
	}
	total := card.Value * len(payees)
	if !pl.RemoveCash(total) {
		g.owe(pl, Debt{Amount: total, Reason: DebtCard, Payees: payees, PerPayee: card.Value})
		return
	}
	for _, id := range payees {
		g.players[id].AddCash(card.Value)
	}
	g.publish(g.eventAt(rules.EventCardPaid, pl.ID, pl.Position, total))
	g.setPhase(PhasePostRoll)
}

func moveToSpace(g *Game, pl *player.Player, card cards.Card, diceTotal int) {
	target := card.Value
	switch target {
	case cards.TargetNearestUtility:
		target = g.engine.NearestUtility(pl.Position)
	case cards.TargetNearestRailroad:
		target = g.engine.NearestRailroad(pl.Position)
	}
	g.moveTo(pl, target)
	g.resolveLanding(pl, diceTotal)
}

func moveForward(g *Game, pl *player.Player, card cards.Card, diceTotal int) {
	g.moveBy(pl, card.Value)
	g.resolveLanding(pl, diceTotal)
}

func moveBack(g *Game, pl *player.Player, card cards.Card, diceTotal int) {
	g.moveBack(pl, card.Value)
	g.resolveLanding(pl, diceTotal)
}

func goToJail(g *Game, pl *player.Player, _ cards.Card, _ int) {
	g.sendToJail(pl)
	g.setPhase(PhasePostRoll)
}

func keepEscapeCard(g *Game, pl *player.Player, card cards.Card, _ int) {
	pl.AddEscapeCard(card.ID)
	g.setPhase(PhasePostRoll)
}

func payRepairs(g *Game, pl *player.Player, card cards.Card, _ int) {
	houses, hotels := 0, 0
	for _, pos := range pl.Properties() {
		prop, _ := g.board.Property(pos)
		houses += prop.Houses
		if prop.Hotel {
			hotels++
		}
	}
	g.charge(pl, card.RepairCost(houses, hotels), "", DebtCard, rules.EventCardPaid)
}
