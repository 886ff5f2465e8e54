package game

import (
	"fmt"

	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/landlord/landlord-server/internal/game/rules"
	"go.uber.org/zap"
)

func (g *Game) moveBy(pl *player.Player, steps int) {
	from := pl.Position
	if pl.Advance(steps, g.board.Size()) {
		g.paySalary(pl)
	}
	g.publishMove(pl, from)
}

// moveTo moves forward to target, paying salary when GO is passed.
func (g *Game) moveTo(pl *player.Player, target int) {
	from := pl.Position
	if pl.MoveTo(target) {
		g.paySalary(pl)
	}
	g.publishMove(pl, from)
}

func (g *Game) moveBack(pl *player.Player, steps int) {
	from := pl.Position
	pl.MoveBack(steps, g.board.Size())
	g.publishMove(pl, from)
}

func (g *Game) publishMove(pl *player.Player, from int) {
	evt := g.eventAt(rules.EventPlayerMoved, pl.ID, pl.Position, 0)
	evt.Metadata["from"] = fmt.Sprint(from)
	g.publish(evt)
}

func (g *Game) paySalary(pl *player.Player) {
	pl.AddCash(g.cfg.Salary)
	g.publish(g.eventAt(rules.EventPassedGo, pl.ID, board.PositionGo, g.cfg.Salary))
}

func (g *Game) sendToJail(pl *player.Player) {
	pl.SendToJail(g.board.JailPosition())
	g.rolledDouble = false
	g.publish(g.eventAt(rules.EventSentToJail, pl.ID, pl.Position, 0))
}

func (g *Game) release(pl *player.Player) {
	pl.Release()
	g.publish(g.eventAt(rules.EventReleasedJail, pl.ID, pl.Position, 0))
}

// resolveLanding applies the space the player stands on and sets the next
// phase. Card effects that move the player call back into it.
func (g *Game) resolveLanding(pl *player.Player, diceTotal int) {
	space, _ := g.board.Space(pl.Position)

	switch space.Kind {
	case board.KindTax:
		g.charge(pl, space.Tax, "", DebtTax, rules.EventTaxPaid)
	case board.KindCard:
		g.drawCard(pl, space.Deck, diceTotal)
	case board.KindProperty, board.KindRailroad, board.KindUtility:
		g.landOnProperty(pl, diceTotal)
	default:
		if pl.Position == g.board.GoToJailPosition() {
			g.sendToJail(pl)
		}
		g.setPhase(PhasePostRoll)
	}
}

func (g *Game) landOnProperty(pl *player.Player, diceTotal int) {
	prop, _ := g.board.Property(pl.Position)
	switch {
	case !prop.Owned():
		g.setPhase(PhasePropertyDecision)
	case prop.Owner == pl.ID || prop.Mortgaged:
		g.setPhase(PhasePostRoll)
	default:
		rent := g.board.CalculateRent(prop.Position, diceTotal, pl.ID)
		g.charge(pl, rent, prop.Owner, DebtRent, rules.EventRentPaid)
	}
}

// charge takes amount from pl for creditor (empty = bank). When cash falls
// short the game waits in PAYING_RENT for the debt to be settled.
func (g *Game) charge(pl *player.Player, amount int, creditor string, reason DebtReason, paid rules.EventType) {
	if amount <= 0 {
		g.setPhase(PhasePostRoll)
		return
	}
	if !pl.RemoveCash(amount) {
		g.owe(pl, Debt{Amount: amount, Creditor: creditor, Reason: reason})
		return
	}
	g.credit(creditor, amount)

	evt := g.eventAt(paid, pl.ID, pl.Position, amount)
	evt.TargetID = creditor
	g.publish(evt)
	g.setPhase(PhasePostRoll)
}

func (g *Game) credit(creditor string, amount int) {
	if creditor == "" {
		return
	}
	if c, exists := g.players[creditor]; exists && !c.IsBankrupt() {
		c.AddCash(amount)
	}
}

func (g *Game) owe(pl *player.Player, d Debt) {
	g.debt = &d
	evt := g.eventAt(rules.EventDebtOwed, pl.ID, pl.Position, d.Amount)
	evt.TargetID = d.Creditor
	evt.Metadata["reason"] = string(d.Reason)
	g.publish(evt)
	g.setPhase(PhasePayingRent)

	if g.logger != nil {
		g.logger.Debug("debt pending",
			zap.String("game_id", g.id),
			zap.String("player_id", pl.ID),
			zap.Int("amount", d.Amount),
			zap.String("reason", string(d.Reason)),
		)
	}
}

// PayDebt settles the pending debt once the player has raised the cash.
func (g *Game) PayDebt(playerID string) Result {
	pl, res, allowed := g.checkTurn(playerID, PhasePayingRent)
	if !allowed {
		return res
	}
	if g.debt == nil {
		return reject(rules.ResultInvalidPhase, "nothing is owed")
	}
	d := *g.debt
	if !pl.RemoveCash(d.Amount) {
		return reject(rules.ResultInsufficientFunds, "owe $%d, have $%d", d.Amount, pl.Cash)
	}

	g.debt = nil
	g.credit(d.Creditor, d.Amount-d.PerPayee*len(d.Payees))
	for _, id := range d.Payees {
		g.credit(id, d.PerPayee)
	}
	evt := g.eventAt(rules.EventDebtPaid, pl.ID, pl.Position, d.Amount)
	evt.TargetID = d.Creditor
	evt.Metadata["reason"] = string(d.Reason)
	g.publish(evt)

	if d.Reason == DebtBail {
		g.publish(g.eventAt(rules.EventBailPaid, pl.ID, pl.Position, d.Amount))
		g.leaveJailByRoll(pl)
	} else {
		g.setPhase(PhasePostRoll)
	}
	return ok(fmt.Sprintf("paid $%d", d.Amount), map[string]interface{}{"cash": pl.Cash})
}
