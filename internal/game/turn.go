package game

import (
	"strings"

	"github.com/landlord/landlord-server/internal/game/dice"
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/landlord/landlord-server/internal/game/rules"
	"go.uber.org/zap"
)

const maxConsecutiveDoubles = 3

// AddPlayer seats a new participant. Only allowed while WAITING.
func (g *Game) AddPlayer(id, name string) Result {
	id = strings.TrimSpace(id)
	if g.phase != PhaseWaiting {
		return reject(rules.ResultInvalidPhase, "game has already started")
	}
	if id == "" {
		return reject(rules.ResultInvalidPlayer, "player id is required")
	}
	if _, exists := g.players[id]; exists {
		return reject(rules.ResultInvalidPlayer, "player %q already joined", id)
	}
	if len(g.order) >= g.cfg.MaxPlayers {
		return reject(rules.ResultGameFull, "game is full (%d players)", g.cfg.MaxPlayers)
	}
	if name == "" {
		name = id
	}

	g.players[id] = player.New(id, name, g.cfg.StartingCash)
	g.order = append(g.order, id)
	g.publish(rules.NewEvent(rules.EventPlayerJoined, g.id, id))

	if g.logger != nil {
		g.logger.Info("player joined",
			zap.String("game_id", g.id),
			zap.String("player_id", id),
			zap.Int("players", len(g.order)),
		)
	}
	return ok(name+" joined", map[string]interface{}{"player_id": id})
}

// RemovePlayer takes a participant out. Before the start the seat is freed;
// during play the player goes bankrupt to whoever they owe, usually the bank.
func (g *Game) RemovePlayer(id string) Result {
	pl, exists := g.players[id]
	if !exists {
		return reject(rules.ResultInvalidPlayer, "unknown player %q", id)
	}
	switch {
	case g.phase == PhaseWaiting:
		delete(g.players, id)
		for i, pid := range g.order {
			if pid == id {
				g.order = append(g.order[:i], g.order[i+1:]...)
				break
			}
		}
		g.publish(rules.NewEvent(rules.EventPlayerLeft, g.id, id))
		return ok(pl.Name+" left", nil)
	case g.phase == PhaseGameOver:
		return reject(rules.ResultInvalidPhase, "game is over")
	}

	res := g.DeclareBankruptcy(id, g.bankruptcyCreditor(id))
	if res.Success {
		g.publish(rules.NewEvent(rules.EventPlayerLeft, g.id, id))
	}
	return res
}

// Start fixes the seating order and hands the first turn to the first seat.
func (g *Game) Start() Result {
	if g.phase != PhaseWaiting {
		return reject(rules.ResultInvalidPhase, "game has already started")
	}
	if n := len(g.order); n < g.cfg.MinPlayers {
		return reject(rules.ResultNotEnoughPlayers, "need at least %d players, have %d", g.cfg.MinPlayers, n)
	}

	g.cursor = rules.NewTurnCursor(g.order)
	g.setPhase(PhasePreRoll)
	g.publish(rules.NewEvent(rules.EventGameStarted, g.id, g.CurrentPlayerID()))

	if g.logger != nil {
		g.logger.Info("game started",
			zap.String("game_id", g.id),
			zap.Strings("order", g.order),
		)
	}
	return ok("game started", map[string]interface{}{"current_player": g.CurrentPlayerID()})
}

// RollDice rolls for the current player and resolves the move.
func (g *Game) RollDice(playerID string) Result {
	pl, res, allowed := g.checkTurn(playerID, PhasePreRoll)
	if !allowed {
		return res
	}

	roll := g.roller.Roll()
	g.recordRoll(roll)
	pl.HasRolled = true

	evt := g.eventAt(rules.EventDiceRolled, pl.ID, pl.Position, roll.Total())
	evt.Metadata["dice"] = roll.String()
	g.publish(evt)

	payload := map[string]interface{}{
		"die1":   roll.Die1,
		"die2":   roll.Die2,
		"double": roll.IsDouble(),
	}

	if pl.InJail() {
		msg := g.rollInJail(pl, roll)
		payload["position"] = pl.Position
		return ok(msg, payload)
	}

	if roll.IsDouble() {
		pl.ConsecutiveDoubles++
		if pl.ConsecutiveDoubles >= maxConsecutiveDoubles {
			g.sendToJail(pl)
			g.setPhase(PhasePostRoll)
			payload["position"] = pl.Position
			return ok("three doubles in a row: go to jail", payload)
		}
		g.rolledDouble = true
	} else {
		pl.ConsecutiveDoubles = 0
		g.rolledDouble = false
	}

	g.moveBy(pl, roll.Total())
	g.resolveLanding(pl, roll.Total())
	payload["position"] = pl.Position
	return ok("rolled "+roll.String(), payload)
}

// rollInJail handles a roll made from jail. Doubles release the player and
// move them, but never earn another roll.
func (g *Game) rollInJail(pl *player.Player, roll dice.Result) string {
	g.rolledDouble = false
	pl.ConsecutiveDoubles = 0

	if roll.IsDouble() {
		g.release(pl)
		g.moveBy(pl, roll.Total())
		g.resolveLanding(pl, roll.Total())
		return "doubles: released from jail"
	}

	pl.JailTurns++
	if pl.JailTurns < g.cfg.MaxJailTurns {
		g.setPhase(PhasePostRoll)
		return "still in jail"
	}

	if !pl.RemoveCash(g.cfg.BailCost) {
		g.owe(pl, Debt{Amount: g.cfg.BailCost, Reason: DebtBail})
		return "bail is due and cannot be paid"
	}
	g.publish(g.eventAt(rules.EventBailPaid, pl.ID, pl.Position, g.cfg.BailCost))
	g.release(pl)
	g.moveBy(pl, roll.Total())
	g.resolveLanding(pl, roll.Total())
	return "bail paid after the last jail turn"
}

// EndTurn passes the turn, or restarts it after doubles.
func (g *Game) EndTurn(playerID string) Result {
	pl, res, allowed := g.checkTurn(playerID, PhasePostRoll)
	if !allowed {
		return res
	}

	if g.rolledDouble && !pl.InJail() {
		g.rolledDouble = false
		pl.HasRolled = false
		g.setPhase(PhasePreRoll)
		return ok("doubles: roll again", map[string]interface{}{"current_player": pl.ID})
	}

	g.advanceTurn()
	return ok("turn ended", map[string]interface{}{"current_player": g.CurrentPlayerID()})
}

// advanceTurn hands the turn to the next non-bankrupt player.
func (g *Game) advanceTurn() {
	prev := g.CurrentPlayerID()
	if p, exists := g.players[prev]; exists {
		p.HasRolled = false
		p.ConsecutiveDoubles = 0
	}
	g.rolledDouble = false
	g.cancelTrade("turn ended")

	if !g.cursor.Advance(g.eligible) {
		g.checkGameOver()
		return
	}
	next := g.players[g.cursor.Current()]
	next.HasRolled = false
	next.ConsecutiveDoubles = 0

	g.publish(rules.NewEvent(rules.EventTurnEnded, g.id, prev))
	g.setPhase(PhasePreRoll)
}

// checkGameOver ends the game when a single solvent player remains.
func (g *Game) checkGameOver() bool {
	alive := g.activePlayers()
	if len(alive) > 1 {
		return false
	}
	if len(alive) == 1 {
		g.winner = alive[0].ID
	}
	g.debt = nil
	g.cancelTrade("game over")
	g.setPhase(PhaseGameOver)

	evt := rules.NewEvent(rules.EventGameOver, g.id, g.winner)
	g.publish(evt)

	if g.logger != nil {
		g.logger.Info("game over",
			zap.String("game_id", g.id),
			zap.String("winner", g.winner),
			zap.Int("turns", g.TurnNumber()),
		)
	}
	return true
}
