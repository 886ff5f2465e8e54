package game

import (
	"github.com/landlord/landlord-server/internal/game/rules"
	"go.uber.org/zap"
)

// ForceResolve makes the default move for the current player. External
// timeout policy calls it; the game itself keeps no clock.
func (g *Game) ForceResolve(playerID string) Result {
	if _, res, allowed := g.checkTurn(playerID, PhasePreRoll, PhasePropertyDecision, PhasePayingRent, PhasePostRoll); !allowed {
		return res
	}

	if g.logger != nil {
		g.logger.Info("forcing default move",
			zap.String("game_id", g.id),
			zap.String("player_id", playerID),
			zap.String("phase", string(g.phase)),
		)
	}

	switch g.phase {
	case PhasePreRoll:
		return g.RollDice(playerID)
	case PhasePropertyDecision:
		return g.DeclineProperty(playerID)
	case PhasePayingRent:
		pl := g.players[playerID]
		if g.debt != nil && pl.CanAfford(g.debt.Amount) {
			return g.PayDebt(playerID)
		}
		return g.DeclareBankruptcy(playerID, g.bankruptcyCreditor(playerID))
	default:
		return g.EndTurn(playerID)
	}
}

// SetConnected records a connection change. A disconnected player keeps
// their seat and turn slot.
func (g *Game) SetConnected(playerID string, connected bool) Result {
	pl, exists := g.players[playerID]
	if !exists {
		return reject(rules.ResultInvalidPlayer, "unknown player %q", playerID)
	}
	if pl.IsBankrupt() {
		return reject(rules.ResultInvalidPlayer, "%s is bankrupt", pl.Name)
	}

	if connected {
		pl.Reconnect()
		g.publish(rules.NewEvent(rules.EventPlayerOnline, g.id, pl.ID))
	} else {
		pl.Disconnect()
		g.publish(rules.NewEvent(rules.EventPlayerOffline, g.id, pl.ID))
	}
	return ok(pl.Name+" is "+pl.State.String(), map[string]interface{}{"state": pl.State.String()})
}
