package game

import (
	"github.com/landlord/landlord-server/internal/game/rules"
)

// Phase is the step of the turn state machine the game is in.
type Phase string

const (
	PhaseWaiting          Phase = "WAITING"
	PhasePreRoll          Phase = "PRE_ROLL"
	PhasePropertyDecision Phase = "PROPERTY_DECISION"
	PhasePayingRent       Phase = "PAYING_RENT"
	PhasePostRoll         Phase = "POST_ROLL"
	PhaseGameOver         Phase = "GAME_OVER"
)

// InPlay reports whether turns are being taken.
func (p Phase) InPlay() bool {
	return p != PhaseWaiting && p != PhaseGameOver
}

// Result is the outcome of every public game operation. Rule violations are
// reported here with Success false and never as Go errors.
type Result struct {
	Success bool                   `json:"success"`
	Kind    rules.ResultKind       `json:"kind"`
	Message string                 `json:"message"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

func ok(message string, payload map[string]interface{}) Result {
	return Result{Success: true, Kind: rules.ResultSuccess, Message: message, Payload: payload}
}

func reject(kind rules.ResultKind, format string, args ...interface{}) Result {
	return fromValidation(rules.Reject(kind, format, args...))
}

func fromValidation(v rules.Validation) Result {
	return Result{Success: v.Valid, Kind: v.Result, Message: v.Message}
}
