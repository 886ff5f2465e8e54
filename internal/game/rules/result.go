package rules

import "fmt"

// ResultKind tags the outcome of a validation or action. Rule violations
// are reported as values, never as Go errors.
type ResultKind string

const (
	ResultSuccess              ResultKind = "SUCCESS"
	ResultNotOwner             ResultKind = "NOT_OWNER"
	ResultInsufficientFunds    ResultKind = "INSUFFICIENT_FUNDS"
	ResultHasBuildings         ResultKind = "HAS_BUILDINGS"
	ResultUnevenBuilding       ResultKind = "UNEVEN_BUILDING"
	ResultNoMonopoly           ResultKind = "NO_MONOPOLY"
	ResultPropertyMortgaged    ResultKind = "PROPERTY_MORTGAGED"
	ResultNoBuildingsAvailable ResultKind = "NO_BUILDINGS_AVAILABLE"
	ResultMaxDevelopment       ResultKind = "MAX_DEVELOPMENT"
	ResultInvalidProperty      ResultKind = "INVALID_PROPERTY"
	ResultInvalidTrade         ResultKind = "INVALID_TRADE"
	ResultNotMortgaged         ResultKind = "NOT_MORTGAGED"
	ResultNoBuildings          ResultKind = "NO_BUILDINGS"
	ResultNotYourTurn          ResultKind = "NOT_YOUR_TURN"
	ResultInvalidPhase         ResultKind = "INVALID_PHASE"
	ResultInvalidPlayer        ResultKind = "INVALID_PLAYER"
	ResultNotInJail            ResultKind = "NOT_IN_JAIL"
	ResultNoJailCard           ResultKind = "NO_JAIL_CARD"
	ResultGameFull             ResultKind = "GAME_FULL"
	ResultNotEnoughPlayers     ResultKind = "NOT_ENOUGH_PLAYERS"
	ResultUnknownAction        ResultKind = "UNKNOWN_ACTION"
)

// Validation is the structured outcome of a rule check.
type Validation struct {
	Valid   bool
	Result  ResultKind
	Message string
}

// OK returns a passing validation.
func OK(message string) Validation {
	return Validation{Valid: true, Result: ResultSuccess, Message: message}
}

// Reject returns a failing validation with a formatted message.
func Reject(kind ResultKind, format string, args ...interface{}) Validation {
	return Validation{Valid: false, Result: kind, Message: fmt.Sprintf(format, args...)}
}
