package rules

import (
	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/player"
)

// Engine validates property development and mortgages against a board and
// bank. It holds no game state of its own and never mutates anything.
type Engine struct {
	board            *board.Board
	bank             *Bank
	unmortgageRatePc int
}

// NewEngine creates a rule engine. unmortgageRatePc is the interest charged on
// top of the mortgage value to lift a mortgage, in percent.
func NewEngine(b *board.Board, bank *Bank, unmortgageRatePc int) *Engine {
	return &Engine{board: b, bank: bank, unmortgageRatePc: unmortgageRatePc}
}

// Bank returns the building inventory the engine checks against.
func (e *Engine) Bank() *Bank {
	return e.bank
}

// UnmortgageCost is the mortgage value plus interest.
func (e *Engine) UnmortgageCost(p *board.Property) int {
	v := p.MortgageValue()
	return v + v*e.unmortgageRatePc/100
}

func (e *Engine) ownedStreet(pl *player.Player, pos int) (*board.Property, Validation) {
	prop, ok := e.board.Property(pos)
	if !ok {
		return nil, Reject(ResultInvalidProperty, "position %d is not a property", pos)
	}
	if prop.Kind != board.KindProperty {
		return nil, Reject(ResultInvalidProperty, "%s cannot hold buildings", prop.Name)
	}
	if prop.Owner != pl.ID {
		return nil, Reject(ResultNotOwner, "you do not own %s", prop.Name)
	}
	return prop, OK("")
}

// groupState summarises development across a color group.
func (e *Engine) groupState(group board.Group) (minLevel, maxLevel int, anyMortgaged bool) {
	minLevel = board.MaxHouses + 1
	for _, p := range e.board.GroupProperties(group) {
		level := p.Level()
		if level < minLevel {
			minLevel = level
		}
		if level > maxLevel {
			maxLevel = level
		}
		if p.Mortgaged {
			anyMortgaged = true
		}
	}
	return minLevel, maxLevel, anyMortgaged
}

func (e *Engine) validateBuildable(pl *player.Player, pos int) (*board.Property, Validation) {
	prop, v := e.ownedStreet(pl, pos)
	if !v.Valid {
		return nil, v
	}
	if !e.board.HasMonopoly(pl.ID, prop.Group) {
		return nil, Reject(ResultNoMonopoly, "you need every %s property to build", prop.Group)
	}
	if _, _, mortgaged := e.groupState(prop.Group); mortgaged {
		return nil, Reject(ResultPropertyMortgaged, "a %s property is mortgaged", prop.Group)
	}
	if prop.Hotel {
		return nil, Reject(ResultMaxDevelopment, "%s already has a hotel", prop.Name)
	}
	return prop, OK("")
}

// ValidateBuildHouse checks that pl may add one house at pos.
func (e *Engine) ValidateBuildHouse(pl *player.Player, pos int) Validation {
	prop, v := e.validateBuildable(pl, pos)
	if !v.Valid {
		return v
	}
	if prop.Houses >= board.MaxHouses {
		return Reject(ResultMaxDevelopment, "%s has %d houses; build a hotel instead", prop.Name, prop.Houses)
	}
	if minLevel, _, _ := e.groupState(prop.Group); prop.Houses > minLevel {
		return Reject(ResultUnevenBuilding, "build evenly: another %s property has fewer houses", prop.Group)
	}
	if e.bank.HousesAvailable() == 0 {
		return Reject(ResultNoBuildingsAvailable, "the bank has no houses left")
	}
	if !pl.CanAfford(prop.HouseCost) {
		return Reject(ResultInsufficientFunds, "a house on %s costs $%d", prop.Name, prop.HouseCost)
	}
	return OK("house can be built")
}

// ValidateBuildHotel checks that pl may replace four houses at pos with a hotel.
func (e *Engine) ValidateBuildHotel(pl *player.Player, pos int) Validation {
	prop, v := e.validateBuildable(pl, pos)
	if !v.Valid {
		return v
	}
	if prop.Houses < board.MaxHouses {
		return Reject(ResultUnevenBuilding, "%s needs %d houses before a hotel", prop.Name, board.MaxHouses)
	}
	if minLevel, _, _ := e.groupState(prop.Group); minLevel < board.MaxHouses {
		return Reject(ResultUnevenBuilding, "every %s property needs %d houses before a hotel", prop.Group, board.MaxHouses)
	}
	if e.bank.HotelsAvailable() == 0 {
		return Reject(ResultNoBuildingsAvailable, "the bank has no hotels left")
	}
	if !pl.CanAfford(prop.HouseCost) {
		return Reject(ResultInsufficientFunds, "a hotel on %s costs $%d", prop.Name, prop.HouseCost)
	}
	return OK("hotel can be built")
}

// ValidateSellBuilding checks that pl may sell one level of development at
// pos. Selling must be even: only from a property at the group's maximum.
// Breaking a hotel back into four houses needs four houses in the bank.
func (e *Engine) ValidateSellBuilding(pl *player.Player, pos int) Validation {
	prop, v := e.ownedStreet(pl, pos)
	if !v.Valid {
		return v
	}
	if !prop.HasBuildings() {
		return Reject(ResultNoBuildings, "%s has no buildings to sell", prop.Name)
	}
	if _, maxLevel, _ := e.groupState(prop.Group); prop.Level() < maxLevel {
		return Reject(ResultUnevenBuilding, "sell evenly: another %s property has more buildings", prop.Group)
	}
	if prop.Hotel && e.bank.HousesAvailable() < board.MaxHouses {
		return Reject(ResultNoBuildingsAvailable, "the bank needs %d houses to break down the hotel", board.MaxHouses)
	}
	return OK("building can be sold")
}

// ValidateMortgage checks that pl may mortgage pos.
func (e *Engine) ValidateMortgage(pl *player.Player, pos int) Validation {
	prop, ok := e.board.Property(pos)
	if !ok {
		return Reject(ResultInvalidProperty, "position %d is not a property", pos)
	}
	if prop.Owner != pl.ID {
		return Reject(ResultNotOwner, "you do not own %s", prop.Name)
	}
	if prop.Mortgaged {
		return Reject(ResultPropertyMortgaged, "%s is already mortgaged", prop.Name)
	}
	if prop.Kind == board.KindProperty {
		for _, p := range e.board.GroupProperties(prop.Group) {
			if p.HasBuildings() {
				return Reject(ResultHasBuildings, "sell the buildings in the %s group first", prop.Group)
			}
		}
	}
	return OK("property can be mortgaged")
}

// ValidateUnmortgage checks that pl may lift the mortgage on pos.
func (e *Engine) ValidateUnmortgage(pl *player.Player, pos int) Validation {
	prop, ok := e.board.Property(pos)
	if !ok {
		return Reject(ResultInvalidProperty, "position %d is not a property", pos)
	}
	if prop.Owner != pl.ID {
		return Reject(ResultNotOwner, "you do not own %s", prop.Name)
	}
	if !prop.Mortgaged {
		return Reject(ResultNotMortgaged, "%s is not mortgaged", prop.Name)
	}
	if cost := e.UnmortgageCost(prop); !pl.CanAfford(cost) {
		return Reject(ResultInsufficientFunds, "lifting the mortgage on %s costs $%d", prop.Name, cost)
	}
	return OK("mortgage can be lifted")
}
