package game

import (
	"errors"
	"fmt"

	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/cards"
)

// ErrInvalidConfig is returned when rules constants cannot form a playable game.
var ErrInvalidConfig = errors.New("invalid game config")

// Config holds the rules constants a game is built from. Layout and Cards
// default to the classic board and decks when empty.
type Config struct {
	StartingCash          int           `json:"starting_cash"`
	Salary                int           `json:"salary"`
	BailCost              int           `json:"bail_cost"`
	MaxJailTurns          int           `json:"max_jail_turns"`
	TotalHouses           int           `json:"total_houses"`
	TotalHotels           int           `json:"total_hotels"`
	MinPlayers            int           `json:"min_players"`
	MaxPlayers            int           `json:"max_players"`
	UnmortgageInterestPct int           `json:"unmortgage_interest_pct"`
	DiceHistory           int           `json:"dice_history"`
	Layout                []board.Space `json:"layout,omitempty"`
	Cards                 []cards.Card  `json:"cards,omitempty"`
}

// DefaultConfig returns the standard rules.
func DefaultConfig() Config {
	return Config{
		StartingCash:          1500,
		Salary:                200,
		BailCost:              50,
		MaxJailTurns:          3,
		TotalHouses:           32,
		TotalHotels:           12,
		MinPlayers:            2,
		MaxPlayers:            4,
		UnmortgageInterestPct: 10,
		DiceHistory:           10,
	}
}

// Validate checks the constants for internal consistency.
func (c Config) Validate() error {
	switch {
	case c.StartingCash < 0:
		return fmt.Errorf("%w: starting cash %d", ErrInvalidConfig, c.StartingCash)
	case c.Salary < 0 || c.BailCost < 0:
		return fmt.Errorf("%w: negative salary or bail", ErrInvalidConfig)
	case c.MaxJailTurns < 1:
		return fmt.Errorf("%w: max jail turns %d", ErrInvalidConfig, c.MaxJailTurns)
	case c.TotalHouses < 0 || c.TotalHotels < 0:
		return fmt.Errorf("%w: negative building supply", ErrInvalidConfig)
	case c.MinPlayers < 2 || c.MaxPlayers < c.MinPlayers:
		return fmt.Errorf("%w: players %d..%d", ErrInvalidConfig, c.MinPlayers, c.MaxPlayers)
	case c.UnmortgageInterestPct < 0:
		return fmt.Errorf("%w: unmortgage interest %d%%", ErrInvalidConfig, c.UnmortgageInterestPct)
	case c.DiceHistory < 1:
		return fmt.Errorf("%w: dice history %d", ErrInvalidConfig, c.DiceHistory)
	}
	return nil
}

func (c Config) layout() []board.Space {
	if len(c.Layout) == 0 {
		return board.StandardLayout()
	}
	return c.Layout
}

func (c Config) catalog() (*cards.Catalog, error) {
	if len(c.Cards) == 0 {
		return cards.DefaultCatalog(), nil
	}
	return cards.NewCatalog(c.Cards)
}
