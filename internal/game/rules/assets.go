package rules

import (
	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/player"
)

// TotalAssets is cash plus the mortgage value of every unmortgaged property
// plus half the build cost of every house and hotel the player owns.
func (e *Engine) TotalAssets(pl *player.Player) int {
	total := pl.Cash
	for _, pos := range pl.Properties() {
		prop, ok := e.board.Property(pos)
		if !ok || prop.Owner != pl.ID {
			continue
		}
		if !prop.Mortgaged {
			total += prop.MortgageValue()
		}
		total += prop.Level() * prop.HouseCost / 2
	}
	return total
}

// CanPlayerPay reports whether liquidating everything would cover amount.
func (e *Engine) CanPlayerPay(pl *player.Player, amount int) bool {
	return e.TotalAssets(pl) >= amount
}

// NearestRailroad scans forward from pos, wrapping, for the next railroad.
func (e *Engine) NearestRailroad(pos int) int {
	return nearest(e.board, pos, board.KindRailroad)
}

// NearestUtility scans forward from pos, wrapping, for the next utility.
func (e *Engine) NearestUtility(pos int) int {
	return nearest(e.board, pos, board.KindUtility)
}

func nearest(b *board.Board, pos int, kind board.SpaceKind) int {
	size := b.Size()
	for step := 1; step <= size; step++ {
		p := (pos + step) % size
		if s, _ := b.Space(p); s.Kind == kind {
			return p
		}
	}
	return pos
}
