package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/dice"
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/landlord/landlord-server/internal/game/rules"
	"go.uber.org/zap"
)

// SnapshotVersion is the structural version written into every snapshot.
const SnapshotVersion = 1

// ErrCorruptSnapshot marks a snapshot that cannot be turned back into a game.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Snapshot is a complete structural copy of a game. Restoring it yields a
// game that continues exactly as the original would have.
type Snapshot struct {
	Version         int                `json:"version"`
	GameID          string             `json:"game_id"`
	Name            string             `json:"name"`
	Config          Config             `json:"config"`
	Seed            int64              `json:"seed"`
	Draws           uint64             `json:"draws"`
	Phase           Phase              `json:"phase"`
	Order           []string           `json:"order"`
	CurrentIndex    int                `json:"current_index"`
	TurnNumber      int                `json:"turn_number"`
	Players         []PlayerSnapshot   `json:"players"`
	Properties      []PropertySnapshot `json:"properties"`
	Decks           []DeckSnapshot     `json:"decks"`
	HousesAvailable int                `json:"houses_available"`
	HotelsAvailable int                `json:"hotels_available"`
	LastDice        dice.Result        `json:"last_dice"`
	DiceHistory     []dice.Result      `json:"dice_history,omitempty"`
	RolledDouble    bool               `json:"rolled_double"`
	Winner          string             `json:"winner,omitempty"`
	Debt            *Debt              `json:"debt,omitempty"`
	Trade           *rules.TradeOffer  `json:"trade,omitempty"`
	Timestamp       time.Time          `json:"timestamp"`
}

// PlayerSnapshot is the saved state of one participant.
type PlayerSnapshot struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Cash               int    `json:"cash"`
	Position           int    `json:"position"`
	State              string `json:"state"`
	ResumeState        string `json:"resume_state,omitempty"`
	JailTurns          int    `json:"jail_turns"`
	ConsecutiveDoubles int    `json:"consecutive_doubles"`
	HasRolled          bool   `json:"has_rolled"`
	Properties         []int  `json:"properties,omitempty"`
	EscapeCards        []int  `json:"escape_cards,omitempty"`
}

// PropertySnapshot is the saved state of one owned property.
type PropertySnapshot struct {
	Position  int    `json:"position"`
	Owner     string `json:"owner"`
	Houses    int    `json:"houses"`
	Hotel     bool   `json:"hotel"`
	Mortgaged bool   `json:"mortgaged"`
}

// DeckSnapshot is the pile order of one deck.
type DeckSnapshot struct {
	Name    board.Deck `json:"name"`
	Draw    []int      `json:"draw"`
	Discard []int      `json:"discard"`
}

// Snapshot captures the full game state.
func (g *Game) Snapshot() *Snapshot {
	s := &Snapshot{
		Version:         SnapshotVersion,
		GameID:          g.id,
		Name:            g.name,
		Config:          g.cfg,
		Seed:            g.source.SeedValue(),
		Draws:           g.source.Draws(),
		Phase:           g.phase,
		Order:           append([]string(nil), g.order...),
		TurnNumber:      g.TurnNumber(),
		HousesAvailable: g.bank.HousesAvailable(),
		HotelsAvailable: g.bank.HotelsAvailable(),
		LastDice:        g.lastDice,
		DiceHistory:     g.DiceHistory(),
		RolledDouble:    g.rolledDouble,
		Winner:          g.winner,
		Timestamp:       time.Now().UTC(),
	}
	if g.cursor != nil {
		s.CurrentIndex = g.cursor.Index()
	}
	for _, pl := range g.Players() {
		ps := PlayerSnapshot{
			ID:                 pl.ID,
			Name:               pl.Name,
			Cash:               pl.Cash,
			Position:           pl.Position,
			State:              pl.State.String(),
			JailTurns:          pl.JailTurns,
			ConsecutiveDoubles: pl.ConsecutiveDoubles,
			HasRolled:          pl.HasRolled,
			Properties:         pl.Properties(),
			EscapeCards:        pl.EscapeCards(),
		}
		if pl.State == player.StateDisconnected {
			ps.ResumeState = pl.ResumeState().String()
		}
		s.Players = append(s.Players, ps)
	}
	for _, prop := range g.board.Properties() {
		if !prop.Owned() {
			continue
		}
		s.Properties = append(s.Properties, PropertySnapshot{
			Position:  prop.Position,
			Owner:     prop.Owner,
			Houses:    prop.Houses,
			Hotel:     prop.Hotel,
			Mortgaged: prop.Mortgaged,
		})
	}
	for _, name := range []board.Deck{board.DeckChance, board.DeckCommunityChest} {
		d, _ := g.cards.Deck(name)
		draw, discard := d.Order()
		s.Decks = append(s.Decks, DeckSnapshot{Name: name, Draw: draw, Discard: discard})
	}
	if g.debt != nil {
		d := *g.debt
		d.Payees = append([]string(nil), d.Payees...)
		s.Debt = &d
	}
	if g.trade != nil {
		t := g.trade.Clone()
		s.Trade = &t
	}
	return s
}

func corrupt(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorruptSnapshot, fmt.Sprintf(format, args...))
}

// Restore rebuilds a game from a snapshot. Any inconsistency is reported as
// an error wrapping ErrCorruptSnapshot.
func Restore(s *Snapshot, logger *zap.Logger) (*Game, error) {
	if s == nil {
		return nil, corrupt("nil snapshot")
	}
	if s.Version != SnapshotVersion {
		return nil, corrupt("unsupported version %d", s.Version)
	}

	src := dice.NewSource(s.Seed)
	g, err := build(s.GameID, s.Name, s.Config, src, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if !src.AdvanceTo(s.Draws) {
		return nil, corrupt("rng draws %d below deck setup", s.Draws)
	}

	if err := g.restorePlayers(s); err != nil {
		return nil, err
	}
	if err := g.restoreProperties(s); err != nil {
		return nil, err
	}
	if err := g.restoreDecks(s); err != nil {
		return nil, err
	}

	houses, hotels := g.board.BuildingCounts()
	if houses+s.HousesAvailable != g.cfg.TotalHouses || hotels+s.HotelsAvailable != g.cfg.TotalHotels {
		return nil, corrupt("building inventory does not add up")
	}
	g.bank.Set(s.HousesAvailable, s.HotelsAvailable)

	g.phase = s.Phase
	switch s.Phase {
	case PhaseWaiting:
	case PhasePreRoll, PhasePropertyDecision, PhasePayingRent, PhasePostRoll, PhaseGameOver:
		if s.CurrentIndex < 0 || s.CurrentIndex >= len(g.order) {
			return nil, corrupt("current index %d out of range", s.CurrentIndex)
		}
		g.cursor = rules.RestoreTurnCursor(g.order, s.CurrentIndex, s.TurnNumber)
	default:
		return nil, corrupt("unknown phase %q", s.Phase)
	}
	if s.Phase == PhasePayingRent && s.Debt == nil {
		return nil, corrupt("paying rent without a debt")
	}

	g.lastDice = s.LastDice
	g.diceHistory = append([]dice.Result(nil), s.DiceHistory...)
	g.rolledDouble = s.RolledDouble
	g.winner = s.Winner
	if s.Debt != nil {
		d := *s.Debt
		g.debt = &d
	}
	if s.Trade != nil {
		t := s.Trade.Clone()
		g.trade = &t
	}

	if logger != nil {
		logger.Info("game restored",
			zap.String("game_id", g.id),
			zap.String("phase", string(g.phase)),
			zap.Int("turn", g.TurnNumber()),
		)
	}
	return g, nil
}

func (g *Game) restorePlayers(s *Snapshot) error {
	if len(s.Order) != len(s.Players) {
		return corrupt("order lists %d players, snapshot has %d", len(s.Order), len(s.Players))
	}
	for _, ps := range s.Players {
		if ps.ID == "" {
			return corrupt("player without id")
		}
		if _, dup := g.players[ps.ID]; dup {
			return corrupt("duplicate player %q", ps.ID)
		}
		state, err := player.ParseState(ps.State)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
		if ps.Position < 0 || ps.Position >= g.board.Size() {
			return corrupt("player %q at position %d", ps.ID, ps.Position)
		}

		pl := player.New(ps.ID, ps.Name, ps.Cash)
		pl.Position = ps.Position
		pl.State = state
		pl.JailTurns = ps.JailTurns
		pl.ConsecutiveDoubles = ps.ConsecutiveDoubles
		pl.HasRolled = ps.HasRolled
		if ps.ResumeState != "" {
			resume, err := player.ParseState(ps.ResumeState)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
			}
			pl.SetResumeState(resume)
		}
		for _, pos := range ps.Properties {
			pl.AddProperty(pos)
		}
		for _, id := range ps.EscapeCards {
			if _, known := g.cards.Catalog().Card(id); !known {
				return corrupt("player %q holds unknown card %d", ps.ID, id)
			}
			pl.AddEscapeCard(id)
		}
		g.players[ps.ID] = pl
	}
	for _, id := range s.Order {
		if _, seated := g.players[id]; !seated {
			return corrupt("order names unknown player %q", id)
		}
	}
	g.order = append([]string(nil), s.Order...)
	return nil
}

// restoreDecks applies pile order and checks that every catalog card sits in
// exactly one place: a draw pile, a discard pile or a player's hand.
func (g *Game) restoreDecks(s *Snapshot) error {
	seen := make(map[int]int)
	for _, d := range s.Decks {
		if err := g.cards.Restore(d.Name, d.Draw, d.Discard); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
		for _, id := range d.Draw {
			seen[id]++
		}
		for _, id := range d.Discard {
			seen[id]++
		}
	}
	for _, ps := range s.Players {
		for _, id := range ps.EscapeCards {
			seen[id]++
		}
	}

	catalog := g.cards.Catalog()
	for _, deck := range []board.Deck{board.DeckChance, board.DeckCommunityChest} {
		for _, id := range catalog.IDs(deck) {
			switch n := seen[id]; n {
			case 1:
			case 0:
				return corrupt("card %d is missing from %s", id, deck)
			default:
				return corrupt("card %d appears %d times", id, n)
			}
			delete(seen, id)
		}
	}
	for id := range seen {
		return corrupt("card %d is not in any deck", id)
	}
	return nil
}

// restoreProperties applies owners and checks that ownership agrees in both
// directions.
func (g *Game) restoreProperties(s *Snapshot) error {
	for _, ps := range s.Properties {
		prop, exists := g.board.Property(ps.Position)
		if !exists {
			return corrupt("position %d is not a property", ps.Position)
		}
		owner, seated := g.players[ps.Owner]
		if !seated || !owner.OwnsProperty(ps.Position) {
			return corrupt("property %d owner %q disagrees with player holdings", ps.Position, ps.Owner)
		}
		if ps.Houses < 0 || ps.Houses > board.MaxHouses || (ps.Hotel && ps.Houses > 0) {
			return corrupt("property %d has %d houses, hotel=%t", ps.Position, ps.Houses, ps.Hotel)
		}
		prop.Owner = ps.Owner
		prop.Houses = ps.Houses
		prop.Hotel = ps.Hotel
		prop.Mortgaged = ps.Mortgaged
	}
	for _, pl := range g.players {
		for _, pos := range pl.Properties() {
			prop, exists := g.board.Property(pos)
			if !exists || prop.Owner != pl.ID {
				return corrupt("player %q claims property %d", pl.ID, pos)
			}
		}
	}
	return nil
}
