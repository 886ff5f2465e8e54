package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/cards"
	"github.com/landlord/landlord-server/internal/game/dice"
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/landlord/landlord-server/internal/game/rules"
	"go.uber.org/zap"
)

// DebtReason records why a player owes money.
type DebtReason string

const (
	DebtRent DebtReason = "RENT"
	DebtTax  DebtReason = "TAX"
	DebtCard DebtReason = "CARD"
	DebtBail DebtReason = "BAIL"
)

// Debt is a payment the current player could not cover when it fell due.
// An empty Creditor means the bank. Payees lists players each owed
// PerPayee out of Amount.
type Debt struct {
	Amount   int        `json:"amount"`
	Creditor string     `json:"creditor,omitempty"`
	Reason   DebtReason `json:"reason"`
	Payees   []string   `json:"payees,omitempty"`
	PerPayee int        `json:"per_payee,omitempty"`
}

// Game is one property-trading game. It is not safe for concurrent use:
// callers serialize every call per game (see Manager).
type Game struct {
	id     string
	name   string
	cfg    Config
	logger *zap.Logger

	board  *board.Board
	bank   *rules.Bank
	engine *rules.Engine
	cards  *cards.Manager
	source *dice.Source
	roller dice.Roller
	events *rules.EventBus

	players      map[string]*player.Player
	order        []string
	cursor       *rules.TurnCursor
	phase        Phase
	lastDice     dice.Result
	diceHistory  []dice.Result
	rolledDouble bool
	winner       string
	debt         *Debt
	trade        *rules.TradeOffer
	fault        error

	effects map[cards.Effect]effectHandler
}

// New creates a game in the WAITING phase. The seed drives dice rolls and
// deck shuffles.
func New(id, name string, cfg Config, seed int64, logger *zap.Logger) (*Game, error) {
	return build(id, name, cfg, dice.NewSource(seed), logger)
}

func build(id, name string, cfg Config, src *dice.Source, logger *zap.Logger) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b, err := board.New(cfg.layout())
	if err != nil {
		return nil, fmt.Errorf("build board: %w", err)
	}
	catalog, err := cfg.catalog()
	if err != nil {
		return nil, fmt.Errorf("build card catalog: %w", err)
	}

	rng := rand.New(src)
	bank := rules.NewBank(cfg.TotalHouses, cfg.TotalHotels)
	g := &Game{
		id:      id,
		name:    name,
		cfg:     cfg,
		logger:  logger,
		board:   b,
		bank:    bank,
		engine:  rules.NewEngine(b, bank, cfg.UnmortgageInterestPct),
		cards:   cards.NewManager(catalog, rng),
		source:  src,
		roller:  dice.New(rng),
		events:  rules.NewEventBus(),
		players: make(map[string]*player.Player),
		phase:   PhaseWaiting,
	}
	g.effects = g.effectTable()
	return g, nil
}

// ID returns the game id.
func (g *Game) ID() string { return g.id }

// Name returns the display name.
func (g *Game) Name() string { return g.name }

// Config returns the rules constants.
func (g *Game) Config() Config { return g.cfg }

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.phase }

// Board exposes the board for read-only presentation.
func (g *Game) Board() *board.Board { return g.board }

// Bank returns the building inventory.
func (g *Game) Bank() *rules.Bank { return g.bank }

// Events returns the bus domain events are published on.
func (g *Game) Events() *rules.EventBus { return g.events }

// Winner returns the winner id once the game is over.
func (g *Game) Winner() string { return g.winner }

// LastDice returns the most recent roll.
func (g *Game) LastDice() dice.Result { return g.lastDice }

// DiceHistory returns the most recent rolls, oldest first.
func (g *Game) DiceHistory() []dice.Result {
	return append([]dice.Result(nil), g.diceHistory...)
}

// PendingDebt returns the unpaid debt of the current player, if any.
func (g *Game) PendingDebt() (Debt, bool) {
	if g.debt == nil {
		return Debt{}, false
	}
	return *g.debt, true
}

// PendingTrade returns the open trade offer, if any.
func (g *Game) PendingTrade() (rules.TradeOffer, bool) {
	if g.trade == nil {
		return rules.TradeOffer{}, false
	}
	return g.trade.Clone(), true
}

// SetRoller replaces the dice. Used by tests and replays.
func (g *Game) SetRoller(r dice.Roller) {
	g.roller = r
}

// Fault returns the structural error raised by the last action, if any.
// A faulted game must not be trusted further.
func (g *Game) Fault() error { return g.fault }

// Player looks up a participant.
func (g *Game) Player(id string) (*player.Player, bool) {
	p, ok := g.players[id]
	return p, ok
}

// Players returns the participants in seating order.
func (g *Game) Players() []*player.Player {
	out := make([]*player.Player, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.players[id])
	}
	return out
}

// CurrentPlayerID returns whose turn it is, or "" outside of play.
func (g *Game) CurrentPlayerID() string {
	if g.cursor == nil {
		return ""
	}
	return g.cursor.Current()
}

// TurnNumber returns the 1-based turn counter, or 0 before the start.
func (g *Game) TurnNumber() int {
	if g.cursor == nil {
		return 0
	}
	return g.cursor.TurnNumber()
}

func (g *Game) setPhase(p Phase) {
	if g.phase == p {
		return
	}
	from := g.phase
	g.phase = p
	evt := rules.NewEvent(rules.EventPhaseChanged, g.id, g.CurrentPlayerID())
	evt.Metadata["from"] = string(from)
	evt.Metadata["to"] = string(p)
	g.events.Publish(evt)
}

func (g *Game) publish(evt rules.Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	g.events.Publish(evt)
}

func (g *Game) eventAt(t rules.EventType, playerID string, position, amount int) rules.Event {
	evt := rules.NewEventWithAmount(t, g.id, playerID, amount)
	evt.Position = position
	return evt
}

func (g *Game) recordRoll(r dice.Result) {
	g.lastDice = r
	g.diceHistory = append(g.diceHistory, r)
	if over := len(g.diceHistory) - g.cfg.DiceHistory; over > 0 {
		g.diceHistory = append([]dice.Result(nil), g.diceHistory[over:]...)
	}
}

// checkTurn verifies that playerID is the current player and the game is in
// one of the allowed phases. A DISCONNECTED player keeps the turn and may
// still act on it; only the external turn timeout (ForceResolve) moves a
// silent player along.
func (g *Game) checkTurn(playerID string, allowed ...Phase) (*player.Player, Result, bool) {
	pl, ok := g.players[playerID]
	if !ok {
		return nil, reject(rules.ResultInvalidPlayer, "unknown player %q", playerID), false
	}
	if pl.IsBankrupt() {
		return nil, reject(rules.ResultInvalidPlayer, "%s is bankrupt", pl.Name), false
	}
	if !g.phase.InPlay() {
		return nil, reject(rules.ResultInvalidPhase, "game is %s", g.phase), false
	}
	if g.CurrentPlayerID() != playerID {
		return nil, reject(rules.ResultNotYourTurn, "it is not %s's turn", pl.Name), false
	}
	for _, p := range allowed {
		if g.phase == p {
			return pl, Result{}, true
		}
	}
	return nil, reject(rules.ResultInvalidPhase, "cannot do that during %s", g.phase), false
}

// activePlayers returns the non-bankrupt players in seating order.
func (g *Game) activePlayers() []*player.Player {
	var out []*player.Player
	for _, id := range g.order {
		if p := g.players[id]; !p.IsBankrupt() {
			out = append(out, p)
		}
	}
	return out
}

func (g *Game) eligible(id string) bool {
	p, ok := g.players[id]
	return ok && !p.IsBankrupt()
}

func (g *Game) setFault(err error) {
	if g.fault == nil {
		g.fault = err
	}
	if g.logger != nil {
		g.logger.Error("game state fault",
			zap.String("game_id", g.id),
			zap.Error(err),
		)
	}
}
