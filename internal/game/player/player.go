package player

import (
	"fmt"
	"sort"
)

// State is the lifecycle state of a participant.
type State int

const (
	StateActive State = iota
	StateInJail
	StateBankrupt
	StateDisconnected
)

var stateNames = map[State]string{
	StateActive:       "ACTIVE",
	StateInJail:       "IN_JAIL",
	StateBankrupt:     "BANKRUPT",
	StateDisconnected: "DISCONNECTED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int(s))
}

// ParseState converts a state name back into a State.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown player state %q", name)
}

// Player is the mutable per-participant record. Players are never removed
// from a game; bankruptcy is terminal.
type Player struct {
	ID                 string
	Name               string
	Cash               int
	Position           int
	State              State
	JailTurns          int
	ConsecutiveDoubles int
	HasRolled          bool

	properties  map[int]struct{}
	escapeCards []int
	// state to return to when a disconnected player reconnects
	resumeState State
}

// New creates an active player at GO with startingCash.
func New(id, name string, startingCash int) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		Cash:       startingCash,
		State:      StateActive,
		properties: make(map[int]struct{}),
	}
}

// IsBankrupt reports whether the player is out of the game.
func (p *Player) IsBankrupt() bool {
	return p.State == StateBankrupt
}

// InJail reports whether the player is serving jail time, including while
// disconnected from a jailed state.
func (p *Player) InJail() bool {
	return p.State == StateInJail || (p.State == StateDisconnected && p.resumeState == StateInJail)
}

// CanAfford reports whether cash covers amount.
func (p *Player) CanAfford(amount int) bool {
	return p.Cash >= amount
}

// AddCash credits the player.
func (p *Player) AddCash(amount int) {
	p.Cash += amount
}

// RemoveCash debits the player if affordable and reports success.
func (p *Player) RemoveCash(amount int) bool {
	if !p.CanAfford(amount) {
		return false
	}
	p.Cash -= amount
	return true
}

// Advance moves forward by steps on a board of size spaces and reports
// whether the move passed or landed on GO.
func (p *Player) Advance(steps, size int) bool {
	next := p.Position + steps
	p.Position = ((next % size) + size) % size
	return steps > 0 && next >= size
}

// MoveTo moves forward to target and reports whether GO was passed on the way.
func (p *Player) MoveTo(target int) bool {
	passed := target < p.Position
	p.Position = target
	return passed
}

// MoveBack moves backward without ever collecting salary.
func (p *Player) MoveBack(steps, size int) {
	p.Position = ((p.Position-steps)%size + size) % size
}

// SendToJail places the player in jail and clears turn counters.
func (p *Player) SendToJail(jailPosition int) {
	p.Position = jailPosition
	p.JailTurns = 0
	p.ConsecutiveDoubles = 0
	if p.State == StateDisconnected {
		p.resumeState = StateInJail
		return
	}
	p.State = StateInJail
}

// Release frees the player from jail.
func (p *Player) Release() {
	p.JailTurns = 0
	if p.State == StateDisconnected {
		p.resumeState = StateActive
		return
	}
	if p.State == StateInJail {
		p.State = StateActive
	}
}

// Disconnect marks the player as disconnected, remembering the prior state.
func (p *Player) Disconnect() {
	if p.State == StateBankrupt || p.State == StateDisconnected {
		return
	}
	p.resumeState = p.State
	p.State = StateDisconnected
}

// Reconnect restores the state held before disconnecting.
func (p *Player) Reconnect() {
	if p.State != StateDisconnected {
		return
	}
	p.State = p.resumeState
	p.resumeState = StateActive
}

// ResumeState returns the state a disconnected player will return to.
func (p *Player) ResumeState() State {
	return p.resumeState
}

// SetResumeState is used when restoring a disconnected player from a snapshot.
func (p *Player) SetResumeState(s State) {
	p.resumeState = s
}

// Bankrupt marks the player as out of the game.
func (p *Player) Bankrupt() {
	p.State = StateBankrupt
	p.Cash = 0
	p.JailTurns = 0
	p.ConsecutiveDoubles = 0
	p.resumeState = StateActive
}

// AddProperty records ownership of the property at pos.
func (p *Player) AddProperty(pos int) {
	p.properties[pos] = struct{}{}
}

// RemoveProperty drops ownership of the property at pos.
func (p *Player) RemoveProperty(pos int) {
	delete(p.properties, pos)
}

// OwnsProperty reports whether the player holds pos.
func (p *Player) OwnsProperty(pos int) bool {
	_, ok := p.properties[pos]
	return ok
}

// Properties returns the owned positions in ascending order.
func (p *Player) Properties() []int {
	out := make([]int, 0, len(p.properties))
	for pos := range p.properties {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}

// ClearProperties drops every ownership record.
func (p *Player) ClearProperties() {
	p.properties = make(map[int]struct{})
}

// AddEscapeCard retains a get-out-of-jail card.
func (p *Player) AddEscapeCard(cardID int) {
	p.escapeCards = append(p.escapeCards, cardID)
}

// TakeEscapeCard removes and returns the most recently retained card.
func (p *Player) TakeEscapeCard() (int, bool) {
	n := len(p.escapeCards)
	if n == 0 {
		return 0, false
	}
	id := p.escapeCards[n-1]
	p.escapeCards = p.escapeCards[:n-1]
	return id, true
}

// EscapeCards returns a copy of the retained card ids.
func (p *Player) EscapeCards() []int {
	return append([]int(nil), p.escapeCards...)
}

// EscapeCardCount returns how many escape cards are retained.
func (p *Player) EscapeCardCount() int {
	return len(p.escapeCards)
}
