package cards

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/landlord/landlord-server/internal/game/board"
)

var (
	// ErrDeckEmpty means neither the draw pile nor the discard pile holds a card.
	ErrDeckEmpty = errors.New("deck has no drawable cards")
	// ErrUnknownCard means a card id is not part of the catalog.
	ErrUnknownCard = errors.New("unknown card")
)

// Deck is a shuffle-with-discard pile of card ids.
type Deck struct {
	name    board.Deck
	draw    []int
	discard []int
}

// Name returns the deck category.
func (d *Deck) Name() board.Deck {
	return d.name
}

// Remaining returns the number of cards left in the draw pile.
func (d *Deck) Remaining() int {
	return len(d.draw)
}

// Discarded returns the number of cards in the discard pile.
func (d *Deck) Discarded() int {
	return len(d.discard)
}

// Order returns copies of the draw and discard piles.
func (d *Deck) Order() (draw, discard []int) {
	draw = append([]int(nil), d.draw...)
	discard = append([]int(nil), d.discard...)
	return draw, discard
}

// Manager owns both decks and the catalog they draw from.
type Manager struct {
	catalog *Catalog
	rng     *rand.Rand
	decks   map[board.Deck]*Deck
}

// NewManager creates both decks from catalog and shuffles them with rng.
func NewManager(catalog *Catalog, rng *rand.Rand) *Manager {
	m := &Manager{
		catalog: catalog,
		rng:     rng,
		decks:   make(map[board.Deck]*Deck, 2),
	}
	for _, name := range []board.Deck{board.DeckChance, board.DeckCommunityChest} {
		d := &Deck{name: name, draw: catalog.IDs(name)}
		m.shuffle(d.draw)
		m.decks[name] = d
	}
	return m
}

// Catalog returns the card templates.
func (m *Manager) Catalog() *Catalog {
	return m.catalog
}

// Deck returns one of the decks.
func (m *Manager) Deck(name board.Deck) (*Deck, bool) {
	d, ok := m.decks[name]
	return d, ok
}

func (m *Manager) shuffle(ids []int) {
	m.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

// Draw takes the front card of a deck. An empty draw pile is refilled by
// shuffling the discard pile. Cards that are not kept go straight to discard.
func (m *Manager) Draw(name board.Deck) (Card, error) {
	d, ok := m.decks[name]
	if !ok {
		return Card{}, fmt.Errorf("unknown deck %q", name)
	}
	if len(d.draw) == 0 {
		d.draw, d.discard = d.discard, nil
		m.shuffle(d.draw)
	}
	if len(d.draw) == 0 {
		return Card{}, fmt.Errorf("%s: %w", name, ErrDeckEmpty)
	}

	id := d.draw[0]
	d.draw = d.draw[1:]
	card, ok := m.catalog.Card(id)
	if !ok {
		return Card{}, fmt.Errorf("%s card %d: %w", name, id, ErrUnknownCard)
	}
	if !card.Keep {
		d.discard = append(d.discard, id)
	}
	return card, nil
}

// Return puts a previously kept card back into its deck's discard pile.
func (m *Manager) Return(id int) error {
	card, ok := m.catalog.Card(id)
	if !ok {
		return fmt.Errorf("card %d: %w", id, ErrUnknownCard)
	}
	d := m.decks[card.Deck]
	d.discard = append(d.discard, id)
	return nil
}

// Restore replaces the pile order of a deck. Used when resuming a game.
func (m *Manager) Restore(name board.Deck, draw, discard []int) error {
	d, ok := m.decks[name]
	if !ok {
		return fmt.Errorf("unknown deck %q", name)
	}
	for _, id := range append(append([]int(nil), draw...), discard...) {
		card, ok := m.catalog.Card(id)
		if !ok {
			return fmt.Errorf("card %d: %w", id, ErrUnknownCard)
		}
		if card.Deck != name {
			return fmt.Errorf("card %d belongs to %s, not %s", id, card.Deck, name)
		}
	}
	d.draw = append([]int(nil), draw...)
	d.discard = append([]int(nil), discard...)
	return nil
}
