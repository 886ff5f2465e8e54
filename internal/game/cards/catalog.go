package cards

import (
	"fmt"

	"github.com/landlord/landlord-server/internal/game/board"
)

// Catalog is the full set of card templates for both decks, keyed by id.
type Catalog struct {
	cards map[int]Card
	order map[board.Deck][]int
}

// NewCatalog indexes cards. Ids must be unique and every card must name a deck.
func NewCatalog(cards []Card) (*Catalog, error) {
	c := &Catalog{
		cards: make(map[int]Card, len(cards)),
		order: make(map[board.Deck][]int),
	}
	for _, card := range cards {
		if _, dup := c.cards[card.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %d", card.ID)
		}
		if card.Deck != board.DeckChance && card.Deck != board.DeckCommunityChest {
			return nil, fmt.Errorf("card %d has unknown deck %q", card.ID, card.Deck)
		}
		c.cards[card.ID] = card
		c.order[card.Deck] = append(c.order[card.Deck], card.ID)
	}
	return c, nil
}

// Card looks up a template by id.
func (c *Catalog) Card(id int) (Card, bool) {
	card, ok := c.cards[id]
	return card, ok
}

// IDs returns the card ids of a deck in catalog order.
func (c *Catalog) IDs(deck board.Deck) []int {
	ids := make([]int, len(c.order[deck]))
	copy(ids, c.order[deck])
	return ids
}

// DefaultCatalog returns the sixteen chance and sixteen community chest cards.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultCards())
	if err != nil {
		panic(err)
	}
	return c
}

func defaultCards() []Card {
	ch := board.DeckChance
	cc := board.DeckCommunityChest
	return []Card{
		{ID: 1, Deck: ch, Text: "Advance to GO. Collect $200.", Effect: EffectMoveTo, Value: 0},
		{ID: 2, Deck: ch, Text: "Advance to {space_11}. If you pass GO, collect $200.", Effect: EffectMoveTo, Value: 11},
		{ID: 3, Deck: ch, Text: "Go back 3 spaces.", Effect: EffectMoveBack, Value: 3},
		{ID: 4, Deck: ch, Text: "Take a trip to {space_5}. If you pass GO, collect $200.", Effect: EffectMoveTo, Value: 5},
		{ID: 5, Deck: ch, Text: "You won the lottery. Collect $50.", Effect: EffectCollectMoney, Value: 50},
		{ID: 6, Deck: ch, Text: "Your building loan matures. Collect $100.", Effect: EffectCollectMoney, Value: 100},
		{ID: 7, Deck: ch, Text: "You found an old collectible. Collect $25.", Effect: EffectCollectMoney, Value: 25},
		{ID: 8, Deck: ch, Text: "Get Out of Jail Free. This card may be kept until needed or traded.", Effect: EffectGetOutOfJail, Keep: true},
		{ID: 9, Deck: ch, Text: "Advance to the nearest railroad. If unowned, you may buy it.", Effect: EffectMoveTo, Value: TargetNearestRailroad},
		{ID: 10, Deck: ch, Text: "Advance to the nearest railroad. If unowned, you may buy it.", Effect: EffectMoveTo, Value: TargetNearestRailroad},
		{ID: 11, Deck: ch, Text: "Advance to the nearest utility. If unowned, you may buy it.", Effect: EffectMoveTo, Value: TargetNearestUtility},
		{ID: 12, Deck: ch, Text: "Speeding fine. Pay $75.", Effect: EffectPayMoney, Value: 75},
		{ID: 13, Deck: ch, Text: "You have been elected chairman of the board. Pay each player $50.", Effect: EffectPayToPlayers, Value: 50},
		{ID: 14, Deck: ch, Text: "Storm damage. Pay $100.", Effect: EffectPayMoney, Value: 100},
		{ID: 15, Deck: ch, Text: "Make general repairs on all your property. Pay $25 per house and $100 per hotel.", Effect: EffectRepairs, PerHouse: 25, PerHotel: 100},
		{ID: 16, Deck: ch, Text: "Go directly to Jail. Do not pass GO, do not collect $200.", Effect: EffectGoToJail},

		{ID: 17, Deck: cc, Text: "Advance to GO. Collect $200.", Effect: EffectMoveTo, Value: 0},
		{ID: 18, Deck: cc, Text: "Bank error in your favor. Collect $75.", Effect: EffectCollectMoney, Value: 75},
		{ID: 19, Deck: cc, Text: "From sale of stock you get $50.", Effect: EffectCollectMoney, Value: 50},
		{ID: 20, Deck: cc, Text: "You won second prize in a beauty contest. Collect $100.", Effect: EffectCollectMoney, Value: 100},
		{ID: 21, Deck: cc, Text: "Income tax refund. Collect $50.", Effect: EffectCollectMoney, Value: 50},
		{ID: 22, Deck: cc, Text: "Receive $25 consultancy fee.", Effect: EffectCollectMoney, Value: 25},
		{ID: 23, Deck: cc, Text: "It is your birthday. Collect $10 from every player.", Effect: EffectCollectFromPlayers, Value: 10},
		{ID: 24, Deck: cc, Text: "Get Out of Jail Free. This card may be kept until needed or traded.", Effect: EffectGetOutOfJail, Keep: true},
		{ID: 25, Deck: cc, Text: "Doctor's fees. Pay $50.", Effect: EffectPayMoney, Value: 50},
		{ID: 26, Deck: cc, Text: "Hospital fees. Pay $100.", Effect: EffectPayMoney, Value: 100},
		{ID: 27, Deck: cc, Text: "School fees. Pay $75.", Effect: EffectPayMoney, Value: 75},
		{ID: 28, Deck: cc, Text: "You broke a shop window. Pay $50.", Effect: EffectPayMoney, Value: 50},
		{ID: 29, Deck: cc, Text: "Parking fine. Pay $100.", Effect: EffectPayMoney, Value: 100},
		{ID: 30, Deck: cc, Text: "Storage fees are due. Pay $25.", Effect: EffectPayMoney, Value: 25},
		{ID: 31, Deck: cc, Text: "You are assessed for street repairs. Pay $40 per house and $115 per hotel.", Effect: EffectRepairs, PerHouse: 40, PerHotel: 115},
		{ID: 32, Deck: cc, Text: "Go directly to Jail. Do not pass GO, do not collect $200.", Effect: EffectGoToJail},
	}
}
