package board

import "fmt"

// SpaceKind classifies a board space.
type SpaceKind int

const (
	KindCorner SpaceKind = iota
	KindProperty
	KindRailroad
	KindUtility
	KindTax
	KindCard
)

var spaceKindNames = map[SpaceKind]string{
	KindCorner:   "CORNER",
	KindProperty: "PROPERTY",
	KindRailroad: "RAILROAD",
	KindUtility:  "UTILITY",
	KindTax:      "TAX",
	KindCard:     "CARD",
}

func (k SpaceKind) String() string {
	if name, ok := spaceKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND_%d", int(k))
}

// Ownable reports whether spaces of this kind can be bought.
func (k SpaceKind) Ownable() bool {
	return k == KindProperty || k == KindRailroad || k == KindUtility
}

// Corner identifies the four corner spaces.
type Corner string

const (
	CornerGo          Corner = "GO"
	CornerJail        Corner = "JAIL"
	CornerFreeParking Corner = "FREE_PARKING"
	CornerGoToJail    Corner = "GO_TO_JAIL"
)

// Deck names the card deck drawn from a card space.
type Deck string

const (
	DeckChance         Deck = "CHANCE"
	DeckCommunityChest Deck = "COMMUNITY_CHEST"
)

// Group is a color group of streets. Railroads and utilities use their own
// pseudo-groups so monopoly checks work uniformly.
type Group string

const (
	GroupBrown     Group = "BROWN"
	GroupLightBlue Group = "LIGHT_BLUE"
	GroupPink      Group = "PINK"
	GroupOrange    Group = "ORANGE"
	GroupRed       Group = "RED"
	GroupYellow    Group = "YELLOW"
	GroupGreen     Group = "GREEN"
	GroupDarkBlue  Group = "DARK_BLUE"
	GroupRailroad  Group = "RAILROAD"
	GroupUtility   Group = "UTILITY"
)

// MaxHouses is the number of houses a street holds before it can take a hotel.
const MaxHouses = 4

// Space is the static description of a board position.
type Space struct {
	Position  int       `json:"position"`
	Name      string    `json:"name"`
	Kind      SpaceKind `json:"kind"`
	Group     Group     `json:"group,omitempty"`
	Price     int       `json:"price,omitempty"`
	Rents     [6]int    `json:"rents,omitempty"` // base, 1-4 houses, hotel
	HouseCost int       `json:"house_cost,omitempty"`
	Tax       int       `json:"tax,omitempty"`
	Deck      Deck      `json:"deck,omitempty"`
	Corner    Corner    `json:"corner,omitempty"`
}

// MortgageValue is the cash a mortgage raises for this space.
func (s Space) MortgageValue() int {
	return s.Price / 2
}
