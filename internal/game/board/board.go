package board

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidLayout is returned when a layout cannot form a playable board.
var ErrInvalidLayout = errors.New("invalid board layout")

// Property is the mutable ownership and development state of an ownable space.
type Property struct {
	Space
	Owner     string `json:"owner,omitempty"`
	Houses    int    `json:"houses"`
	Hotel     bool   `json:"hotel"`
	Mortgaged bool   `json:"mortgaged"`
}

// Owned reports whether a player holds the property.
func (p *Property) Owned() bool {
	return p.Owner != ""
}

// HasBuildings reports whether any house or hotel stands on the property.
func (p *Property) HasBuildings() bool {
	return p.Houses > 0 || p.Hotel
}

// Level is the development level: 0 bare, 1-4 houses, 5 hotel.
func (p *Property) Level() int {
	if p.Hotel {
		return MaxHouses + 1
	}
	return p.Houses
}

func (p *Property) reset() {
	p.Owner = ""
	p.Houses = 0
	p.Hotel = false
	p.Mortgaged = false
}

// Board holds the static layout and the per-game property state.
type Board struct {
	spaces     []Space
	properties map[int]*Property
	jail       int
	goToJail   int
}

// New builds a board from a layout. Positions must be 0..len-1 in order and
// the layout must contain GO, JAIL and GO_TO_JAIL corners.
func New(layout []Space) (*Board, error) {
	if len(layout) == 0 {
		return nil, fmt.Errorf("%w: empty layout", ErrInvalidLayout)
	}
	b := &Board{
		spaces:     make([]Space, len(layout)),
		properties: make(map[int]*Property),
		jail:       -1,
		goToJail:   -1,
	}
	copy(b.spaces, layout)

	for i, s := range b.spaces {
		if s.Position != i {
			return nil, fmt.Errorf("%w: space %q at index %d has position %d", ErrInvalidLayout, s.Name, i, s.Position)
		}
		switch s.Corner {
		case CornerJail:
			b.jail = i
		case CornerGoToJail:
			b.goToJail = i
		}
		if s.Kind.Ownable() {
			if s.Price <= 0 {
				return nil, fmt.Errorf("%w: ownable space %q has no price", ErrInvalidLayout, s.Name)
			}
			b.properties[i] = &Property{Space: s}
		}
	}
	if b.spaces[0].Corner != CornerGo {
		return nil, fmt.Errorf("%w: position 0 must be GO", ErrInvalidLayout)
	}
	if b.jail < 0 || b.goToJail < 0 {
		return nil, fmt.Errorf("%w: missing jail corners", ErrInvalidLayout)
	}
	return b, nil
}

// NewStandard builds the classic 40-space board.
func NewStandard() *Board {
	b, err := New(StandardLayout())
	if err != nil {
		panic(err)
	}
	return b
}

// Size returns the number of spaces.
func (b *Board) Size() int {
	return len(b.spaces)
}

// JailPosition returns the position of the jail corner.
func (b *Board) JailPosition() int {
	return b.jail
}

// GoToJailPosition returns the position of the go-to-jail corner.
func (b *Board) GoToJailPosition() int {
	return b.goToJail
}

// Space returns the static space at pos.
func (b *Board) Space(pos int) (Space, bool) {
	if pos < 0 || pos >= len(b.spaces) {
		return Space{}, false
	}
	return b.spaces[pos], true
}

// Spaces returns a copy of the layout for presentation.
func (b *Board) Spaces() []Space {
	out := make([]Space, len(b.spaces))
	copy(out, b.spaces)
	return out
}

// Property returns the mutable state of the ownable space at pos.
func (b *Board) Property(pos int) (*Property, bool) {
	p, ok := b.properties[pos]
	return p, ok
}

// Properties returns all ownable spaces ordered by position.
func (b *Board) Properties() []*Property {
	out := make([]*Property, 0, len(b.properties))
	for _, p := range b.properties {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// GroupProperties returns the properties of a group ordered by position.
func (b *Board) GroupProperties(group Group) []*Property {
	var out []*Property
	for _, p := range b.Properties() {
		if p.Group == group {
			out = append(out, p)
		}
	}
	return out
}

// HasMonopoly reports whether owner holds every property of group.
// Mortgaged properties still count toward ownership.
func (b *Board) HasMonopoly(owner string, group Group) bool {
	if owner == "" {
		return false
	}
	props := b.GroupProperties(group)
	if len(props) == 0 {
		return false
	}
	for _, p := range props {
		if p.Owner != owner {
			return false
		}
	}
	return true
}

// OwnedCount counts properties of kind held by owner, mortgaged included.
func (b *Board) OwnedCount(owner string, kind SpaceKind) int {
	n := 0
	for _, p := range b.properties {
		if p.Owner == owner && p.Kind == kind {
			n++
		}
	}
	return n
}

// CalculateRent returns the rent owed by landingPlayer on pos for the given
// dice total. Unowned, self-owned, and mortgaged spaces charge nothing.
func (b *Board) CalculateRent(pos, diceTotal int, landingPlayer string) int {
	p, ok := b.properties[pos]
	if !ok || !p.Owned() || p.Owner == landingPlayer || p.Mortgaged {
		return 0
	}

	switch p.Kind {
	case KindProperty:
		level := p.Level()
		rent := p.Rents[level]
		if level == 0 && b.HasMonopoly(p.Owner, p.Group) {
			rent *= 2
		}
		return rent
	case KindRailroad:
		k := b.OwnedCount(p.Owner, KindRailroad)
		return 25 << (k - 1)
	case KindUtility:
		if b.OwnedCount(p.Owner, KindUtility) >= 2 {
			return diceTotal * 10
		}
		return diceTotal * 4
	}
	return 0
}

// BuildingCounts returns the number of houses and hotels standing on the board.
func (b *Board) BuildingCounts() (houses, hotels int) {
	for _, p := range b.properties {
		houses += p.Houses
		if p.Hotel {
			hotels++
		}
	}
	return houses, hotels
}

// Reset clears all ownership and development.
func (b *Board) Reset() {
	for _, p := range b.properties {
		p.reset()
	}
}
