package cards

import (
	"fmt"

	"github.com/landlord/landlord-server/internal/game/board"
)

// Effect is the kind of action a card performs. The game dispatches on it
// through a handler table.
type Effect int

const (
	EffectCollectMoney Effect = iota
	EffectPayMoney
	EffectCollectFromPlayers
	EffectPayToPlayers
	EffectMoveTo
	EffectMoveForward
	EffectMoveBack
	EffectGoToJail
	EffectGetOutOfJail
	EffectRepairs
)

var effectNames = map[Effect]string{
	EffectCollectMoney:       "COLLECT_MONEY",
	EffectPayMoney:           "PAY_MONEY",
	EffectCollectFromPlayers: "COLLECT_FROM_PLAYERS",
	EffectPayToPlayers:       "PAY_TO_PLAYERS",
	EffectMoveTo:             "MOVE_TO",
	EffectMoveForward:        "MOVE_FORWARD",
	EffectMoveBack:           "MOVE_BACK",
	EffectGoToJail:           "GO_TO_JAIL",
	EffectGetOutOfJail:       "GET_OUT_OF_JAIL",
	EffectRepairs:            "REPAIRS",
}

func (e Effect) String() string {
	if name, ok := effectNames[e]; ok {
		return name
	}
	return fmt.Sprintf("EFFECT_%d", int(e))
}

// Sentinel MOVE_TO targets.
const (
	TargetNearestUtility  = -1
	TargetNearestRailroad = -2
)

// Card is an immutable card template. Text may contain {space_N}
// placeholders that presentation code resolves against the board.
type Card struct {
	ID       int        `json:"id"`
	Deck     board.Deck `json:"deck"`
	Text     string     `json:"text"`
	Effect   Effect     `json:"effect"`
	Value    int        `json:"value,omitempty"`
	PerHouse int        `json:"per_house,omitempty"`
	PerHotel int        `json:"per_hotel,omitempty"`
	Keep     bool       `json:"keep,omitempty"`
}

// RepairCost returns what the card charges for the given building counts.
func (c Card) RepairCost(houses, hotels int) int {
	return houses*c.PerHouse + hotels*c.PerHotel
}
