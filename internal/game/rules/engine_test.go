package rules

import (
	"testing"

	"github.com/landlord/landlord-server/internal/game/board"
	"github.com/landlord/landlord-server/internal/game/player"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	board  *board.Board
	bank   *Bank
	engine *Engine
	alice  *player.Player
	bob    *player.Player
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := board.NewStandard()
	bank := NewBank(32, 12)
	return &fixture{
		board:  b,
		bank:   bank,
		engine: NewEngine(b, bank, 10),
		alice:  player.New("alice", "Alice", 1500),
		bob:    player.New("bob", "Bob", 1500),
	}
}

func (f *fixture) give(t *testing.T, pl *player.Player, positions ...int) {
	t.Helper()
	for _, pos := range positions {
		prop, ok := f.board.Property(pos)
		require.True(t, ok)
		prop.Owner = pl.ID
		pl.AddProperty(pos)
	}
}

func (f *fixture) prop(pos int) *board.Property {
	p, _ := f.board.Property(pos)
	return p
}

func TestBuildHouseRequiresOwnershipAndMonopoly(t *testing.T) {
	f := newFixture(t)

	v := f.engine.ValidateBuildHouse(f.alice, 1)
	assert.Equal(t, ResultNotOwner, v.Result)

	f.give(t, f.alice, 1)
	v = f.engine.ValidateBuildHouse(f.alice, 1)
	assert.Equal(t, ResultNoMonopoly, v.Result)

	f.give(t, f.alice, 3)
	v = f.engine.ValidateBuildHouse(f.alice, 1)
	assert.True(t, v.Valid, v.Message)
}

func TestCannotBuildOnRailroadOrUtility(t *testing.T) {
	f := newFixture(t)
	f.give(t, f.alice, 5, 15, 25, 35, 12, 28)

	for _, pos := range []int{5, 12} {
		v := f.engine.ValidateBuildHouse(f.alice, pos)
		assert.Equal(t, ResultInvalidProperty, v.Result)
		v = f.engine.ValidateBuildHotel(f.alice, pos)
		assert.Equal(t, ResultInvalidProperty, v.Result)
	}
	assert.Equal(t, ResultInvalidProperty, f.engine.ValidateBuildHouse(f.alice, 0).Result)
	assert.Equal(t, ResultInvalidProperty, f.engine.ValidateBuildHouse(f.alice, 99).Result)
}

func TestEvenBuildingTwoPropertyGroup(t *testing.T) {
	f := newFixture(t)
	f.give(t, f.alice, 1, 3)

	f.prop(1).Houses = 1
	v := f.engine.ValidateBuildHouse(f.alice, 1)
	assert.Equal(t, ResultUnevenBuilding, v.Result)
	assert.True(t, f.engine.ValidateBuildHouse(f.alice, 3).Valid)

	f.prop(3).Houses = 1
	assert.True(t, f.engine.ValidateBuildHouse(f.alice, 1).Valid)
	assert.True(t, f.engine.ValidateBuildHouse(f.alice, 3).Valid)
}

func TestEvenBuildingThreePropertyGroup(t *testing.T) {
	f := newFixture(t)
	f.give(t, f.alice, 6, 8, 9)
	f.prop(6).Houses = 2
	f.prop(8).Houses = 2
	f.prop(9).Houses = 1

	assert.Equal(t, ResultUnevenBuilding, f.engine.ValidateBuildHouse(f.alice, 6).Result)
	assert.True(t, f.engine.ValidateBuildHouse(f.alice, 9).Valid)
}

func TestCannotBuildWithMortgagedGroupMember(t *testing.T) {
	f := newFixture(t)
	f.give(t, f.alice, 1, 3)
	f.prop(3).Mortgaged = true

	assert.Equal(t, ResultPropertyMortgaged, f.engine.ValidateBuildHouse(f.alice, 1).Result)
	assert.Equal(t, ResultPropertyMortgaged, f.engine.ValidateBuildHouse(f.alice, 3).Result)
}

func TestHouseShortage(t *testing.T) {
	f := newFixture(t)
	f.give(t, f.alice, 1, 3)
	f.bank.Set(0, 12)

	assert.Equal(t, ResultNoBuildingsAvailable, f.engine.ValidateBuildHouse(f.alice, 1).Result)
}

func TestBuildHouseInsufficientFunds(t *testing.T) {
	f := newFixture(t)
	f.give(t, f.alice, 1, 3)
	f.alice.Cash = 49

	assert.Equal(t, ResultInsufficientFunds, f.engine.ValidateBuildHouse(f.alice, 1).Result)
}

func TestHotelRequiresFourHousesEverywhere(t *testing.T) {
	f := newFixture(t)
	f.give(t, f.alice, 1, 3)

	f.prop(1).Houses = 4
	f.prop(3).Houses = 3
	assert.Equal(t, ResultUnevenBuilding, f.engine.ValidateBuildHotel(f.alice, 1).Result)
	assert.Equal(t, ResultUnevenBuilding, f.engine.ValidateBuildHotel(f.alice, 3).Result)

	f.prop(3).Houses = 4
	assert.True(t, f.engine.ValidateBuildHotel(f.alice, 1).Valid)
	assert.Equal(t, ResultMaxDevelopment, f.engine.ValidateBuildHouse(f.alice, 1).Result)
}

func TestHotelShortageAndMaxDevelopment(t *testing.T) {
	f := newFixture(t)
	f.give(t, f.alice, 1, 3)
	f.prop(1).Houses = 4
	f.prop(3).Houses = 4

	f.bank.Set(32, 0)
	assert.Equal(t, ResultNoBuildingsAvailable, f.engine.ValidateBuildHotel(f.alice, 1).Result)

	f.bank.Set(32, 12)
	f.prop(1).Houses = 0
	f.prop(1).Hotel = true
	assert.Equal(t, ResultMaxDevelopment, f.engine.ValidateBuildHotel(f.alice, 1).Result)
	assert.Equal(t, ResultMaxDevelopment, f.engine.ValidateBuildHouse(f.alice, 1).Result)
}

func TestEvenSelling(t *testing.T) {
	f := newFixture(t)
	f.give(t, f.alice, 1, 3)
	f.prop(1).Houses = 3
	f.prop(3).Houses = 2

	assert.True(t, f.engine.ValidateSellBuilding(f.alice, 1).Valid)
	assert.Equal(t, ResultUnevenBuilding, f.engine.ValidateSellBuilding(f.alice, 3).Result)

	f.prop(1).Houses = 2
	assert.True(t, f.engine.ValidateSellBuilding(f.alice, 1).Valid)
	assert.True(t, f.engine.ValidateSellBuilding(f.alice, 3).Valid)
}

func TestSellBuildingEdgeCases(t *testing.T) {
	f := newFixture(t)
	f.give(t, f.alice, 1, 3)

	assert.Equal(t, ResultNoBuildings, f.engine.ValidateSellBuilding(f.alice, 1).Result)
	assert.Equal(t, ResultNotOwner, f.engine.ValidateSellBuilding(f.bob, 1).Result)

	f.prop(1).Hotel = true
	f.prop(3).Hotel = true
	f.bank.Set(3, 10)
	assert.Equal(t, ResultNoBuildingsAvailable, f.engine.ValidateSellBuilding(f.alice, 1).Result)
	f.bank.Set(4, 10)
	assert.True(t, f.engine.ValidateSellBuilding(f.alice, 1).Valid)
}

func TestMortgageValidation(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, ResultNotOwner, f.engine.ValidateMortgage(f.alice, 1).Result)
	assert.Equal(t, ResultInvalidProperty, f.engine.ValidateMortgage(f.alice, 4).Result)

	f.give(t, f.alice, 1, 3, 5)
	assert.True(t, f.engine.ValidateMortgage(f.alice, 5).Valid)

	f.prop(3).Houses = 1
	assert.Equal(t, ResultHasBuildings, f.engine.ValidateMortgage(f.alice, 1).Result)

	f.prop(3).Houses = 0
	f.prop(1).Mortgaged = true
	assert.Equal(t, ResultPropertyMortgaged, f.engine.ValidateMortgage(f.alice, 1).Result)
}

func TestUnmortgageValidation(t *testing.T) {
	f := newFixture(t)
	f.give(t, f.alice, 39)
	bw := f.prop(39)

	assert.Equal(t, ResultNotMortgaged, f.engine.ValidateUnmortgage(f.alice, 39).Result)

	bw.Mortgaged = true
	assert.Equal(t, 220, f.engine.UnmortgageCost(bw))

	f.alice.Cash = 219
	assert.Equal(t, ResultInsufficientFunds, f.engine.ValidateUnmortgage(f.alice, 39).Result)
	f.alice.Cash = 220
	assert.True(t, f.engine.ValidateUnmortgage(f.alice, 39).Valid)
}

func TestBankInventory(t *testing.T) {
	bank := NewBank(32, 12)
	assert.True(t, bank.TakeHouse())
	assert.True(t, bank.TakeHouse())
	assert.Equal(t, 30, bank.HousesAvailable())

	bank.ReturnHouses(10)
	assert.Equal(t, 32, bank.HousesAvailable(), "never above total")

	assert.False(t, bank.TakeHouses(33))
	assert.Equal(t, 32, bank.HousesAvailable())

	bank.Set(0, 0)
	assert.False(t, bank.TakeHouse())
	assert.False(t, bank.TakeHotel())
	bank.ReturnHotel()
	assert.Equal(t, 1, bank.HotelsAvailable())
}
