package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalAssets(t *testing.T) {
	f := newFixture(t)
	f.alice.Cash = 500
	assert.Equal(t, 500, f.engine.TotalAssets(f.alice))

	f.give(t, f.alice, 1)
	assert.Equal(t, 530, f.engine.TotalAssets(f.alice))

	f.prop(1).Mortgaged = true
	assert.Equal(t, 500, f.engine.TotalAssets(f.alice))

	f.prop(1).Mortgaged = false
	f.prop(1).Houses = 2
	assert.Equal(t, 500+30+2*25, f.engine.TotalAssets(f.alice))
}

func TestCanPlayerPay(t *testing.T) {
	f := newFixture(t)
	f.alice.Cash = 100
	assert.True(t, f.engine.CanPlayerPay(f.alice, 50))

	f.alice.Cash = 50
	assert.False(t, f.engine.CanPlayerPay(f.alice, 100))

	f.give(t, f.alice, 1)
	assert.True(t, f.engine.CanPlayerPay(f.alice, 80))
	assert.False(t, f.engine.CanPlayerPay(f.alice, 81))
}

func TestNearestRailroadAndUtility(t *testing.T) {
	f := newFixture(t)

	utilities := map[int]int{7: 12, 22: 28, 36: 12, 13: 28}
	for from, want := range utilities {
		assert.Equal(t, want, f.engine.NearestUtility(from), "utility from %d", from)
	}

	railroads := map[int]int{7: 15, 22: 25, 36: 5, 3: 5, 30: 35, 5: 15}
	for from, want := range railroads {
		assert.Equal(t, want, f.engine.NearestRailroad(from), "railroad from %d", from)
	}
}
