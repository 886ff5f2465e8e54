package rules

// Bank tracks the finite pool of houses and hotels. Counts never exceed the
// totals it was created with.
type Bank struct {
	totalHouses int
	totalHotels int
	houses      int
	hotels      int
}

// NewBank creates a full bank.
func NewBank(totalHouses, totalHotels int) *Bank {
	return &Bank{
		totalHouses: totalHouses,
		totalHotels: totalHotels,
		houses:      totalHouses,
		hotels:      totalHotels,
	}
}

// HousesAvailable returns the houses left in the bank.
func (b *Bank) HousesAvailable() int { return b.houses }

// HotelsAvailable returns the hotels left in the bank.
func (b *Bank) HotelsAvailable() int { return b.hotels }

// TotalHouses returns the house supply the bank started with.
func (b *Bank) TotalHouses() int { return b.totalHouses }

// TotalHotels returns the hotel supply the bank started with.
func (b *Bank) TotalHotels() int { return b.totalHotels }

// TakeHouse removes a house from the bank if one is available.
func (b *Bank) TakeHouse() bool {
	if b.houses == 0 {
		return false
	}
	b.houses--
	return true
}

// ReturnHouses puts n houses back, capped at the total.
func (b *Bank) ReturnHouses(n int) {
	b.houses += n
	if b.houses > b.totalHouses {
		b.houses = b.totalHouses
	}
}

// TakeHouses removes n houses at once or none at all.
func (b *Bank) TakeHouses(n int) bool {
	if b.houses < n {
		return false
	}
	b.houses -= n
	return true
}

// TakeHotel removes a hotel from the bank if one is available.
func (b *Bank) TakeHotel() bool {
	if b.hotels == 0 {
		return false
	}
	b.hotels--
	return true
}

// ReturnHotel puts a hotel back, capped at the total.
func (b *Bank) ReturnHotel() {
	if b.hotels < b.totalHotels {
		b.hotels++
	}
}

// Set overwrites the available counts. Used when restoring a snapshot.
func (b *Bank) Set(houses, hotels int) {
	b.houses = clamp(houses, 0, b.totalHouses)
	b.hotels = clamp(hotels, 0, b.totalHotels)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
