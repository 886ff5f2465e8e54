package board

// Standard board positions referenced by rules and cards.
const (
	PositionGo          = 0
	PositionJail        = 10
	PositionFreeParking = 20
	PositionGoToJail    = 30
	StandardSize        = 40
)

func street(pos int, name string, group Group, price int, rents [6]int, houseCost int) Space {
	return Space{Position: pos, Name: name, Kind: KindProperty, Group: group, Price: price, Rents: rents, HouseCost: houseCost}
}

func railroad(pos int, name string) Space {
	return Space{Position: pos, Name: name, Kind: KindRailroad, Group: GroupRailroad, Price: 200}
}

func utility(pos int, name string) Space {
	return Space{Position: pos, Name: name, Kind: KindUtility, Group: GroupUtility, Price: 150}
}

func cardSpace(pos int, deck Deck) Space {
	name := "Chance"
	if deck == DeckCommunityChest {
		name = "Community Chest"
	}
	return Space{Position: pos, Name: name, Kind: KindCard, Deck: deck}
}

func tax(pos int, name string, amount int) Space {
	return Space{Position: pos, Name: name, Kind: KindTax, Tax: amount}
}

func corner(pos int, name string, c Corner) Space {
	return Space{Position: pos, Name: name, Kind: KindCorner, Corner: c}
}

// StandardLayout returns a fresh copy of the classic 40-space board.
func StandardLayout() []Space {
	return []Space{
		corner(0, "GO", CornerGo),
		street(1, "Mediterranean Avenue", GroupBrown, 60, [6]int{2, 10, 30, 90, 160, 250}, 50),
		cardSpace(2, DeckCommunityChest),
		street(3, "Baltic Avenue", GroupBrown, 60, [6]int{4, 20, 60, 180, 320, 450}, 50),
		tax(4, "Income Tax", 200),
		railroad(5, "Reading Railroad"),
		street(6, "Oriental Avenue", GroupLightBlue, 100, [6]int{6, 30, 90, 270, 400, 550}, 50),
		cardSpace(7, DeckChance),
		street(8, "Vermont Avenue", GroupLightBlue, 100, [6]int{6, 30, 90, 270, 400, 550}, 50),
		street(9, "Connecticut Avenue", GroupLightBlue, 120, [6]int{8, 40, 100, 300, 450, 600}, 50),
		corner(10, "Jail", CornerJail),
		street(11, "St. Charles Place", GroupPink, 140, [6]int{10, 50, 150, 450, 625, 750}, 100),
		utility(12, "Electric Company"),
		street(13, "States Avenue", GroupPink, 140, [6]int{10, 50, 150, 450, 625, 750}, 100),
		street(14, "Virginia Avenue", GroupPink, 160, [6]int{12, 60, 180, 500, 700, 900}, 100),
		railroad(15, "Pennsylvania Railroad"),
		street(16, "St. James Place", GroupOrange, 180, [6]int{14, 70, 200, 550, 750, 950}, 100),
		cardSpace(17, DeckCommunityChest),
		street(18, "Tennessee Avenue", GroupOrange, 180, [6]int{14, 70, 200, 550, 750, 950}, 100),
		street(19, "New York Avenue", GroupOrange, 200, [6]int{16, 80, 220, 600, 800, 1000}, 100),
		corner(20, "Free Parking", CornerFreeParking),
		street(21, "Kentucky Avenue", GroupRed, 220, [6]int{18, 90, 250, 700, 875, 1050}, 150),
		cardSpace(22, DeckChance),
		street(23, "Indiana Avenue", GroupRed, 220, [6]int{18, 90, 250, 700, 875, 1050}, 150),
		street(24, "Illinois Avenue", GroupRed, 240, [6]int{20, 100, 300, 750, 925, 1100}, 150),
		railroad(25, "B&O Railroad"),
		street(26, "Atlantic Avenue", GroupYellow, 260, [6]int{22, 110, 330, 800, 975, 1150}, 150),
		street(27, "Ventnor Avenue", GroupYellow, 260, [6]int{22, 110, 330, 800, 975, 1150}, 150),
		utility(28, "Water Works"),
		street(29, "Marvin Gardens", GroupYellow, 280, [6]int{24, 120, 360, 850, 1025, 1200}, 150),
		corner(30, "Go To Jail", CornerGoToJail),
		street(31, "Pacific Avenue", GroupGreen, 300, [6]int{26, 130, 390, 900, 1100, 1275}, 200),
		street(32, "North Carolina Avenue", GroupGreen, 300, [6]int{26, 130, 390, 900, 1100, 1275}, 200),
		cardSpace(33, DeckCommunityChest),
		street(34, "Pennsylvania Avenue", GroupGreen, 320, [6]int{28, 150, 450, 1000, 1200, 1400}, 200),
		railroad(35, "Short Line"),
		cardSpace(36, DeckChance),
		street(37, "Park Place", GroupDarkBlue, 350, [6]int{35, 175, 500, 1100, 1300, 1500}, 200),
		tax(38, "Luxury Tax", 100),
		street(39, "Boardwalk", GroupDarkBlue, 400, [6]int{50, 200, 600, 1400, 1700, 2000}, 200),
	}
}
