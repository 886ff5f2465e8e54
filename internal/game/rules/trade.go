package rules

import (
	"github.com/landlord/landlord-server/internal/game/player"
)

// TradeOffer describes an exchange proposed by From to To. Cash and escape
// card counts must be non-negative.
type TradeOffer struct {
	From                 string `json:"from"`
	To                   string `json:"to"`
	OfferedCash          int    `json:"offered_cash,omitempty"`
	RequestedCash        int    `json:"requested_cash,omitempty"`
	OfferedProperties    []int  `json:"offered_properties,omitempty"`
	RequestedProperties  []int  `json:"requested_properties,omitempty"`
	OfferedEscapeCards   int    `json:"offered_escape_cards,omitempty"`
	RequestedEscapeCards int    `json:"requested_escape_cards,omitempty"`
}

// Empty reports whether nothing changes hands.
func (o TradeOffer) Empty() bool {
	return o.OfferedCash == 0 && o.RequestedCash == 0 &&
		len(o.OfferedProperties) == 0 && len(o.RequestedProperties) == 0 &&
		o.OfferedEscapeCards == 0 && o.RequestedEscapeCards == 0
}

// Clone returns a deep copy of the offer.
func (o TradeOffer) Clone() TradeOffer {
	o.OfferedProperties = append([]int(nil), o.OfferedProperties...)
	o.RequestedProperties = append([]int(nil), o.RequestedProperties...)
	return o
}

// ValidateTrade checks an offer all-or-nothing: every listed asset must be
// held by the side giving it, and traded properties must carry no buildings.
// Mortgaged properties may be traded.
func (e *Engine) ValidateTrade(from, to *player.Player, offer TradeOffer) Validation {
	if from == nil || to == nil {
		return Reject(ResultInvalidPlayer, "unknown trade participant")
	}
	if from.ID == to.ID {
		return Reject(ResultInvalidTrade, "cannot trade with yourself")
	}
	if from.IsBankrupt() || to.IsBankrupt() {
		return Reject(ResultInvalidPlayer, "bankrupt players cannot trade")
	}
	if offer.Empty() {
		return Reject(ResultInvalidTrade, "trade offers nothing")
	}
	if offer.OfferedCash < 0 || offer.RequestedCash < 0 || offer.OfferedEscapeCards < 0 || offer.RequestedEscapeCards < 0 {
		return Reject(ResultInvalidTrade, "trade amounts cannot be negative")
	}
	if offer.OfferedCash > from.Cash {
		return Reject(ResultInsufficientFunds, "%s cannot offer $%d", from.Name, offer.OfferedCash)
	}
	if offer.RequestedCash > to.Cash {
		return Reject(ResultInsufficientFunds, "%s does not have $%d", to.Name, offer.RequestedCash)
	}
	if offer.OfferedEscapeCards > from.EscapeCardCount() {
		return Reject(ResultInvalidTrade, "%s does not hold %d escape cards", from.Name, offer.OfferedEscapeCards)
	}
	if offer.RequestedEscapeCards > to.EscapeCardCount() {
		return Reject(ResultInvalidTrade, "%s does not hold %d escape cards", to.Name, offer.RequestedEscapeCards)
	}
	if v := e.validateTradeProperties(from, offer.OfferedProperties); !v.Valid {
		return v
	}
	if v := e.validateTradeProperties(to, offer.RequestedProperties); !v.Valid {
		return v
	}
	return OK("trade is valid")
}

func (e *Engine) validateTradeProperties(owner *player.Player, positions []int) Validation {
	seen := make(map[int]bool, len(positions))
	for _, pos := range positions {
		if seen[pos] {
			return Reject(ResultInvalidTrade, "position %d listed twice", pos)
		}
		seen[pos] = true

		prop, ok := e.board.Property(pos)
		if !ok {
			return Reject(ResultInvalidProperty, "position %d is not a property", pos)
		}
		if prop.Owner != owner.ID {
			return Reject(ResultNotOwner, "%s does not own %s", owner.Name, prop.Name)
		}
		if prop.HasBuildings() {
			return Reject(ResultHasBuildings, "%s has buildings and cannot be traded", prop.Name)
		}
	}
	return OK("")
}
