package rules

import (
	"sync"
	"time"
)

// EventType indicates the category of a game event.
type EventType string

const (
	// Lifecycle events
	EventGameStarted   EventType = "GAME_STARTED"
	EventGameOver      EventType = "GAME_OVER"
	EventPlayerJoined  EventType = "PLAYER_JOINED"
	EventPlayerLeft    EventType = "PLAYER_LEFT"
	EventPlayerOffline EventType = "PLAYER_OFFLINE"
	EventPlayerOnline  EventType = "PLAYER_ONLINE"

	// Turn events
	EventDiceRolled   EventType = "DICE_ROLLED"
	EventPlayerMoved  EventType = "PLAYER_MOVED"
	EventPassedGo     EventType = "PASSED_GO"
	EventTurnEnded    EventType = "TURN_ENDED"
	EventPhaseChanged EventType = "PHASE_CHANGED"

	// Money events
	EventRentPaid  EventType = "RENT_PAID"
	EventTaxPaid   EventType = "TAX_PAID"
	EventDebtOwed  EventType = "DEBT_OWED"
	EventDebtPaid  EventType = "DEBT_PAID"
	EventCardDrawn EventType = "CARD_DRAWN"
	EventCardPaid  EventType = "CARD_PAID"

	// Property events
	EventPropertyBought      EventType = "PROPERTY_BOUGHT"
	EventPropertyDeclined    EventType = "PROPERTY_DECLINED"
	EventHouseBuilt          EventType = "HOUSE_BUILT"
	EventHotelBuilt          EventType = "HOTEL_BUILT"
	EventBuildingSold        EventType = "BUILDING_SOLD"
	EventPropertyMortgaged   EventType = "PROPERTY_MORTGAGED"
	EventPropertyRedeemed    EventType = "PROPERTY_UNMORTGAGED"
	EventPropertyTransferred EventType = "PROPERTY_TRANSFERRED"

	// Jail events
	EventSentToJail   EventType = "SENT_TO_JAIL"
	EventReleasedJail EventType = "RELEASED_FROM_JAIL"
	EventJailCardUsed EventType = "JAIL_CARD_USED"
	EventBailPaid     EventType = "BAIL_PAID"

	// Trade and bankruptcy events
	EventTradeProposed EventType = "TRADE_PROPOSED"
	EventTradeAccepted EventType = "TRADE_ACCEPTED"
	EventTradeRejected EventType = "TRADE_REJECTED"
	EventTradeCanceled EventType = "TRADE_CANCELED"
	EventBankrupt      EventType = "PLAYER_BANKRUPT"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type      EventType
	GameID    string
	PlayerID  string // player the event is about
	TargetID  string // counterparty: creditor, trade partner or owner
	Position  int    // board position, -1 when not relevant
	Amount    int    // cash moved or dice total
	Timestamp time.Time
	Metadata  map[string]string
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus provides a synchronous publish/subscribe implementation with type filtering.
type EventBus struct {
	mu             sync.RWMutex
	listeners      map[int]Listener
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by the provided handle.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	delete(bus.listeners, handle)
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers the event to all registered listeners synchronously.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	for _, listener := range bus.listeners {
		listener(event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.Callback(event)
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, gameID, playerID string) Event {
	return Event{
		Type:      eventType,
		GameID:    gameID,
		PlayerID:  playerID,
		Position:  -1,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, gameID, playerID string, amount int) Event {
	evt := NewEvent(eventType, gameID, playerID)
	evt.Amount = amount
	return evt
}
