package event

import (
	"time"

	"skyflipper/internal/model"
)

type Event interface {
	Message() string
	OccurredAt() time.Time
}

type BaseEvent struct {
	message    string
	occurredAt time.Time
}

func (b BaseEvent) Message() string {
	return b.message
}

func (b BaseEvent) OccurredAt() time.Time {
	return b.occurredAt
}

func Text(message string) BaseEvent {
	return BaseEvent{
		message:    message,
		occurredAt: time.Now(),
	}
}

type StartupCompleteEvent struct {
	BaseEvent
	Elapsed time.Duration
}

func StartupComplete(be BaseEvent, elapsed time.Duration) StartupCompleteEvent {
	return StartupCompleteEvent{BaseEvent: be, Elapsed: elapsed}
}

type FlipPurchasedEvent struct {
	BaseEvent
	Flip model.AuctionFlip
}

func FlipPurchased(be BaseEvent, flip model.AuctionFlip) FlipPurchasedEvent {
	return FlipPurchasedEvent{BaseEvent: be, Flip: flip}
}

type FlipFailedEvent struct {
	BaseEvent
	Flip   model.AuctionFlip
	Reason string
}

func FlipFailed(be BaseEvent, flip model.AuctionFlip, reason string) FlipFailedEvent {
	return FlipFailedEvent{BaseEvent: be, Flip: flip, Reason: reason}
}

type BazaarOrderPlacedEvent struct {
	BaseEvent
	Order model.BazaarOrder
}

func BazaarOrderPlaced(be BaseEvent, order model.BazaarOrder) BazaarOrderPlacedEvent {
	return BazaarOrderPlacedEvent{BaseEvent: be, Order: order}
}

type BazaarOrderFailedEvent struct {
	BaseEvent
	Order  model.BazaarOrder
	Reason string
}

func BazaarOrderFailed(be BaseEvent, order model.BazaarOrder, reason string) BazaarOrderFailedEvent {
	return BazaarOrderFailedEvent{BaseEvent: be, Order: order, Reason: reason}
}

type ItemSoldEvent struct {
	BaseEvent
	ItemName string
	Price    float64
	Buyer    string
}

func ItemSold(be BaseEvent, itemName string, price float64, buyer string) ItemSoldEvent {
	return ItemSoldEvent{BaseEvent: be, ItemName: itemName, Price: price, Buyer: buyer}
}

type ItemClaimedEvent struct {
	BaseEvent
	ItemName string
	Sold     bool
}

func ItemClaimed(be BaseEvent, itemName string, sold bool) ItemClaimedEvent {
	return ItemClaimedEvent{BaseEvent: be, ItemName: itemName, Sold: sold}
}

type BotDisconnectedEvent struct {
	BaseEvent
	Reason string
}

func BotDisconnected(be BaseEvent, reason string) BotDisconnectedEvent {
	return BotDisconnectedEvent{BaseEvent: be, Reason: reason}
}
