package model

import "strings"

// OrderSide is the direction of a bazaar order.
type OrderSide int

const (
	SideBuy OrderSide = iota
	SideSell
)

func (s OrderSide) String() string {
	if s == SideSell {
		return "SELL"
	}
	return "BUY"
}

// AuctionFlip is a recommendation to buy a BIN auction for resale profit.
// Immutable once received from the feed.
type AuctionFlip struct {
	ItemName    string
	StartingBid int64
	Target      int64
	Finder      string  // empty when the feed did not report one
	ProfitPct   float64 // 0 when the feed did not report one
	AuctionID   string
}

// Profit is the expected margin between resale target and purchase price.
func (f AuctionFlip) Profit() int64 {
	return f.Target - f.StartingBid
}

// IsSkin reports whether the item is a cosmetic skin.
func (f AuctionFlip) IsSkin() bool {
	return strings.Contains(strings.ToLower(f.ItemName), "skin")
}

// BazaarOrder is a recommendation to place a standing buy or sell order.
type BazaarOrder struct {
	ItemName     string
	ItemTag      string // game-internal id; when set, search results can be skipped
	Amount       int
	PricePerUnit float64
	TotalPrice   float64 // 0 means derive from amount and unit price
	Side         OrderSide
}

// Total returns the reported total price, or the derived one when absent.
func (o BazaarOrder) Total() float64 {
	if o.TotalPrice > 0 {
		return o.TotalPrice
	}
	return o.PricePerUnit * float64(o.Amount)
}
