package game

import (
	"encoding/json"
	"strings"
)

// Fixed slot positions of the target server's menus. These are part of the
// server's menu contract and must match it exactly.
const (
	// SlotPurchase is the "Buy Item Right Now" button in the auction view.
	SlotPurchase = 31
	// SlotConfirm is the confirm button in the purchase confirmation menu.
	SlotConfirm = 11
	// SlotBazaarConfirm is the center slot used to confirm bazaar orders.
	SlotBazaarConfirm = 13
	// SlotClose is the close button present in most menus.
	SlotClose = 50
	// SlotFirstSearchResult is the top-left result slot in bazaar search.
	SlotFirstSearchResult = 11
	// InventorySlots is the size of the personal inventory section that
	// trails every open container menu.
	InventorySlots = 36
)

// WindowKind classifies an open menu by its title. Classification happens
// once at the transport boundary so downstream logic never matches strings.
type WindowKind int

const (
	KindUnknown WindowKind = iota
	KindBinAuctionView
	KindAuctionView // non-BIN auction, never purchased
	KindConfirmPurchase
	KindBazaarSearch
	KindBazaarOrderOptions
	KindManageOrders
	KindAuctionHouse
	KindBids
	KindManageAuctions
	KindStorage
)

func (k WindowKind) String() string {
	switch k {
	case KindBinAuctionView:
		return "bin-auction-view"
	case KindAuctionView:
		return "auction-view"
	case KindConfirmPurchase:
		return "confirm-purchase"
	case KindBazaarSearch:
		return "bazaar-search"
	case KindBazaarOrderOptions:
		return "bazaar-order-options"
	case KindManageOrders:
		return "manage-orders"
	case KindAuctionHouse:
		return "auction-house"
	case KindBids:
		return "bids"
	case KindManageAuctions:
		return "manage-auctions"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// ClassifyWindow maps a parsed menu title to its kind.
func ClassifyWindow(title string) WindowKind {
	t := strings.ToLower(strings.TrimSpace(title))
	switch {
	case t == "bin auction view":
		return KindBinAuctionView
	case t == "auction view":
		return KindAuctionView
	case strings.Contains(t, "confirm purchase"):
		return KindConfirmPurchase
	case strings.Contains(t, "buy order") || strings.Contains(t, "sell offer") || strings.Contains(t, "order options"):
		return KindBazaarOrderOptions
	case strings.Contains(t, "manage orders"):
		return KindManageOrders
	case strings.HasPrefix(t, "bazaar"):
		return KindBazaarSearch
	case t == "auction house":
		return KindAuctionHouse
	case strings.Contains(t, "your bids"):
		return KindBids
	case strings.Contains(t, "manage auctions"):
		return KindManageAuctions
	case strings.Contains(t, "storage") || strings.Contains(t, "chest") || strings.Contains(t, "backpack"):
		return KindStorage
	}
	return KindUnknown
}

// PurchaseMarker identifies the item occupying the purchase slot of an
// auction view. The server communicates flow state by swapping this item.
type PurchaseMarker int

const (
	// MarkerUnknown is any item identity outside the known contract.
	MarkerUnknown PurchaseMarker = iota
	// MarkerBuyNow is the clickable purchase button.
	MarkerBuyNow
	// MarkerDecoy is the flickering decoy used as an anti-automation measure.
	MarkerDecoy
	// MarkerSoldOut means the auction is no longer available.
	MarkerSoldOut
	// MarkerObstruction is a placeholder shown while slots are still loading.
	MarkerObstruction
	// MarkerClaimable means the auction was already won and can be claimed.
	MarkerClaimable
	// MarkerInsufficientFunds means the account cannot afford the purchase.
	MarkerInsufficientFunds
)

func (m PurchaseMarker) String() string {
	switch m {
	case MarkerBuyNow:
		return "buy-now"
	case MarkerDecoy:
		return "decoy"
	case MarkerSoldOut:
		return "sold-out"
	case MarkerObstruction:
		return "obstruction"
	case MarkerClaimable:
		return "claimable"
	case MarkerInsufficientFunds:
		return "insufficient-funds"
	}
	return "unknown"
}

// ClassifyPurchaseSlot maps the item identity in the purchase slot to its
// marker meaning.
func ClassifyPurchaseSlot(s SlotContent) PurchaseMarker {
	switch s.ItemID {
	case "gold_nugget":
		return MarkerBuyNow
	case "bed":
		return MarkerDecoy
	case "potato", "":
		return MarkerSoldOut
	case "feather":
		return MarkerObstruction
	case "gold_block":
		return MarkerClaimable
	case "poisonous_potato":
		return MarkerInsufficientFunds
	}
	return MarkerUnknown
}

// SlotContent is the read-only view of a single menu slot. Display text and
// lore keep their raw formatting codes; strip them before comparing.
type SlotContent struct {
	Index       int
	ItemID      string
	Count       int
	DisplayName string
	Lore        []string
}

// Empty reports whether the slot holds no item.
func (s SlotContent) Empty() bool {
	return s.ItemID == "" && s.DisplayName == ""
}

// WindowSnapshot is a classified view of the currently open menu.
type WindowSnapshot struct {
	ID    int
	Title string
	Kind  WindowKind
	Slots []SlotContent
}

// Slot returns the content at the given index.
func (w WindowSnapshot) Slot(index int) (SlotContent, bool) {
	for _, s := range w.Slots {
		if s.Index == index {
			return s, true
		}
	}
	return SlotContent{}, false
}

// InventorySection returns the trailing personal-inventory slots of the
// container, used when snapshotting inventory for upload.
func (w WindowSnapshot) InventorySection() []SlotContent {
	first := len(w.Slots) - InventorySlots
	if first < 0 {
		first = 0
	}
	out := make([]SlotContent, 0, InventorySlots)
	for _, s := range w.Slots {
		if s.Index >= first {
			out = append(out, s)
		}
	}
	return out
}

// NewWindowSnapshot builds a classified snapshot from a raw title and slots.
func NewWindowSnapshot(id int, rawTitle string, slots []SlotContent) WindowSnapshot {
	title := ParseWindowTitle(rawTitle)
	return WindowSnapshot{
		ID:    id,
		Title: title,
		Kind:  ClassifyWindow(title),
		Slots: slots,
	}
}

// ParseWindowTitle extracts the plain title from the JSON chat-component
// format the server uses, e.g.
// {"italic":false,"extra":[{"text":"BIN Auction View"}],"text":""}.
// Non-JSON titles are returned unchanged.
func ParseWindowTitle(raw string) string {
	var component struct {
		Text      string `json:"text"`
		Translate string `json:"translate"`
		Extra     []struct {
			Text string `json:"text"`
		} `json:"extra"`
	}
	if err := json.Unmarshal([]byte(raw), &component); err != nil {
		return raw
	}
	if len(component.Extra) > 0 && component.Extra[0].Text != "" {
		return component.Extra[0].Text
	}
	if component.Translate != "" {
		return component.Translate
	}
	if component.Text != "" {
		return component.Text
	}
	return raw
}

// StripFormatting removes the server's decorative formatting sequences: a
// section sign (or its mojibake variant) followed by one code character.
func StripFormatting(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	skip := false
	for _, r := range text {
		if skip {
			skip = false
			continue
		}
		if r == '§' || r == '┬' {
			skip = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
