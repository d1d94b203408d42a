package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWindowTitle(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"extra component", `{"italic":false,"extra":[{"text":"BIN Auction View"}],"text":""}`, "BIN Auction View"},
		{"translate component", `{"translate":"container.chest"}`, "container.chest"},
		{"text only", `{"text":"Confirm Purchase"}`, "Confirm Purchase"},
		{"plain string", "Auction House", "Auction House"},
		{"broken json", `{"extra":[`, `{"extra":[`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ParseWindowTitle(c.raw))
		})
	}
}

func TestStripFormatting(t *testing.T) {
	assert.Equal(t, "Hyperion", StripFormatting("§6Hyper§lion"))
	assert.Equal(t, "ab", StripFormatting("a┬xb"))
	assert.Equal(t, "trailing", StripFormatting("trailing§"))
	assert.Equal(t, "", StripFormatting(""))
}

func TestClassifyWindow(t *testing.T) {
	cases := []struct {
		title string
		want  WindowKind
	}{
		{"BIN Auction View", KindBinAuctionView},
		{"Auction View", KindAuctionView},
		{"Confirm Purchase", KindConfirmPurchase},
		{`Bazaar ➜ "coal"`, KindBazaarSearch},
		{"Enchanted Coal ➜ Buy Order", KindBazaarOrderOptions},
		{"Manage Orders", KindManageOrders},
		{"Auction House", KindAuctionHouse},
		{"Your Bids", KindBids},
		{"Manage Auctions", KindManageAuctions},
		{"Large Chest", KindStorage},
		{"Something Else", KindUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyWindow(c.title), c.title)
	}
}

func TestClassifyPurchaseSlot(t *testing.T) {
	cases := []struct {
		itemID string
		want   PurchaseMarker
	}{
		{"gold_nugget", MarkerBuyNow},
		{"bed", MarkerDecoy},
		{"potato", MarkerSoldOut},
		{"", MarkerSoldOut},
		{"feather", MarkerObstruction},
		{"gold_block", MarkerClaimable},
		{"poisonous_potato", MarkerInsufficientFunds},
		{"stained_glass_pane", MarkerUnknown},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ClassifyPurchaseSlot(SlotContent{ItemID: c.itemID}), c.itemID)
	}
}

func TestInventorySection(t *testing.T) {
	slots := make([]SlotContent, 0, 81)
	for i := 0; i < 81; i++ {
		slots = append(slots, SlotContent{Index: i, ItemID: "stone"})
	}
	w := WindowSnapshot{ID: 1, Slots: slots}
	section := w.InventorySection()
	require.Len(t, section, InventorySlots)
	assert.Equal(t, 45, section[0].Index)
	assert.Equal(t, 80, section[len(section)-1].Index)
}

func TestParsePriceFromLore(t *testing.T) {
	price, ok := ParsePriceFromLore([]string{"§7Seller: §6Rich Dude", "§7Price: §61,234,567 coins"})
	require.True(t, ok)
	assert.Equal(t, 1234567.0, price)

	price, ok = ParsePriceFromLore([]string{"§7Cost: §61.5M coins"})
	require.True(t, ok)
	assert.Equal(t, 1_500_000.0, price)

	_, ok = ParsePriceFromLore([]string{"§7No numbers here"})
	assert.False(t, ok)
}

func TestParseSignPrice(t *testing.T) {
	price, ok := ParseSignPrice([]string{"1,050.5", "^^^^^^^^^^^^^^^", "Enter price", ""})
	require.True(t, ok)
	assert.Equal(t, 1050.5, price)

	_, ok = ParseSignPrice([]string{"", "^^^^^^^^^^^^^^^", "Enter price", ""})
	assert.False(t, ok)
}
