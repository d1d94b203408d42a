package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyflipper/internal/model"
)

func decodeOne(t *testing.T, raw string) Event {
	t.Helper()
	events, err := Decode([]byte(raw))
	require.NoError(t, err)
	require.Len(t, events, 1)
	return events[0]
}

func TestDecodeFlip(t *testing.T) {
	e := decodeOne(t, `{"type":"flip","data":"{\"itemName\":\"Hyperion\",\"startingBid\":800000000,\"target\":900000000,\"finder\":\"SNIPER\",\"profitPerc\":12.5,\"uuid\":\"416f7a02\"}"}`)
	flip := e.(FlipEvent).Flip
	assert.Equal(t, "Hyperion", flip.ItemName)
	assert.Equal(t, int64(800000000), flip.StartingBid)
	assert.Equal(t, int64(100000000), flip.Profit())
	assert.Equal(t, "SNIPER", flip.Finder)
	assert.Equal(t, "416f7a02", flip.AuctionID)
}

func TestDecodeFlipAuctionIDAliases(t *testing.T) {
	cases := []string{"uuid", "auctionUuid", "auction_uuid", "auctionId", "id"}
	for _, alias := range cases {
		e := decodeOne(t, `{"type":"flip","data":"{\"itemName\":\"Hyperion\",\"startingBid\":1,\"target\":2,\"`+alias+`\":\"abc123\"}"}`)
		assert.Equal(t, "abc123", e.(FlipEvent).Flip.AuctionID, alias)
	}
}

func TestDecodeFlipMissingAuctionID(t *testing.T) {
	_, err := Decode([]byte(`{"type":"flip","data":"{\"itemName\":\"Hyperion\",\"startingBid\":1,\"target\":2}"}`))
	assert.Error(t, err)
}

func TestDecodeBazaarAliases(t *testing.T) {
	e := decodeOne(t, `{"type":"placeOrder","data":"{\"item\":\"Enchanted Coal\",\"count\":64,\"unitPrice\":1000.5,\"isSell\":true}"}`)
	order := e.(BazaarEvent).Order
	assert.Equal(t, "Enchanted Coal", order.ItemName)
	assert.Equal(t, 64, order.Amount)
	assert.Equal(t, 1000.5, order.PricePerUnit)
	assert.Equal(t, model.SideSell, order.Side)
	assert.Equal(t, 1000.5*64, order.TotalPrice)
}

func TestDecodeBazaarOrderTypeString(t *testing.T) {
	e := decodeOne(t, `{"type":"bzRecommend","data":"{\"itemName\":\"Cindershade\",\"amount\":4,\"pricePerUnit\":265000,\"orderType\":\"SELL\"}"}`)
	assert.Equal(t, model.SideSell, e.(BazaarEvent).Order.Side)

	e = decodeOne(t, `{"type":"bazaarFlip","data":"{\"itemName\":\"Cindershade\",\"amount\":4,\"pricePerUnit\":265000,\"type\":\"buy\"}"}`)
	assert.Equal(t, model.SideBuy, e.(BazaarEvent).Order.Side)
}

func TestDecodeBazaarBatch(t *testing.T) {
	events, err := Decode([]byte(`{"type":"getbazaarflips","data":"[{\"itemName\":\"A\",\"amount\":1,\"price\":10},{\"itemName\":\"B\",\"amount\":2,\"price\":20},{\"amount\":3,\"price\":30}]"}`))
	require.NoError(t, err)
	// The nameless entry is dropped, the rest fan out.
	require.Len(t, events, 2)
	assert.Equal(t, "A", events[0].(BazaarEvent).Order.ItemName)
	assert.Equal(t, "B", events[1].(BazaarEvent).Order.ItemName)
}

func TestDecodeChatInjectsReferral(t *testing.T) {
	e := decodeOne(t, `{"type":"chatMessage","data":"{\"text\":\"Click https://sky.coflnet.com/authmod?x=1&amp;conId=42\"}"}`)
	chat := e.(ChatEvent)
	assert.Contains(t, chat.Text, "&amp;refId=9KKPN9&amp;conId=42")
}

func TestDecodeChatPlainString(t *testing.T) {
	e := decodeOne(t, `{"type":"writeToChat","data":"\"hello there\""}`)
	assert.Equal(t, "hello there", e.(ChatEvent).Text)
}

func TestDecodeExecute(t *testing.T) {
	e := decodeOne(t, `{"type":"execute","data":"\"/cofl buy\""}`)
	assert.Equal(t, "/cofl buy", e.(ExecuteEvent).Command)
}

func TestDecodeSwapProfilePlainString(t *testing.T) {
	e := decodeOne(t, `{"type":"swapProfile","data":"\"Blueberry\""}`)
	assert.Equal(t, "Blueberry", e.(SwapProfileEvent).Profile)
}

func TestDecodeCountdown(t *testing.T) {
	e := decodeOne(t, `{"type":"countdown","data":"20"}`)
	assert.Equal(t, 20, e.(CountdownEvent).Seconds)
}

func TestDecodeUnknownType(t *testing.T) {
	e := decodeOne(t, `{"type":"privacySettings","data":"{}"}`)
	assert.Equal(t, "privacySettings", e.(UnknownEvent).Type)
}

func TestInjectReferralIdempotent(t *testing.T) {
	withRef := "https://sky.coflnet.com/authmod?x=1&amp;refId=OTHER&amp;conId=42"
	assert.Equal(t, withRef, InjectReferral(withRef))
	assert.Equal(t, "plain text", InjectReferral("plain text"))
}

func TestParseChatOrder(t *testing.T) {
	order, ok := ParseChatOrder("[Coflnet]: Recommending an order of 4x Cindershade for 1.06M(1)")
	require.True(t, ok)
	assert.Equal(t, "Cindershade", order.ItemName)
	assert.Equal(t, 4, order.Amount)
	assert.InDelta(t, 265000, order.PricePerUnit, 0.1)
	assert.Equal(t, model.SideBuy, order.Side)

	order, ok = ParseChatOrder("[Coflnet]: Recommending a sell offer order of 10x Enchanted Coal for 50K(2)")
	require.True(t, ok)
	assert.Equal(t, model.SideSell, order.Side)
	assert.InDelta(t, 5000, order.PricePerUnit, 0.1)

	_, ok = ParseChatOrder("random chat line")
	assert.False(t, ok)
}
