package feed

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"skyflipper/internal/model"
)

// Envelope is the wire frame of every feed message in both directions.
// Data is itself a JSON document, sometimes encoded twice.
type Envelope struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// parseData unwraps the envelope payload, handling double JSON encoding
// where the payload is a JSON string containing another JSON document. A
// string payload whose content is not JSON, like plain chat text or a bare
// command, resolves as the string itself.
func parseData(data string, out any) error {
	var probe any
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return err
	}
	inner, ok := probe.(string)
	if !ok {
		return json.Unmarshal([]byte(data), out)
	}
	err := json.Unmarshal([]byte(inner), out)
	if err == nil {
		return nil
	}
	if s, ok := out.(*string); ok {
		*s = inner
		return nil
	}
	return err
}

// Event is the closed set of things the feed can ask the bot to do.
type Event interface {
	feedEvent()
}

type FlipEvent struct {
	Flip model.AuctionFlip
}

type BazaarEvent struct {
	Order model.BazaarOrder
}

type ChatEvent struct {
	Text    string
	OnClick string
	Hover   string
}

type ExecuteEvent struct {
	Command string
}

type CountdownEvent struct {
	Seconds int
}

type InventoryRequestEvent struct{}

type SwapProfileEvent struct {
	Profile string
}

type TradeResponseEvent struct {
	Accept bool
}

type CreateAuctionEvent struct {
	ItemName string
	Price    float64
	Duration int
}

type UnknownEvent struct {
	Type string
}

func (FlipEvent) feedEvent()             {}
func (BazaarEvent) feedEvent()           {}
func (ChatEvent) feedEvent()             {}
func (ExecuteEvent) feedEvent()          {}
func (CountdownEvent) feedEvent()        {}
func (InventoryRequestEvent) feedEvent() {}
func (SwapProfileEvent) feedEvent()      {}
func (TradeResponseEvent) feedEvent()    {}
func (CreateAuctionEvent) feedEvent()    {}
func (UnknownEvent) feedEvent()          {}

// rawFlip carries every field spelling the feed has been seen to use for an
// auction recommendation. Normalization picks the first populated alias.
type rawFlip struct {
	ItemName     string   `json:"itemName"`
	Item         string   `json:"item"`
	Name         string   `json:"name"`
	StartingBid  int64    `json:"startingBid"`
	Target       int64    `json:"target"`
	Finder       string   `json:"finder"`
	ProfitPerc   *float64 `json:"profitPerc"`
	UUID         string   `json:"uuid"`
	AuctionUUID  string   `json:"auctionUuid"`
	AuctionUUID2 string   `json:"auction_uuid"`
	AuctionID    string   `json:"auctionId"`
	ID           string   `json:"id"`
}

func (r rawFlip) normalize() (model.AuctionFlip, error) {
	name := firstNonEmpty(r.ItemName, r.Item, r.Name)
	if name == "" {
		return model.AuctionFlip{}, fmt.Errorf("flip without item name")
	}
	auctionID := firstNonEmpty(r.UUID, r.AuctionUUID, r.AuctionUUID2, r.AuctionID, r.ID)
	if auctionID == "" {
		return model.AuctionFlip{}, fmt.Errorf("flip %q without auction id", name)
	}
	profitPct := 0.0
	if r.ProfitPerc != nil {
		profitPct = *r.ProfitPerc
	}
	return model.AuctionFlip{
		ItemName:    name,
		StartingBid: r.StartingBid,
		Target:      r.Target,
		Finder:      r.Finder,
		ProfitPct:   profitPct,
		AuctionID:   auctionID,
	}, nil
}

// rawBazaar is the alias-tolerant form of a bazaar order recommendation.
type rawBazaar struct {
	ItemName     string   `json:"itemName"`
	Item         string   `json:"item"`
	Name         string   `json:"name"`
	ItemTag      string   `json:"itemTag"`
	Amount       *int     `json:"amount"`
	Count        *int     `json:"count"`
	Quantity     *int     `json:"quantity"`
	PricePerUnit *float64 `json:"pricePerUnit"`
	UnitPrice    *float64 `json:"unitPrice"`
	Price        *float64 `json:"price"`
	TotalPrice   *float64 `json:"totalPrice"`
	IsBuyOrder   *bool    `json:"isBuyOrder"`
	IsSell       *bool    `json:"isSell"`
	Type         string   `json:"type"`
	OrderType    string   `json:"orderType"`
}

func (r rawBazaar) normalize() (model.BazaarOrder, error) {
	name := firstNonEmpty(r.ItemName, r.Item, r.Name)
	if name == "" {
		return model.BazaarOrder{}, fmt.Errorf("bazaar order without item name")
	}

	amount := 0
	switch {
	case r.Amount != nil:
		amount = *r.Amount
	case r.Count != nil:
		amount = *r.Count
	case r.Quantity != nil:
		amount = *r.Quantity
	}
	if amount <= 0 {
		return model.BazaarOrder{}, fmt.Errorf("bazaar order for %q without amount", name)
	}

	var price float64
	switch {
	case r.PricePerUnit != nil:
		price = *r.PricePerUnit
	case r.UnitPrice != nil:
		price = *r.UnitPrice
	case r.Price != nil:
		price = *r.Price
	default:
		return model.BazaarOrder{}, fmt.Errorf("bazaar order for %q without price", name)
	}

	side := model.SideBuy
	switch {
	case r.IsBuyOrder != nil:
		if !*r.IsBuyOrder {
			side = model.SideSell
		}
	case r.IsSell != nil:
		if *r.IsSell {
			side = model.SideSell
		}
	case r.Type != "":
		if !strings.EqualFold(r.Type, "buy") {
			side = model.SideSell
		}
	case r.OrderType != "":
		if !strings.EqualFold(r.OrderType, "buy") {
			side = model.SideSell
		}
	}

	total := price * float64(amount)
	if r.TotalPrice != nil {
		total = *r.TotalPrice
	}
	return model.BazaarOrder{
		ItemName:     name,
		ItemTag:      r.ItemTag,
		Amount:       amount,
		PricePerUnit: price,
		TotalPrice:   total,
		Side:         side,
	}, nil
}

type rawChat struct {
	Text    string `json:"text"`
	OnClick string `json:"onClick"`
	Hover   string `json:"hover"`
}

type rawCreateAuction struct {
	ItemName string  `json:"itemName"`
	Price    float64 `json:"price"`
	Duration int     `json:"duration"`
}

type rawTradeResponse struct {
	Accept bool `json:"accept"`
}

// Decode turns one wire frame into zero or more feed events. Batch frames
// fan out into one event per entry.
func Decode(raw []byte) ([]Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("malformed feed frame: %w", err)
	}

	switch env.Type {
	case "flip":
		var r rawFlip
		if err := parseData(env.Data, &r); err != nil {
			return nil, fmt.Errorf("flip payload: %w", err)
		}
		flip, err := r.normalize()
		if err != nil {
			return nil, err
		}
		return []Event{FlipEvent{Flip: flip}}, nil

	case "bazaarFlip", "bzRecommend", "placeOrder":
		var r rawBazaar
		if err := parseData(env.Data, &r); err != nil {
			return nil, fmt.Errorf("bazaar payload: %w", err)
		}
		order, err := r.normalize()
		if err != nil {
			return nil, err
		}
		return []Event{BazaarEvent{Order: order}}, nil

	case "getbazaarflips":
		var rs []rawBazaar
		if err := parseData(env.Data, &rs); err != nil {
			return nil, fmt.Errorf("bazaar batch payload: %w", err)
		}
		events := make([]Event, 0, len(rs))
		for _, r := range rs {
			order, err := r.normalize()
			if err != nil {
				continue
			}
			events = append(events, BazaarEvent{Order: order})
		}
		return events, nil

	case "chatMessage", "writeToChat":
		var r rawChat
		if err := parseData(env.Data, &r); err == nil && r.Text != "" {
			return []Event{ChatEvent{
				Text:    InjectReferral(r.Text),
				OnClick: InjectReferral(r.OnClick),
				Hover:   InjectReferral(r.Hover),
			}}, nil
		}
		var text string
		if err := parseData(env.Data, &text); err != nil {
			return nil, fmt.Errorf("chat payload: %w", err)
		}
		return []Event{ChatEvent{Text: InjectReferral(text)}}, nil

	case "execute":
		var command string
		if err := parseData(env.Data, &command); err != nil {
			return nil, fmt.Errorf("execute payload: %w", err)
		}
		return []Event{ExecuteEvent{Command: command}}, nil

	case "countdown":
		seconds, err := parseCountdown(env.Data)
		if err != nil {
			return nil, err
		}
		return []Event{CountdownEvent{Seconds: seconds}}, nil

	case "getInventory":
		return []Event{InventoryRequestEvent{}}, nil

	case "swapProfile":
		var profile string
		if err := parseData(env.Data, &profile); err != nil {
			return nil, fmt.Errorf("swapProfile payload: %w", err)
		}
		return []Event{SwapProfileEvent{Profile: profile}}, nil

	case "trade", "tradeResponse":
		var r rawTradeResponse
		if err := parseData(env.Data, &r); err != nil {
			return nil, fmt.Errorf("trade payload: %w", err)
		}
		return []Event{TradeResponseEvent{Accept: r.Accept}}, nil

	case "createAuction":
		var r rawCreateAuction
		if err := parseData(env.Data, &r); err != nil {
			return nil, fmt.Errorf("createAuction payload: %w", err)
		}
		return []Event{CreateAuctionEvent{ItemName: r.ItemName, Price: r.Price, Duration: r.Duration}}, nil
	}

	return []Event{UnknownEvent{Type: env.Type}}, nil
}

func parseCountdown(data string) (int, error) {
	var n int
	if err := parseData(data, &n); err == nil {
		return n, nil
	}
	var s string
	if err := parseData(data, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("countdown payload %q", data)
}

// InjectReferral tags feed auth links with the referral id before they reach
// chat. Links already carrying one are left alone.
func InjectReferral(text string) string {
	if !strings.Contains(text, "sky.coflnet.com/authmod?") || strings.Contains(text, "refId=") {
		return text
	}
	return strings.ReplaceAll(text, "&amp;conId=", "&amp;refId=9KKPN9&amp;conId=")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

var (
	chatOrderRe     = regexp.MustCompile(`order of (\d+)x\s+(.+?)\s+for\s+([\d.]+)([KkMm]?)\(`)
	chatOrderSellRe = regexp.MustCompile(`(?i)sell|offer`)
)

// ParseChatOrder recovers a bazaar recommendation from its chat rendering,
// e.g. "[Coflnet]: Recommending an order of 4x Cindershade for 1.06M(1)".
// Used when the feed announces orders in chat instead of a structured frame.
func ParseChatOrder(message string) (model.BazaarOrder, bool) {
	if !strings.Contains(message, "[Coflnet]") {
		return model.BazaarOrder{}, false
	}
	m := chatOrderRe.FindStringSubmatch(message)
	if m == nil {
		return model.BazaarOrder{}, false
	}
	amount, err := strconv.Atoi(m[1])
	if err != nil || amount <= 0 {
		return model.BazaarOrder{}, false
	}
	total, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return model.BazaarOrder{}, false
	}
	switch strings.ToLower(m[4]) {
	case "k":
		total *= 1_000
	case "m":
		total *= 1_000_000
	}

	side := model.SideBuy
	if chatOrderSellRe.MatchString(message) {
		side = model.SideSell
	}
	return model.BazaarOrder{
		ItemName:     strings.TrimSpace(m[2]),
		Amount:       amount,
		PricePerUnit: total / float64(amount),
		TotalPrice:   total,
		Side:         side,
	}, true
}
