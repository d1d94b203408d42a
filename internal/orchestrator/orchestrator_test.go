package orchestrator

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyflipper/internal/config"
	"skyflipper/internal/feed"
	"skyflipper/internal/flow"
	"skyflipper/internal/game"
	"skyflipper/internal/inventory"
	"skyflipper/internal/model"
	"skyflipper/internal/queue"
	"skyflipper/internal/state"
)

type nullTransport struct {
	events chan game.Event
}

func (n *nullTransport) SendChat(context.Context, string) error         { return nil }
func (n *nullTransport) ClickSlot(context.Context, int, int, int) error { return nil }
func (n *nullTransport) WriteSign(context.Context, string) error        { return nil }
func (n *nullTransport) CloseWindow(context.Context, int) error         { return nil }
func (n *nullTransport) Events() <-chan game.Event                      { return n.events }

func testConfig() *config.FlipperCfg {
	cfg := &config.FlipperCfg{}
	cfg.Flips.AuctionsEnabled = true
	cfg.Flips.BazaarEnabled = true
	cfg.Chat.MessagesPerMinute = 600
	cfg.Startup.GracePeriodSeconds = 1
	cfg.Startup.WatchdogSeconds = 60
	return cfg
}

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	config.Flipper = testConfig()

	logger := slog.New(slog.DiscardHandler)
	tr := &nullTransport{events: make(chan game.Event, 8)}
	session := state.NewSession()
	t.Cleanup(session.Close)
	session.SetMode(state.ModeIdle)

	controller := flow.NewController(tr, session, logger, flow.DefaultDelays())
	feedClient := feed.NewClient(feed.Config{URL: "ws://127.0.0.1:1/feed"}, logger)
	return New(tr, controller, session, queue.New(), feedClient, inventory.NewManager(), logger)
}

func testFlip() model.AuctionFlip {
	return model.AuctionFlip{
		ItemName:    "Hyperion",
		StartingBid: 800_000_000,
		Target:      900_000_000,
		AuctionID:   "416f",
	}
}

func TestFlipEventEnqueuesPurchase(t *testing.T) {
	o := newTestOrchestrator(t)

	o.handleFeedEvent(context.Background(), feed.FlipEvent{Flip: testFlip()})

	item, ok := o.cmdQ.StartCurrent()
	require.True(t, ok)
	assert.Equal(t, queue.PriorityHigh, item.Priority)
	payload, ok := item.Payload.(queue.PurchaseAuction)
	require.True(t, ok)
	assert.Equal(t, "Hyperion", payload.Flip.ItemName)
}

func TestFlipBelowSkipThresholdStillEnqueued(t *testing.T) {
	o := newTestOrchestrator(t)
	// testFlip's profit is 100M, below the bar, so the purchase runs without
	// the confirm pre-click but must never be discarded.
	config.Flipper.Flips.Skip.MinProfit = 200_000_000

	o.handleFeedEvent(context.Background(), feed.FlipEvent{Flip: testFlip()})

	item, ok := o.cmdQ.StartCurrent()
	require.True(t, ok)
	payload, ok := item.Payload.(queue.PurchaseAuction)
	require.True(t, ok)
	assert.Equal(t, "Hyperion", payload.Flip.ItemName)

	preClick, _ := config.Flipper.Flips.Skip.ShouldSkip(payload.Flip)
	assert.False(t, preClick)
}

func TestUrgentFlipPreemptsBazaarOrder(t *testing.T) {
	o := newTestOrchestrator(t)
	order := model.BazaarOrder{ItemName: "Enchanted Coal", Amount: 64, PricePerUnit: 1000}

	o.enqueue(queue.PriorityNormal, queue.PlaceBazaarOrder{Order: order}, true)
	_, ok := o.cmdQ.StartCurrent()
	require.True(t, ok)

	inflight, cancel := context.WithCancel(context.Background())
	o.setInflightCancel(cancel)

	o.handleFeedEvent(context.Background(), feed.FlipEvent{Flip: testFlip()})

	select {
	case <-inflight.Done():
	default:
		t.Fatal("in-flight bazaar order was not cancelled")
	}

	// The flip runs first, then the interrupted order comes back around.
	item, ok := o.cmdQ.StartCurrent()
	require.True(t, ok)
	_, isFlip := item.Payload.(queue.PurchaseAuction)
	assert.True(t, isFlip)
	o.cmdQ.CompleteCurrent()

	item, ok = o.cmdQ.StartCurrent()
	require.True(t, ok)
	_, isBazaar := item.Payload.(queue.PlaceBazaarOrder)
	assert.True(t, isBazaar)
}

func TestFeedEventsDroppedDuringStartup(t *testing.T) {
	o := newTestOrchestrator(t)
	o.session.SetMode(state.ModeStartup)

	o.handleFeedEvent(context.Background(), feed.FlipEvent{Flip: testFlip()})

	assert.Zero(t, o.cmdQ.Len())
}

func TestCountdownSuppressesBazaarOrders(t *testing.T) {
	o := newTestOrchestrator(t)
	order := model.BazaarOrder{ItemName: "Enchanted Coal", Amount: 64, PricePerUnit: 1000}

	o.handleFeedEvent(context.Background(), feed.BazaarEvent{Order: order})
	assert.Equal(t, 1, o.cmdQ.Len())

	o.handleFeedEvent(context.Background(), feed.CountdownEvent{Seconds: 20})
	assert.Zero(t, o.cmdQ.Len(), "queued bazaar orders must be dropped")

	o.handleFeedEvent(context.Background(), feed.BazaarEvent{Order: order})
	assert.Zero(t, o.cmdQ.Len(), "new bazaar orders must be suppressed")
}

func TestSuppressionExpires(t *testing.T) {
	o := newTestOrchestrator(t)
	o.mu.Lock()
	o.suppressedUntil = time.Now().Add(-time.Second)
	o.mu.Unlock()

	assert.False(t, o.bazaarSuppressed())
}

func TestSoldChatLineEnqueuesClaim(t *testing.T) {
	o := newTestOrchestrator(t)

	o.handleChatLine(context.Background(), "[Auction] Rich_Dude bought Hyperion for 1,050,000 coins")

	item, ok := o.cmdQ.StartCurrent()
	require.True(t, ok)
	payload, ok := item.Payload.(queue.ClaimSold)
	require.True(t, ok)
	assert.Equal(t, "Hyperion", payload.ItemName)
}

func TestStartupChatEntersGracePeriod(t *testing.T) {
	o := newTestOrchestrator(t)
	o.session.SetMode(state.ModeStartup)

	o.handleChatLine(context.Background(), "Welcome to Hypixel SkyBlock!")

	assert.Equal(t, state.ModeGracePeriod, o.session.Mode())
}

func TestExecuteEventQueuesRateLimitedChat(t *testing.T) {
	o := newTestOrchestrator(t)

	o.handleFeedEvent(context.Background(), feed.ExecuteEvent{Command: "/cofl verify"})

	item, ok := o.cmdQ.StartCurrent()
	require.True(t, ok)
	payload, ok := item.Payload.(queue.SendChat)
	require.True(t, ok)
	assert.Equal(t, "/cofl verify", payload.Text)
}
