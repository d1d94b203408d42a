package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"skyflipper/internal/config"
	"skyflipper/internal/event"
	"skyflipper/internal/feed"
	"skyflipper/internal/flow"
	"skyflipper/internal/game"
	"skyflipper/internal/inventory"
	"skyflipper/internal/model"
	"skyflipper/internal/queue"
	"skyflipper/internal/state"
)

const (
	drainInterval      = 50 * time.Millisecond
	defaultSuppression = 20 * time.Second
)

// Orchestrator is the glue between the recommendation feed, the game
// transport and the menu flows. It owns the drain loop that executes one
// queued command at a time.
type Orchestrator struct {
	transport   game.Transport
	controller  *flow.Controller
	coordinator *flow.Coordinator
	session     *state.Session
	cmdQ        *queue.Queue
	feed        *feed.Client
	inv         *inventory.Manager
	chatLimiter *rate.Limiter
	logger      *slog.Logger

	mu              sync.Mutex
	suppressedUntil time.Time
	startedAt       time.Time

	inflightMu     sync.Mutex
	inflightCancel context.CancelFunc
}

func New(
	transport game.Transport,
	controller *flow.Controller,
	session *state.Session,
	cmdQ *queue.Queue,
	feedClient *feed.Client,
	inv *inventory.Manager,
	logger *slog.Logger,
) *Orchestrator {
	perMinute := config.Flipper.Chat.MessagesPerMinute
	return &Orchestrator{
		transport:   transport,
		controller:  controller,
		coordinator: flow.NewCoordinator(session, logger),
		session:     session,
		cmdQ:        cmdQ,
		feed:        feedClient,
		inv:         inv,
		chatLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		logger:      logger,
		startedAt:   time.Now(),
	}
}

// Run starts the event and drain loops and blocks until the context is done.
func (o *Orchestrator) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return o.transportLoop(ctx) })
	g.Go(func() error { return o.feedLoop(ctx) })
	g.Go(func() error { return o.drainLoop(ctx) })
	g.Go(func() error { return o.startupWatchdog(ctx) })
	return g.Wait()
}

func (o *Orchestrator) transportLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-o.transport.Events():
			if !ok {
				return nil
			}
			o.handleTransportEvent(ctx, ev)
		}
	}
}

func (o *Orchestrator) handleTransportEvent(ctx context.Context, ev game.Event) {
	switch evt := ev.(type) {
	case game.LoginEvent:
		o.logger.Info("Logged in to game server")
	case game.SpawnEvent:
		o.logger.Info("Player spawned, waiting for server greeting")
	case game.ChatEvent:
		o.handleChatLine(ctx, evt.Text)
	case game.WindowOpenedEvent:
		o.controller.HandleWindowOpened(evt.Window)
		o.inv.ObserveWindow(evt.Window)
	case game.WindowClosedEvent:
		o.controller.HandleWindowClosed(evt.WindowID)
	case game.SlotUpdatedEvent:
		o.controller.HandleSlotUpdated(evt.WindowID, evt.Slot)
	case game.SignPromptEvent:
		o.controller.HandleSignPrompt(evt.Lines)
	case game.DisconnectedEvent:
		o.logger.Warn("Disconnected from game server", slog.String("reason", evt.Reason))
		o.session.SetMode(state.ModeStartup)
		event.Send(event.BotDisconnected(event.Text("disconnected: "+evt.Reason), evt.Reason))
	}
}

func (o *Orchestrator) handleChatLine(ctx context.Context, raw string) {
	if o.session.Mode() == state.ModeStartup && isStartupLine(raw) {
		o.enterGracePeriod()
	}

	if buyer, item, price, ok := parseSoldLine(raw); ok {
		o.logger.Info("Item sold on auction house",
			slog.String("item", item),
			slog.String("buyer", buyer),
			slog.Float64("price", price),
		)
		event.Send(event.ItemSold(event.Text(item+" sold"), item, price, buyer))
		o.enqueue(queue.PriorityNormal, queue.ClaimSold{ItemName: item}, true)
	}
}

// enterGracePeriod moves startup into a short settle window before commands
// are allowed. Menus opened too early after the spawn tend to desync.
func (o *Orchestrator) enterGracePeriod() {
	if !o.session.CompareAndSetMode(state.ModeStartup, state.ModeGracePeriod) {
		return
	}
	grace := time.Duration(config.Flipper.Startup.GracePeriodSeconds) * time.Second
	o.logger.Info("Startup chat detected, entering grace period", slog.Duration("grace", grace))
	time.AfterFunc(grace, func() {
		if o.session.CompareAndSetMode(state.ModeGracePeriod, state.ModeIdle) {
			elapsed := time.Since(o.startedAt)
			o.logger.Info("Startup complete", slog.Duration("elapsed", elapsed))
			event.Send(event.StartupComplete(event.Text("startup complete"), elapsed))
		}
	})
}

// startupWatchdog forces the bot out of startup when chat detection never
// fires, for example after joining a lobby with a modified greeting.
func (o *Orchestrator) startupWatchdog(ctx context.Context) error {
	ceiling := time.Duration(config.Flipper.Startup.WatchdogSeconds) * time.Second
	timer := time.NewTimer(ceiling)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		if o.session.Mode() == state.ModeStartup {
			o.logger.Warn("Startup watchdog fired, forcing idle", slog.Duration("ceiling", ceiling))
			o.enterGracePeriod()
		}
		return nil
	}
}

func (o *Orchestrator) feedLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-o.feed.Events():
			if !ok {
				return nil
			}
			o.handleFeedEvent(ctx, ev)
		}
	}
}

func (o *Orchestrator) handleFeedEvent(ctx context.Context, ev feed.Event) {
	if o.session.Mode() == state.ModeStartup {
		o.logger.Debug("Dropping feed event during startup", slog.String("event", fmt.Sprintf("%T", ev)))
		return
	}

	switch evt := ev.(type) {
	case feed.FlipEvent:
		if !config.Flipper.Flips.AuctionsEnabled {
			return
		}
		o.enqueue(queue.PriorityHigh, queue.PurchaseAuction{Flip: evt.Flip}, false)
	case feed.BazaarEvent:
		o.enqueueBazaar(evt.Order)
	case feed.ChatEvent:
		text := feed.InjectReferral(evt.Text)
		o.logger.Info("Feed message", slog.String("text", game.StripFormatting(text)))
		if order, ok := feed.ParseChatOrder(text); ok {
			o.enqueueBazaar(order)
		}
	case feed.ExecuteEvent:
		o.enqueue(queue.PriorityHigh, queue.SendChat{Text: evt.Command}, true)
	case feed.CountdownEvent:
		o.suppressBazaar(evt.Seconds)
	case feed.InventoryRequestEvent:
		if err := o.feed.Send("uploadInventory", o.inv.UploadPayload()); err != nil {
			o.logger.Warn("Failed to upload inventory", slog.Any("error", err))
		}
	case feed.SwapProfileEvent:
		o.enqueue(queue.PriorityNormal, queue.SwapProfile{Profile: evt.Profile}, true)
	case feed.TradeResponseEvent:
		if evt.Accept {
			o.enqueue(queue.PriorityHigh, queue.AcceptTrade{}, false)
		}
	case feed.CreateAuctionEvent:
		o.enqueue(queue.PriorityNormal, queue.CreateAuction{
			ItemName: evt.ItemName,
			Price:    evt.Price,
			Duration: time.Duration(evt.Duration) * time.Hour,
		}, true)
	case feed.UnknownEvent:
		o.logger.Debug("Unknown feed message", slog.String("type", evt.Type))
	}
}

// enqueue adds a command and preempts the in-flight one when the newcomer is
// strictly more urgent and the running command allows interruption. The
// interrupted command goes back to the front of its priority band and runs
// again once the urgent one finishes.
func (o *Orchestrator) enqueue(priority queue.Priority, payload queue.Payload, interruptible bool) {
	o.cmdQ.Enqueue(priority, payload, interruptible)
	if !o.cmdQ.CanInterruptCurrent(priority) {
		return
	}
	if item, ok := o.cmdQ.InterruptCurrent(); ok {
		o.logger.Info("Interrupting command for a more urgent one",
			slog.String("command", fmt.Sprintf("%T", item.Payload)),
		)
		o.cancelInflight()
	}
}

func (o *Orchestrator) setInflightCancel(cancel context.CancelFunc) {
	o.inflightMu.Lock()
	o.inflightCancel = cancel
	o.inflightMu.Unlock()
}

func (o *Orchestrator) cancelInflight() {
	o.inflightMu.Lock()
	cancel := o.inflightCancel
	o.inflightMu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (o *Orchestrator) enqueueBazaar(order model.BazaarOrder) {
	if !config.Flipper.Flips.BazaarEnabled {
		return
	}
	if o.bazaarSuppressed() {
		o.logger.Debug("Bazaar order suppressed during countdown", slog.String("item", order.ItemName))
		return
	}
	o.enqueue(queue.PriorityNormal, queue.PlaceBazaarOrder{Order: order}, true)
}

// suppressBazaar holds back bazaar placement while high priority flips are
// about to arrive, and drops everything already queued.
func (o *Orchestrator) suppressBazaar(seconds int) {
	window := defaultSuppression
	if seconds > 0 {
		window = time.Duration(seconds) * time.Second
	}
	o.mu.Lock()
	o.suppressedUntil = time.Now().Add(window)
	o.mu.Unlock()

	dropped := o.cmdQ.ClearBazaar()
	o.logger.Info("Countdown received, suppressing bazaar orders",
		slog.Duration("window", window),
		slog.Int("dropped", dropped),
	)
}

func (o *Orchestrator) bazaarSuppressed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return time.Now().Before(o.suppressedUntil)
}

func (o *Orchestrator) drainLoop(ctx context.Context) error {
	ticker := time.NewTicker(drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			mode := o.session.Mode()
			if !mode.AllowsCommands() || mode.Busy() {
				continue
			}
			item, ok := o.cmdQ.StartCurrent()
			if !ok {
				continue
			}
			itemCtx, cancel := context.WithCancel(ctx)
			o.setInflightCancel(cancel)
			o.execute(itemCtx, item)
			o.setInflightCancel(nil)
			cancel()
			o.cmdQ.CompleteCurrent()
		}
	}
}

func (o *Orchestrator) execute(ctx context.Context, item queue.Item) {
	switch payload := item.Payload.(type) {
	case queue.SendChat:
		o.sendChat(ctx, payload.Text)
	case queue.ClickSlot:
		if err := o.transport.ClickSlot(ctx, payload.WindowID, payload.Slot, 0); err != nil {
			o.logger.Warn("Click failed", slog.Any("error", err))
		}
	case queue.PurchaseAuction:
		o.executePurchase(ctx, payload)
	case queue.PlaceBazaarOrder:
		o.executeBazaar(ctx, payload)
	case queue.ClaimPurchased:
		o.executeClaim(ctx, state.ModeClaimingPurchased, o.controller.RunClaimPurchased)
	case queue.ClaimSold:
		o.executeClaim(ctx, state.ModeClaimingSold, o.controller.RunClaimSold)
	case queue.SwapProfile:
		o.sendChat(ctx, "/profile "+payload.Profile)
	case queue.AcceptTrade:
		o.sendChat(ctx, "/trade accept")
	case queue.CreateAuction:
		err := o.coordinator.Run(ctx, state.ModePurchasing, func(ctx context.Context) error {
			return o.controller.RunCreateAuction(ctx, payload.ItemName, payload.Price, payload.Duration)
		})
		if err != nil {
			o.logger.Warn("Create auction failed",
				slog.String("item", payload.ItemName),
				slog.Any("error", err),
			)
		}
	case queue.UploadInventory:
		if err := o.feed.Send("uploadInventory", o.inv.UploadPayload()); err != nil {
			o.logger.Warn("Failed to upload inventory", slog.Any("error", err))
		}
	}
}

func (o *Orchestrator) sendChat(ctx context.Context, text string) {
	if err := o.chatLimiter.Wait(ctx); err != nil {
		return
	}
	if err := o.transport.SendChat(ctx, text); err != nil {
		o.logger.Warn("Chat send failed", slog.String("text", text), slog.Any("error", err))
	}
}

func (o *Orchestrator) executePurchase(ctx context.Context, payload queue.PurchaseAuction) {
	flip := payload.Flip
	preClick, rule := config.Flipper.Flips.Skip.ShouldSkip(flip)
	if preClick {
		o.logger.Debug("Using confirm pre-click",
			slog.String("item", flip.ItemName),
			slog.String("rule", rule),
		)
	}
	var outcome flow.PurchaseOutcome
	err := o.coordinator.Run(ctx, state.ModePurchasing, func(ctx context.Context) error {
		var err error
		outcome, err = o.controller.RunPurchase(ctx, flip, preClick)
		return err
	})
	if err != nil {
		o.logger.Warn("Purchase failed",
			slog.String("item", flip.ItemName),
			slog.Any("error", err),
		)
		event.Send(event.FlipFailed(event.Text("purchase failed"), flip, flow.FailureOf(err).String()))
		return
	}

	o.logger.Info("Purchase flow finished",
		slog.String("item", flip.ItemName),
		slog.Duration("elapsed", outcome.Elapsed),
		slog.Bool("claimed", outcome.Claimed),
	)
	event.Send(event.FlipPurchased(event.Text("purchased "+flip.ItemName), flip))
	if err := o.feed.Send("purchased", map[string]string{"uuid": flip.AuctionID}); err != nil {
		o.logger.Warn("Failed to report purchase to feed", slog.Any("error", err))
	}
}

func (o *Orchestrator) executeBazaar(ctx context.Context, payload queue.PlaceBazaarOrder) {
	order := payload.Order
	if o.bazaarSuppressed() {
		o.logger.Debug("Dropping suppressed bazaar order", slog.String("item", order.ItemName))
		return
	}
	err := o.coordinator.Run(ctx, state.ModeBazaar, func(ctx context.Context) error {
		return o.controller.RunBazaar(ctx, order)
	})
	if err != nil {
		o.logger.Warn("Bazaar order failed",
			slog.String("item", order.ItemName),
			slog.Any("error", err),
		)
		event.Send(event.BazaarOrderFailed(event.Text("bazaar order failed"), order, flow.FailureOf(err).String()))
		return
	}
	event.Send(event.BazaarOrderPlaced(event.Text("placed bazaar order"), order))
}

func (o *Orchestrator) executeClaim(ctx context.Context, mode state.Mode, run func(context.Context) (flow.ClaimOutcome, error)) {
	var outcome flow.ClaimOutcome
	err := o.coordinator.Run(ctx, mode, func(ctx context.Context) error {
		var err error
		outcome, err = run(ctx)
		return err
	})
	if err != nil {
		o.logger.Warn("Claim sweep failed", slog.Any("error", err))
		return
	}
	sold := mode == state.ModeClaimingSold
	for _, name := range outcome.Claimed {
		event.Send(event.ItemClaimed(event.Text("claimed "+name), name, sold))
	}
	if outcome.UsedClaimAll {
		o.logger.Info("Claimed everything through claim all", slog.Bool("sold", sold))
	}
}
