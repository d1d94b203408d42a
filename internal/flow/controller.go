package flow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"skyflipper/internal/game"
	"skyflipper/internal/state"
	"skyflipper/internal/utils"
)

// Delays groups the timing knobs shared by all menu flows.
type Delays struct {
	WindowTimeout  time.Duration
	PollInterval   time.Duration
	ConfirmDelay   time.Duration
	SafetyInterval time.Duration
	SafetyClicks   int
	BedSpamDelay   time.Duration
	BedSpamMax     int
}

func DefaultDelays() Delays {
	return Delays{
		WindowTimeout:  5 * time.Second,
		PollInterval:   50 * time.Millisecond,
		ConfirmDelay:   150 * time.Millisecond,
		SafetyInterval: 250 * time.Millisecond,
		SafetyClicks:   3,
		BedSpamDelay:   100 * time.Millisecond,
		BedSpamMax:     5,
	}
}

type windowWaiter struct {
	pred func(game.WindowSnapshot) bool
	ch   chan game.WindowSnapshot
}

// Controller drives the game's menu windows. The orchestrator feeds it
// transport events; flows block on the await helpers until the menu they
// need shows up.
type Controller struct {
	transport game.Transport
	session   *state.Session
	logger    *slog.Logger
	delays    Delays
	sleep     func(time.Duration)

	mu            sync.Mutex
	windows       map[int]game.WindowSnapshot
	currentWindow int
	clickAction   int
	windowWaiters []*windowWaiter
	signWaiters   []chan []string
	pendingSign   []string
	hasPending    bool
}

func NewController(transport game.Transport, session *state.Session, logger *slog.Logger, delays Delays) *Controller {
	return &Controller{
		transport: transport,
		session:   session,
		logger:    logger,
		delays:    delays,
		sleep:     func(d time.Duration) { time.Sleep(utils.JitterDuration(d)) },
		windows:   make(map[int]game.WindowSnapshot),
	}
}

func (c *Controller) HandleWindowOpened(w game.WindowSnapshot) {
	c.mu.Lock()
	// Only one container window exists at a time; a new one replaces
	// whatever was tracked before.
	for id := range c.windows {
		if id != w.ID {
			delete(c.windows, id)
		}
	}
	c.windows[w.ID] = w
	c.currentWindow = w.ID
	remaining := c.windowWaiters[:0]
	var fired []*windowWaiter
	for _, waiter := range c.windowWaiters {
		if waiter.pred(w) {
			fired = append(fired, waiter)
		} else {
			remaining = append(remaining, waiter)
		}
	}
	c.windowWaiters = remaining
	c.mu.Unlock()

	c.session.SetLastWindow(&w)
	for _, waiter := range fired {
		waiter.ch <- w
	}
}

func (c *Controller) HandleWindowClosed(windowID int) {
	c.mu.Lock()
	delete(c.windows, windowID)
	if c.currentWindow == windowID {
		c.currentWindow = 0
	}
	c.mu.Unlock()
}

func (c *Controller) HandleSlotUpdated(windowID int, slot game.SlotContent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.windows[windowID]
	if !ok {
		return
	}
	slots := make([]game.SlotContent, len(w.Slots))
	copy(slots, w.Slots)
	replaced := false
	for i, s := range slots {
		if s.Index == slot.Index {
			slots[i] = slot
			replaced = true
			break
		}
	}
	if !replaced {
		slots = append(slots, slot)
	}
	w.Slots = slots
	c.windows[windowID] = w
}

func (c *Controller) HandleSignPrompt(lines []string) {
	c.mu.Lock()
	waiters := c.signWaiters
	c.signWaiters = nil
	if len(waiters) == 0 {
		// The prompt can land before the flow starts waiting for it.
		c.pendingSign = lines
		c.hasPending = true
	}
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- lines
	}
}

// Window returns the tracked snapshot for an open window.
func (c *Controller) Window(windowID int) (game.WindowSnapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.windows[windowID]
	return w, ok
}

// CurrentWindowID is the id of the most recently opened window, or zero.
func (c *Controller) CurrentWindowID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentWindow
}

// AwaitWindow blocks until a window matching pred opens. A window already
// open and matching satisfies the wait immediately.
func (c *Controller) AwaitWindow(ctx context.Context, timeout time.Duration, pred func(game.WindowSnapshot) bool) (game.WindowSnapshot, error) {
	c.mu.Lock()
	for _, w := range c.windows {
		if pred(w) {
			c.mu.Unlock()
			return w, nil
		}
	}
	waiter := &windowWaiter{pred: pred, ch: make(chan game.WindowSnapshot, 1)}
	c.windowWaiters = append(c.windowWaiters, waiter)
	c.mu.Unlock()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case w := <-waiter.ch:
		return w, nil
	case <-deadline.C:
		c.dropWindowWaiter(waiter)
		return game.WindowSnapshot{}, failf(FailureTimeout, "window did not open within %s", timeout)
	case <-ctx.Done():
		c.dropWindowWaiter(waiter)
		return game.WindowSnapshot{}, ctx.Err()
	}
}

// AwaitWindowKind waits for the next window of a given kind.
func (c *Controller) AwaitWindowKind(ctx context.Context, timeout time.Duration, kind game.WindowKind) (game.WindowSnapshot, error) {
	return c.AwaitWindow(ctx, timeout, func(w game.WindowSnapshot) bool {
		return w.Kind == kind
	})
}

// AwaitSign blocks until the game asks for sign input.
func (c *Controller) AwaitSign(ctx context.Context, timeout time.Duration) ([]string, error) {
	ch := make(chan []string, 1)
	c.mu.Lock()
	if c.hasPending {
		lines := c.pendingSign
		c.pendingSign = nil
		c.hasPending = false
		c.mu.Unlock()
		return lines, nil
	}
	c.signWaiters = append(c.signWaiters, ch)
	c.mu.Unlock()

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case lines := <-ch:
		return lines, nil
	case <-deadline.C:
		return nil, failf(FailureTimeout, "sign editor did not open within %s", timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AwaitSlotChange polls a slot until its content differs from old.
func (c *Controller) AwaitSlotChange(ctx context.Context, timeout time.Duration, windowID, slotIndex int, old game.SlotContent) (game.SlotContent, error) {
	return PollUntil(ctx, timeout, c.delays.PollInterval, func() (game.SlotContent, bool) {
		w, ok := c.Window(windowID)
		if !ok {
			return game.SlotContent{}, false
		}
		cur, ok := w.Slot(slotIndex)
		if !ok {
			return game.SlotContent{}, false
		}
		if cur.ItemID == old.ItemID && cur.DisplayName == old.DisplayName {
			return game.SlotContent{}, false
		}
		return cur, true
	})
}

// click sends a slot click with the next action number. The server rejects
// clicks whose action counter goes backwards within a session.
func (c *Controller) click(ctx context.Context, windowID, slot int) error {
	c.mu.Lock()
	c.clickAction++
	action := c.clickAction
	c.mu.Unlock()
	return c.transport.ClickSlot(ctx, windowID, slot, action)
}

func (c *Controller) dropWindowWaiter(target *windowWaiter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, waiter := range c.windowWaiters {
		if waiter == target {
			c.windowWaiters = append(c.windowWaiters[:i], c.windowWaiters[i+1:]...)
			return
		}
	}
}

// CloseAll asks the server to close whatever window is open. Safe to call
// when nothing is open.
func (c *Controller) CloseAll(ctx context.Context) {
	id := c.CurrentWindowID()
	if id == 0 {
		return
	}
	if err := c.transport.CloseWindow(ctx, id); err != nil {
		c.logger.Debug("Failed closing window", slog.Int("window", id), slog.Any("error", err))
	}
}
