package game

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
)

// bridgeCommand is an outbound frame to the game client process.
type bridgeCommand struct {
	Op       string `json:"op"`
	Text     string `json:"text,omitempty"`
	WindowID int    `json:"windowId,omitempty"`
	Slot     int    `json:"slot,omitempty"`
	Action   int    `json:"action,omitempty"`
}

// bridgeFrame is an inbound frame from the game client process.
type bridgeFrame struct {
	Event    string       `json:"event"`
	Text     string       `json:"text,omitempty"`
	Reason   string       `json:"reason,omitempty"`
	WindowID int          `json:"windowId,omitempty"`
	Title    string       `json:"title,omitempty"`
	Slots    []bridgeSlot `json:"slots,omitempty"`
	Slot     *bridgeSlot  `json:"slot,omitempty"`
	Lines    []string     `json:"lines,omitempty"`
}

type bridgeSlot struct {
	Index  int      `json:"index"`
	ItemID string   `json:"itemId"`
	Count  int      `json:"count"`
	Name   string   `json:"name"`
	Lore   []string `json:"lore,omitempty"`
}

func (s bridgeSlot) content() SlotContent {
	return SlotContent{
		Index:       s.Index,
		ItemID:      s.ItemID,
		Count:       s.Count,
		DisplayName: s.Name,
		Lore:        s.Lore,
	}
}

// Bridge is the Transport over a local websocket to the game client
// process, which owns the actual server connection and packet encoding.
type Bridge struct {
	addr   string
	logger *slog.Logger
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn

	events chan Event
}

func NewBridge(addr string, logger *slog.Logger) *Bridge {
	return &Bridge{
		addr:   addr,
		logger: logger,
		dialer: websocket.DefaultDialer,
		events: make(chan Event, 256),
	}
}

func (b *Bridge) Events() <-chan Event {
	return b.events
}

func (b *Bridge) SendChat(ctx context.Context, text string) error {
	return b.send(ctx, bridgeCommand{Op: "chat", Text: text})
}

func (b *Bridge) ClickSlot(ctx context.Context, windowID, slot, action int) error {
	return b.send(ctx, bridgeCommand{Op: "click", WindowID: windowID, Slot: slot, Action: action})
}

func (b *Bridge) WriteSign(ctx context.Context, text string) error {
	return b.send(ctx, bridgeCommand{Op: "sign", Text: text})
}

func (b *Bridge) CloseWindow(ctx context.Context, windowID int) error {
	return b.send(ctx, bridgeCommand{Op: "closeWindow", WindowID: windowID})
}

func (b *Bridge) send(ctx context.Context, cmd bridgeCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return fmt.Errorf("game bridge not connected")
	}

	deadline := time.Now().Add(10 * time.Second)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	b.conn.SetWriteDeadline(deadline)
	return b.conn.WriteJSON(cmd)
}

// Run maintains the bridge connection until the context is cancelled,
// redialing with backoff after drops. Each drop surfaces as a
// DisconnectedEvent so the engine can reset its session.
func (b *Bridge) Run(ctx context.Context) error {
	bo := &backoff.Backoff{
		Min:    time.Second,
		Max:    30 * time.Second,
		Factor: 2,
		Jitter: true,
	}
	for {
		conn, _, err := b.dialer.DialContext(ctx, b.addr, nil)
		if err != nil {
			wait := bo.Duration()
			b.logger.Warn("Game bridge dial failed",
				slog.String("addr", b.addr),
				slog.Any("error", err),
				slog.Duration("retry_in", wait),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}
		bo.Reset()
		b.mu.Lock()
		b.conn = conn
		b.mu.Unlock()
		b.logger.Info("Game bridge connected", slog.String("addr", b.addr))

		err = b.readLoop(ctx, conn)
		b.mu.Lock()
		b.conn = nil
		b.mu.Unlock()
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Warn("Game bridge disconnected", slog.Any("error", err))
		b.emit(DisconnectedEvent{Reason: err.Error()})
	}
}

func (b *Bridge) readLoop(ctx context.Context, conn *websocket.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var frame bridgeFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			b.logger.Debug("Dropping malformed bridge frame", slog.Any("error", err))
			continue
		}
		if e, ok := b.translate(frame); ok {
			b.emit(e)
		}
	}
}

func (b *Bridge) translate(frame bridgeFrame) (Event, bool) {
	switch frame.Event {
	case "login":
		return LoginEvent{}, true
	case "spawn":
		return SpawnEvent{}, true
	case "chat":
		return ChatEvent{Text: frame.Text}, true
	case "windowOpen":
		slots := make([]SlotContent, 0, len(frame.Slots))
		for _, s := range frame.Slots {
			slots = append(slots, s.content())
		}
		return WindowOpenedEvent{Window: NewWindowSnapshot(frame.WindowID, frame.Title, slots)}, true
	case "windowClose":
		return WindowClosedEvent{WindowID: frame.WindowID}, true
	case "slot":
		if frame.Slot == nil {
			return nil, false
		}
		return SlotUpdatedEvent{WindowID: frame.WindowID, Slot: frame.Slot.content()}, true
	case "sign":
		return SignPromptEvent{Lines: frame.Lines}, true
	case "disconnect":
		return DisconnectedEvent{Reason: frame.Reason}, true
	}
	b.logger.Debug("Unknown bridge event", slog.String("event", frame.Event))
	return nil, false
}

func (b *Bridge) emit(e Event) {
	select {
	case b.events <- e:
	default:
		b.logger.Warn("Game event buffer full, dropping event")
	}
}
