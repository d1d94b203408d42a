package game

import "context"

// Transport is the boundary to the opaque game client. Implementations own
// authentication, packet encoding and world state; the engine only sends chat
// commands and slot clicks and consumes the event stream.
type Transport interface {
	// SendChat sends a chat line or slash command.
	SendChat(ctx context.Context, text string) error
	// ClickSlot clicks a slot in the given window. action is the per-session
	// action counter value that must accompany every click.
	ClickSlot(ctx context.Context, windowID, slot, action int) error
	// WriteSign submits text into the currently open sign editor.
	WriteSign(ctx context.Context, text string) error
	// CloseWindow asks the server to close the given window.
	CloseWindow(ctx context.Context, windowID int) error
	// Events delivers transport events until the connection ends.
	Events() <-chan Event
}

// Event is a transport-level event. The set is closed; consumers switch on
// the concrete types.
type Event interface {
	transportEvent()
}

type LoginEvent struct{}

type SpawnEvent struct{}

type ChatEvent struct {
	Text string
}

type WindowOpenedEvent struct {
	Window WindowSnapshot
}

type WindowClosedEvent struct {
	WindowID int
}

// SlotUpdatedEvent reports a single slot change in an open window. The server
// uses these to swap items in place, e.g. while auction contents load.
type SlotUpdatedEvent struct {
	WindowID int
	Slot     SlotContent
}

// SignPromptEvent reports that the server opened a sign editor. Lines hold
// the pre-filled sign text, which for bazaar flows contains the live price.
type SignPromptEvent struct {
	Lines []string
}

type DisconnectedEvent struct {
	Reason string
}

func (LoginEvent) transportEvent()        {}
func (SpawnEvent) transportEvent()        {}
func (ChatEvent) transportEvent()         {}
func (WindowOpenedEvent) transportEvent() {}
func (WindowClosedEvent) transportEvent() {}
func (SlotUpdatedEvent) transportEvent()  {}
func (SignPromptEvent) transportEvent()   {}
func (DisconnectedEvent) transportEvent() {}
