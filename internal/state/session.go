package state

import (
	"skyflipper/internal/game"
)

// Mode is the bot's top level activity. Exactly one mode is active at any
// time and all transitions go through the Session actor.
type Mode int

const (
	ModeStartup Mode = iota
	ModeGracePeriod
	ModeIdle
	ModePurchasing
	ModeBazaar
	ModeClaimingPurchased
	ModeClaimingSold
)

func (m Mode) String() string {
	switch m {
	case ModeStartup:
		return "startup"
	case ModeGracePeriod:
		return "grace_period"
	case ModeIdle:
		return "idle"
	case ModePurchasing:
		return "purchasing"
	case ModeBazaar:
		return "bazaar"
	case ModeClaimingPurchased:
		return "claiming_purchased"
	case ModeClaimingSold:
		return "claiming_sold"
	}
	return "unknown"
}

// AllowsCommands reports whether the bot may begin executing queued commands.
// Only the startup phase blocks the queue; a bot in any other mode either is
// idle or will return to idle on its own.
func (m Mode) AllowsCommands() bool {
	return m != ModeStartup
}

func (m Mode) Busy() bool {
	switch m {
	case ModePurchasing, ModeBazaar, ModeClaimingPurchased, ModeClaimingSold:
		return true
	}
	return false
}

type sessionData struct {
	mode       Mode
	lastWindow *game.WindowSnapshot
}

// Session owns all mutable bot state. Reads and writes are funneled through
// a single goroutine so callers never race each other.
type Session struct {
	ops  chan func(*sessionData)
	done chan struct{}
}

func NewSession() *Session {
	s := &Session{
		ops:  make(chan func(*sessionData), 16),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Session) run() {
	data := &sessionData{mode: ModeStartup}
	for op := range s.ops {
		op(data)
	}
	close(s.done)
}

// Close stops the actor goroutine. Pending operations drain first.
func (s *Session) Close() {
	close(s.ops)
	<-s.done
}

func (s *Session) Mode() Mode {
	out := make(chan Mode, 1)
	s.ops <- func(d *sessionData) { out <- d.mode }
	return <-out
}

func (s *Session) SetMode(m Mode) {
	done := make(chan struct{})
	s.ops <- func(d *sessionData) {
		d.mode = m
		close(done)
	}
	<-done
}

// CompareAndSetMode transitions only when the current mode matches from,
// reporting whether the swap happened.
func (s *Session) CompareAndSetMode(from, to Mode) bool {
	out := make(chan bool, 1)
	s.ops <- func(d *sessionData) {
		if d.mode != from {
			out <- false
			return
		}
		d.mode = to
		out <- true
	}
	return <-out
}

func (s *Session) SetLastWindow(w *game.WindowSnapshot) {
	done := make(chan struct{})
	s.ops <- func(d *sessionData) {
		d.lastWindow = w
		close(done)
	}
	<-done
}

func (s *Session) LastWindow() *game.WindowSnapshot {
	out := make(chan *game.WindowSnapshot, 1)
	s.ops <- func(d *sessionData) { out <- d.lastWindow }
	return <-out
}
