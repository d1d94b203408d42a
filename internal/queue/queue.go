package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"skyflipper/internal/model"
)

// Priority orders queued commands. Lower values run first.
type Priority int

const (
	PriorityCritical Priority = 1
	PriorityHigh     Priority = 2
	PriorityNormal   Priority = 3
	PriorityLow      Priority = 4
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	}
	return "unknown"
}

// Payload is the closed set of commands the bot executes. New command kinds
// are added here, never via an open interface at call sites.
type Payload interface {
	commandPayload()
}

type SendChat struct {
	Text string
}

type ClickSlot struct {
	WindowID int
	Slot     int
}

type PurchaseAuction struct {
	Flip model.AuctionFlip
}

type PlaceBazaarOrder struct {
	Order model.BazaarOrder
}

type ClaimPurchased struct {
	ItemName string
}

type ClaimSold struct {
	ItemName string
}

type SwapProfile struct {
	Profile string
}

type AcceptTrade struct{}

type CreateAuction struct {
	ItemName string
	Price    float64
	Duration time.Duration
}

type UploadInventory struct{}

func (SendChat) commandPayload()         {}
func (ClickSlot) commandPayload()        {}
func (PurchaseAuction) commandPayload()  {}
func (PlaceBazaarOrder) commandPayload() {}
func (ClaimPurchased) commandPayload()   {}
func (ClaimSold) commandPayload()        {}
func (SwapProfile) commandPayload()      {}
func (AcceptTrade) commandPayload()      {}
func (CreateAuction) commandPayload()    {}
func (UploadInventory) commandPayload()  {}

// bazaarStaleness is how long a queued bazaar order stays actionable. Prices
// move fast enough that anything older is discarded at peek time.
const bazaarStaleness = 60 * time.Second

// Item is a queued command with its scheduling metadata.
type Item struct {
	ID            uuid.UUID
	Priority      Priority
	Payload       Payload
	QueuedAt      time.Time
	Interruptible bool
}

// Queue holds pending commands in priority order plus at most one command
// currently being executed. All methods are safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	items   []Item
	current *Item
	now     func() time.Time
}

func New() *Queue {
	return &Queue{now: time.Now}
}

// Enqueue inserts the command before the first strictly less urgent entry,
// keeping arrival order within a priority level.
func (q *Queue) Enqueue(priority Priority, payload Payload, interruptible bool) uuid.UUID {
	q.mu.Lock()
	defer q.mu.Unlock()

	item := Item{
		ID:            uuid.New(),
		Priority:      priority,
		Payload:       payload,
		QueuedAt:      q.now(),
		Interruptible: interruptible,
	}
	pos := len(q.items)
	for i, existing := range q.items {
		if existing.Priority > priority {
			pos = i
			break
		}
	}
	q.items = append(q.items, Item{})
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = item
	return item.ID
}

// StartCurrent promotes the head of the queue to the in-flight slot. It is a
// no-op while a command is already running. Stale bazaar orders at the head
// are pruned rather than started.
func (q *Queue) StartCurrent() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current != nil {
		return Item{}, false
	}
	q.pruneStale()
	if len(q.items) == 0 {
		return Item{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	q.current = &item
	return item, true
}

// Current returns the in-flight command, if any.
func (q *Queue) Current() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return Item{}, false
	}
	return *q.current, true
}

// CompleteCurrent clears the in-flight slot.
func (q *Queue) CompleteCurrent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.current = nil
}

// CanInterruptCurrent reports whether the running command may be abandoned
// for a more urgent one.
func (q *Queue) CanInterruptCurrent(priority Priority) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return false
	}
	return q.current.Interruptible && priority < q.current.Priority
}

// InterruptCurrent pushes the running command back to the front of its
// priority band and clears the in-flight slot.
func (q *Queue) InterruptCurrent() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return Item{}, false
	}
	item := *q.current
	q.current = nil
	pos := len(q.items)
	for i, existing := range q.items {
		if existing.Priority >= item.Priority {
			pos = i
			break
		}
	}
	q.items = append(q.items, Item{})
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = item
	return item, true
}

// Len reports the number of pending commands, not counting the in-flight one.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// ClearBazaar drops every pending bazaar order, returning how many were
// removed. Used when an update window is announced and open orders would be
// filled at stale prices.
func (q *Queue) ClearBazaar() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	removed := 0
	for _, item := range q.items {
		if _, ok := item.Payload.(PlaceBazaarOrder); ok {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	q.items = kept
	return removed
}

// pruneStale drops bazaar orders older than the staleness window from the
// head of the queue. Callers hold q.mu.
func (q *Queue) pruneStale() {
	cutoff := q.now().Add(-bazaarStaleness)
	for len(q.items) > 0 {
		head := q.items[0]
		if _, ok := head.Payload.(PlaceBazaarOrder); !ok {
			return
		}
		if !head.QueuedAt.Before(cutoff) {
			return
		}
		q.items = q.items[1:]
	}
}
