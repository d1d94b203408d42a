package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyflipper/internal/model"
)

func newTestQueue(now *time.Time) *Queue {
	q := New()
	q.now = func() time.Time { return *now }
	return q
}

func TestEnqueueOrdersByPriority(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)

	q.Enqueue(PriorityNormal, SendChat{Text: "first"}, true)
	q.Enqueue(PriorityLow, SendChat{Text: "low"}, true)
	q.Enqueue(PriorityCritical, SendChat{Text: "urgent"}, false)
	q.Enqueue(PriorityNormal, SendChat{Text: "second"}, true)

	texts := make([]string, 0, 4)
	for {
		item, ok := q.StartCurrent()
		if !ok {
			break
		}
		texts = append(texts, item.Payload.(SendChat).Text)
		q.CompleteCurrent()
	}
	assert.Equal(t, []string{"urgent", "first", "second", "low"}, texts)
}

func TestStartCurrentNoOpWhileRunning(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)

	q.Enqueue(PriorityNormal, SendChat{Text: "a"}, true)
	q.Enqueue(PriorityNormal, SendChat{Text: "b"}, true)

	_, ok := q.StartCurrent()
	require.True(t, ok)

	_, ok = q.StartCurrent()
	assert.False(t, ok)
	assert.Equal(t, 1, q.Len())

	q.CompleteCurrent()
	item, ok := q.StartCurrent()
	require.True(t, ok)
	assert.Equal(t, "b", item.Payload.(SendChat).Text)
}

func TestStaleBazaarOrdersPruned(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)

	q.Enqueue(PriorityNormal, PlaceBazaarOrder{Order: model.BazaarOrder{ItemName: "Enchanted Coal"}}, true)
	now = now.Add(61 * time.Second)
	q.Enqueue(PriorityNormal, SendChat{Text: "fresh"}, true)

	item, ok := q.StartCurrent()
	require.True(t, ok)
	assert.Equal(t, "fresh", item.Payload.(SendChat).Text)
	assert.Equal(t, 0, q.Len())
}

func TestFreshBazaarOrderSurvivesPeek(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)

	q.Enqueue(PriorityNormal, PlaceBazaarOrder{Order: model.BazaarOrder{ItemName: "Enchanted Coal"}}, true)
	now = now.Add(59 * time.Second)

	item, ok := q.StartCurrent()
	require.True(t, ok)
	assert.IsType(t, PlaceBazaarOrder{}, item.Payload)
}

func TestCanInterruptCurrent(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)

	q.Enqueue(PriorityNormal, SendChat{Text: "chat"}, true)
	_, ok := q.StartCurrent()
	require.True(t, ok)

	assert.True(t, q.CanInterruptCurrent(PriorityCritical))
	assert.False(t, q.CanInterruptCurrent(PriorityNormal))
	assert.False(t, q.CanInterruptCurrent(PriorityLow))

	q.CompleteCurrent()
	q.Enqueue(PriorityNormal, PurchaseAuction{}, false)
	_, ok = q.StartCurrent()
	require.True(t, ok)
	assert.False(t, q.CanInterruptCurrent(PriorityCritical))
}

func TestInterruptRequeuesCurrent(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)

	q.Enqueue(PriorityNormal, SendChat{Text: "resumable"}, true)
	started, ok := q.StartCurrent()
	require.True(t, ok)

	q.Enqueue(PriorityCritical, SendChat{Text: "urgent"}, false)
	requeued, ok := q.InterruptCurrent()
	require.True(t, ok)
	assert.Equal(t, started.ID, requeued.ID)

	item, ok := q.StartCurrent()
	require.True(t, ok)
	assert.Equal(t, "urgent", item.Payload.(SendChat).Text)
	q.CompleteCurrent()

	item, ok = q.StartCurrent()
	require.True(t, ok)
	assert.Equal(t, started.ID, item.ID)
}

func TestClearBazaar(t *testing.T) {
	now := time.Now()
	q := newTestQueue(&now)

	q.Enqueue(PriorityNormal, PlaceBazaarOrder{}, true)
	q.Enqueue(PriorityNormal, SendChat{Text: "keep"}, true)
	q.Enqueue(PriorityLow, PlaceBazaarOrder{}, true)

	assert.Equal(t, 2, q.ClearBazaar())
	assert.Equal(t, 1, q.Len())
}
