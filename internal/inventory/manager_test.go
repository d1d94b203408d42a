package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyflipper/internal/game"
)

func chestWith(items ...game.SlotContent) game.WindowSnapshot {
	slots := make([]game.SlotContent, 0, 81)
	for i := 0; i < 81; i++ {
		slots = append(slots, game.SlotContent{Index: i})
	}
	for _, item := range items {
		slots[item.Index] = item
	}
	return game.WindowSnapshot{ID: 1, Slots: slots}
}

func TestObserveWindowCapturesTrailingSection(t *testing.T) {
	m := NewManager()
	m.ObserveWindow(chestWith(
		game.SlotContent{Index: 10, ItemID: "chest_item", Count: 1, DisplayName: "In Container"},
		game.SlotContent{Index: 50, ItemID: "diamond_sword", Count: 1, DisplayName: "§6Hyperion"},
	))

	snap := m.Snapshot()
	require.NotEmpty(t, snap)
	_, found := m.Find("Hyperion")
	assert.True(t, found)
	_, found = m.Find("In Container")
	assert.False(t, found, "container slots are not inventory")
}

func TestUploadPayloadOmitsEmptySlots(t *testing.T) {
	m := NewManager()
	m.ObserveWindow(chestWith(
		game.SlotContent{Index: 50, ItemID: "diamond_sword", Count: 1, DisplayName: "§6Hyperion", Lore: []string{"§7Legendary"}},
		game.SlotContent{Index: 77, ItemID: "potato", Count: 64, DisplayName: "§fPotato"},
	))

	payload := m.UploadPayload()
	require.Len(t, payload, 2)
	assert.Equal(t, "Hyperion", payload[0].Name)
	assert.Equal(t, 50, payload[0].Slot)
	assert.Equal(t, 64, payload[1].Count)
}

func TestFindMissing(t *testing.T) {
	m := NewManager()
	_, found := m.Find("anything")
	assert.False(t, found)
}
