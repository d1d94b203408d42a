package inventory

import (
	"strings"
	"sync"

	"skyflipper/internal/game"
)

// PlayerSlots is the standard personal inventory size.
const PlayerSlots = 45

// Manager tracks the bot's personal inventory. Container menus carry a copy
// of the personal section in their trailing slots, so every open window
// refreshes the picture.
type Manager struct {
	mu    sync.RWMutex
	slots []game.SlotContent
}

func NewManager() *Manager {
	return &Manager{slots: make([]game.SlotContent, 0, PlayerSlots)}
}

// ObserveWindow refreshes the inventory from a container snapshot.
func (m *Manager) ObserveWindow(w game.WindowSnapshot) {
	section := w.InventorySection()
	if len(section) == 0 {
		return
	}
	m.mu.Lock()
	m.slots = section
	m.mu.Unlock()
}

// Snapshot returns a copy of the known inventory slots.
func (m *Manager) Snapshot() []game.SlotContent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]game.SlotContent, len(m.slots))
	copy(out, m.slots)
	return out
}

// Find returns the slot index of the first item whose display name contains
// name, for pulling a just-bought item back out of the inventory.
func (m *Manager) Find(name string) (int, bool) {
	want := strings.ToLower(game.StripFormatting(name))
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.slots {
		if s.Empty() {
			continue
		}
		if strings.Contains(strings.ToLower(game.StripFormatting(s.DisplayName)), want) {
			return s.Index, true
		}
	}
	return 0, false
}

// UploadItem is one inventory entry in the shape the feed expects back when
// it asks for the inventory.
type UploadItem struct {
	Slot  int      `json:"slot"`
	ID    string   `json:"id"`
	Name  string   `json:"itemName"`
	Count int      `json:"count"`
	Lore  []string `json:"lore,omitempty"`
}

// UploadPayload renders the inventory for a feed upload. Empty slots are
// omitted.
func (m *Manager) UploadPayload() []UploadItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]UploadItem, 0, len(m.slots))
	for _, s := range m.slots {
		if s.Empty() {
			continue
		}
		out = append(out, UploadItem{
			Slot:  s.Index,
			ID:    s.ItemID,
			Name:  game.StripFormatting(s.DisplayName),
			Count: s.Count,
			Lore:  s.Lore,
		})
	}
	return out
}
