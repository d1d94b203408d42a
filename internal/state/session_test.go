package state

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"skyflipper/internal/game"
)

func TestSessionStartsInStartup(t *testing.T) {
	s := NewSession()
	defer s.Close()

	assert.Equal(t, ModeStartup, s.Mode())
	assert.False(t, s.Mode().AllowsCommands())
}

func TestSessionSetMode(t *testing.T) {
	s := NewSession()
	defer s.Close()

	s.SetMode(ModeIdle)
	assert.Equal(t, ModeIdle, s.Mode())
	assert.True(t, s.Mode().AllowsCommands())
}

func TestCompareAndSetMode(t *testing.T) {
	s := NewSession()
	defer s.Close()

	assert.False(t, s.CompareAndSetMode(ModeIdle, ModePurchasing))
	assert.Equal(t, ModeStartup, s.Mode())

	assert.True(t, s.CompareAndSetMode(ModeStartup, ModeGracePeriod))
	assert.Equal(t, ModeGracePeriod, s.Mode())
}

func TestOnlyStartupBlocksCommands(t *testing.T) {
	blocked := map[Mode]bool{ModeStartup: true}
	all := []Mode{
		ModeStartup, ModeGracePeriod, ModeIdle, ModePurchasing,
		ModeBazaar, ModeClaimingPurchased, ModeClaimingSold,
	}
	for _, m := range all {
		assert.Equal(t, !blocked[m], m.AllowsCommands(), m.String())
	}
}

func TestSessionLastWindow(t *testing.T) {
	s := NewSession()
	defer s.Close()

	assert.Nil(t, s.LastWindow())
	w := game.NewWindowSnapshot(3, `{"text":"BIN Auction View"}`, nil)
	s.SetLastWindow(&w)
	assert.Equal(t, &w, s.LastWindow())
}

func TestSessionConcurrentAccess(t *testing.T) {
	s := NewSession()
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.SetMode(ModeIdle)
			} else {
				_ = s.Mode()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, ModeIdle, s.Mode())
}
