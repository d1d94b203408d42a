package flow

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyflipper/internal/state"
)

func newTestCoordinator() (*Coordinator, *state.Session, *[]time.Duration) {
	session := state.NewSession()
	session.SetMode(state.ModeIdle)
	c := NewCoordinator(session, slog.New(slog.DiscardHandler))
	waits := &[]time.Duration{}
	c.sleep = func(d time.Duration) { *waits = append(*waits, d) }
	return c, session, waits
}

func TestRetrySucceedsFirstAttempt(t *testing.T) {
	c, session, waits := newTestCoordinator()
	defer session.Close()

	calls := 0
	err := c.Run(context.Background(), state.ModePurchasing, func(context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *waits)
	assert.Equal(t, state.ModeIdle, session.Mode())
}

func TestRetryBackoffDoubles(t *testing.T) {
	c, session, waits := newTestCoordinator()
	defer session.Close()

	calls := 0
	err := c.Run(context.Background(), state.ModeBazaar, func(context.Context) error {
		calls++
		return failf(FailureTimeout, "window did not open")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
	assert.Equal(t, state.ModeIdle, session.Mode())
}

func TestRetryPriceFailsafeIsRetried(t *testing.T) {
	c, session, _ := newTestCoordinator()
	defer session.Close()

	calls := 0
	err := c.Run(context.Background(), state.ModeBazaar, func(context.Context) error {
		calls++
		if calls < 2 {
			return failf(FailurePriceFailsafe, "price moved")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryNonRetryableFailsImmediately(t *testing.T) {
	c, session, waits := newTestCoordinator()
	defer session.Close()

	calls := 0
	err := c.Run(context.Background(), state.ModePurchasing, func(context.Context) error {
		calls++
		return failf(FailureInsufficientFunds, "too poor")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *waits)
	assert.Equal(t, state.ModeIdle, session.Mode())
}

func TestRetrySetsBusyModeDuringAttempts(t *testing.T) {
	c, session, _ := newTestCoordinator()
	defer session.Close()

	var seen state.Mode
	err := c.Run(context.Background(), state.ModeClaimingSold, func(context.Context) error {
		seen = session.Mode()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, state.ModeClaimingSold, seen)
	assert.Equal(t, state.ModeIdle, session.Mode())
}
