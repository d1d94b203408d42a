package flow

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollUntilImmediateHit(t *testing.T) {
	v, err := PollUntil(context.Background(), time.Second, time.Millisecond, func() (int, bool) {
		return 42, true
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPollUntilEventualHit(t *testing.T) {
	var n atomic.Int32
	v, err := PollUntil(context.Background(), time.Second, time.Millisecond, func() (string, bool) {
		if n.Add(1) < 4 {
			return "", false
		}
		return "ready", true
	})
	require.NoError(t, err)
	assert.Equal(t, "ready", v)
}

func TestPollUntilTimeout(t *testing.T) {
	_, err := PollUntil(context.Background(), 20*time.Millisecond, time.Millisecond, func() (int, bool) {
		return 0, false
	})
	require.Error(t, err)
	assert.Equal(t, FailureTimeout, FailureOf(err))
}

func TestPollUntilContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PollUntil(ctx, time.Second, time.Millisecond, func() (int, bool) {
		return 0, false
	})
	assert.ErrorIs(t, err, context.Canceled)
}
