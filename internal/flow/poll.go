package flow

import (
	"context"
	"time"
)

// PollUntil calls check every interval until it yields a value, the timeout
// elapses, or the context is cancelled. Timeouts surface as retryable flow
// errors so callers can hand them straight to the retry coordinator.
func PollUntil[T any](ctx context.Context, timeout, interval time.Duration, check func() (T, bool)) (T, error) {
	var zero T
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(interval)
	defer tick.Stop()

	if v, ok := check(); ok {
		return v, nil
	}
	for {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-deadline.C:
			return zero, failf(FailureTimeout, "no result after %s", timeout)
		case <-tick.C:
			if v, ok := check(); ok {
				return v, nil
			}
		}
	}
}
