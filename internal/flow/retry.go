package flow

import (
	"context"
	"log/slog"
	"time"

	"github.com/jpillora/backoff"

	"skyflipper/internal/state"
)

const defaultMaxAttempts = 3

// Coordinator reruns failed menu flows with exponential backoff. The bot
// drops back to idle for the duration of each wait so urgent commands are
// not starved by a flow that keeps failing.
type Coordinator struct {
	session     *state.Session
	logger      *slog.Logger
	maxAttempts int
	sleep       func(time.Duration)
}

func NewCoordinator(session *state.Session, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		session:     session,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
		sleep:       time.Sleep,
	}
}

// Run executes op in the given busy mode, retrying retryable failures. The
// session is back in idle by the time Run returns, whatever happened.
func (c *Coordinator) Run(ctx context.Context, mode state.Mode, op func(ctx context.Context) error) error {
	b := &backoff.Backoff{
		Min:    time.Second,
		Factor: 2,
		Jitter: false,
	}
	defer c.session.SetMode(state.ModeIdle)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		c.session.SetMode(mode)
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		kind := FailureOf(err)
		if !kind.Retryable() {
			c.logger.Warn("Flow failed without retry",
				slog.String("mode", mode.String()),
				slog.String("failure", kind.String()),
				slog.Any("error", err),
			)
			return err
		}
		if attempt == c.maxAttempts {
			break
		}

		wait := b.Duration()
		c.logger.Info("Flow failed, backing off",
			slog.String("mode", mode.String()),
			slog.String("failure", kind.String()),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
		)
		c.session.SetMode(state.ModeIdle)
		c.sleep(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	c.logger.Error("Flow failed after all attempts",
		slog.String("mode", mode.String()),
		slog.Int("attempts", c.maxAttempts),
		slog.Any("error", lastErr),
	)
	return lastErr
}
