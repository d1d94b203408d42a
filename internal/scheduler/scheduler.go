package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"skyflipper/internal/queue"
)

// Scheduler enqueues periodic claim sweeps so purchased and sold items do not
// pile up unclaimed while the bot chases flips.
type Scheduler struct {
	cron   *cron.Cron
	cmdQ   *queue.Queue
	logger *slog.Logger
}

func New(cmdQ *queue.Queue, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		cmdQ:   cmdQ,
		logger: logger,
	}
}

// AddClaimJobs registers the two sweep jobs. Either spec may be empty to
// disable that sweep.
func (s *Scheduler) AddClaimJobs(purchasedSpec, soldSpec string) error {
	if purchasedSpec != "" {
		if _, err := s.cron.AddFunc(purchasedSpec, func() {
			s.logger.Debug("Scheduling purchased-items claim sweep")
			s.cmdQ.Enqueue(queue.PriorityLow, queue.ClaimPurchased{}, true)
		}); err != nil {
			return fmt.Errorf("invalid purchased claim spec %q: %w", purchasedSpec, err)
		}
	}
	if soldSpec != "" {
		if _, err := s.cron.AddFunc(soldSpec, func() {
			s.logger.Debug("Scheduling sold-items claim sweep")
			s.cmdQ.Enqueue(queue.PriorityLow, queue.ClaimSold{}, true)
		}); err != nil {
			return fmt.Errorf("invalid sold claim spec %q: %w", soldSpec, err)
		}
	}
	return nil
}

// Run starts the cron loop and blocks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return nil
}
