package scheduler

import (
	"context"
	"sync"
	"time"

	subscriptionUsecases "cadence/internal/application/subscription/usecases"
	"cadence/internal/domain/subscription"
	"cadence/internal/shared/biztime"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

// BillingScheduler periodically scans for active subscriptions whose billing
// date has passed and marks them past_due. Each subscription is transitioned
// in its own transaction so one failure does not poison the batch.
type BillingScheduler struct {
	subscriptionRepo subscription.Repository
	markPastDueUC    *subscriptionUsecases.MarkPastDueUseCase
	logger           logger.Interface
	stopChan         chan struct{}
	stopOnce         sync.Once
	wg               sync.WaitGroup
	interval         time.Duration
	batchSize        int
}

// NewBillingScheduler creates a new BillingScheduler
func NewBillingScheduler(
	subscriptionRepo subscription.Repository,
	markPastDueUC *subscriptionUsecases.MarkPastDueUseCase,
	interval time.Duration,
	batchSize int,
	logger logger.Interface,
) *BillingScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BillingScheduler{
		subscriptionRepo: subscriptionRepo,
		markPastDueUC:    markPastDueUC,
		logger:           logger,
		stopChan:         make(chan struct{}),
		interval:         interval,
		batchSize:        batchSize,
	}
}

// Start starts the scheduler
func (s *BillingScheduler) Start(ctx context.Context) {
	s.logger.Infow("starting billing scheduler", "interval", s.interval, "batch_size", s.batchSize)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runLoop(ctx)
	}()
}

// Stop stops the scheduler gracefully
func (s *BillingScheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Infow("stopping billing scheduler")
		close(s.stopChan)
		s.wg.Wait()
		s.logger.Infow("billing scheduler stopped")
	})
}

func (s *BillingScheduler) runLoop(ctx context.Context) {
	// Run immediately on startup to catch subscriptions that came due while
	// the server was down.
	s.processDueSubscriptions(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Infow("billing scheduler stopped due to context cancellation")
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.processDueSubscriptions(ctx)
		}
	}
}

func (s *BillingScheduler) processDueSubscriptions(ctx context.Context) {
	startTime := time.Now()

	due, err := s.subscriptionRepo.ListDueForBilling(ctx, biztime.NowUTC(), s.batchSize)
	if err != nil {
		s.logger.Errorw("failed to list subscriptions due for billing", "error", err)
		return
	}
	if len(due) == 0 {
		s.logger.Debugw("no subscriptions due for billing", "duration", time.Since(startTime))
		return
	}

	var processed, skipped int
	for _, sub := range due {
		err := s.markPastDueUC.Execute(ctx, subscriptionUsecases.MarkPastDueCommand{
			SubscriptionID: sub.ID(),
		})
		switch {
		case err == nil:
			processed++
		case errors.IsConflictError(err) || errors.IsBadRequestError(err) || errors.IsNotFoundError(err):
			// Someone else transitioned or canceled it between the scan and
			// now; the next scan sees the settled state.
			skipped++
		default:
			s.logger.Errorw("failed to mark subscription past due",
				"error", err, "subscription_id", sub.ID())
		}
	}

	s.logger.Infow("due subscriptions processed",
		"due", len(due),
		"processed", processed,
		"skipped", skipped,
		"duration", time.Since(startTime))
}
