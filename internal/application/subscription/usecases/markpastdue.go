package usecases

import (
	"context"
	"fmt"

	"cadence/internal/domain/subscription"
	"cadence/internal/shared/db"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

type MarkPastDueCommand struct {
	SubscriptionID uint
	Reason         string
}

// MarkPastDueUseCase moves an active subscription to past_due. It is invoked
// by the billing scheduler, so the lookup is unscoped and the transition is
// attributed to the system.
type MarkPastDueUseCase struct {
	subscriptionRepo subscription.Repository
	transitionRepo   subscription.TransitionLogRepository
	txManager        db.TxManager
	logger           logger.Interface
}

func NewMarkPastDueUseCase(
	subscriptionRepo subscription.Repository,
	transitionRepo subscription.TransitionLogRepository,
	txManager db.TxManager,
	logger logger.Interface,
) *MarkPastDueUseCase {
	return &MarkPastDueUseCase{
		subscriptionRepo: subscriptionRepo,
		transitionRepo:   transitionRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

func (uc *MarkPastDueUseCase) Execute(ctx context.Context, cmd MarkPastDueCommand) error {
	return uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		sub, err := uc.subscriptionRepo.GetByID(txCtx, cmd.SubscriptionID)
		if err != nil {
			return fmt.Errorf("failed to get subscription: %w", err)
		}
		if sub == nil {
			return errors.NewNotFoundError("subscription not found")
		}

		if err := sub.MarkPastDue(); err != nil {
			return errors.NewBadRequestError(err.Error())
		}

		if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
			if errors.Is(err, subscription.ErrConcurrentModification) {
				return errors.NewConcurrentModificationError("subscription was modified concurrently")
			}
			return fmt.Errorf("failed to update subscription: %w", err)
		}

		reason := cmd.Reason
		if reason == "" {
			reason = "billing date elapsed"
		}
		from := subscription.StatusActive
		entry, err := subscription.NewTransition(sub.ID(), &from, subscription.StatusPastDue, reason, nil)
		if err != nil {
			return fmt.Errorf("failed to build transition entry: %w", err)
		}
		if err := uc.transitionRepo.Record(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record transition: %w", err)
		}

		uc.logger.Infow("subscription marked past due",
			"subscription_id", sub.ID(),
			"tenant_id", sub.TenantID())
		return nil
	})
}
