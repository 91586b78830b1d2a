package usecases

import (
	"context"
	"fmt"

	"cadence/internal/domain/subscription"
	"cadence/internal/shared/biztime"
	"cadence/internal/shared/db"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

type CancelSubscriptionCommand struct {
	TenantID        uint
	SubscriptionID  uint
	SubscriptionSID string // Takes precedence over SubscriptionID
	Reason          string
	ActorID         uint
}

type CancelSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	transitionRepo   subscription.TransitionLogRepository
	txManager        db.TxManager
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	transitionRepo subscription.TransitionLogRepository,
	txManager db.TxManager,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		transitionRepo:   transitionRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*subscription.Subscription, error) {
	var canceled *subscription.Subscription

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		sub, err := resolveSubscription(txCtx, uc.subscriptionRepo, cmd.TenantID, cmd.SubscriptionID, cmd.SubscriptionSID)
		if err != nil {
			return err
		}

		from := sub.Status()

		if err := sub.Cancel(biztime.NowUTC()); err != nil {
			return errors.NewBadRequestError("subscription is already canceled")
		}

		if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
			if errors.Is(err, subscription.ErrConcurrentModification) {
				return errors.NewConcurrentModificationError("subscription was modified concurrently")
			}
			return fmt.Errorf("failed to update subscription: %w", err)
		}

		reason := cmd.Reason
		if reason == "" {
			reason = "canceled by user"
		}
		entry, err := subscription.NewTransition(sub.ID(), &from, subscription.StatusCanceled, reason, &cmd.ActorID)
		if err != nil {
			return fmt.Errorf("failed to build transition entry: %w", err)
		}
		if err := uc.transitionRepo.Record(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record transition: %w", err)
		}

		canceled = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("subscription canceled",
		"subscription_id", canceled.ID(),
		"tenant_id", cmd.TenantID,
		"canceled_at", canceled.CanceledAt())

	return canceled, nil
}
