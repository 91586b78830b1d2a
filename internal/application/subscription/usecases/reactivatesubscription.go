package usecases

import (
	"context"
	"fmt"

	"cadence/internal/domain/plan"
	"cadence/internal/domain/subscription"
	"cadence/internal/shared/biztime"
	"cadence/internal/shared/db"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

type ReactivateSubscriptionCommand struct {
	TenantID        uint
	SubscriptionID  uint
	SubscriptionSID string // Takes precedence over SubscriptionID
	Reason          string
	// ActorID identifies who resolved the payment. Zero means the payment
	// system did, and the transition is attributed to the system.
	ActorID uint
}

type ReactivateSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	planRepo         plan.Repository
	transitionRepo   subscription.TransitionLogRepository
	txManager        db.TxManager
	logger           logger.Interface
}

func NewReactivateSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	planRepo plan.Repository,
	transitionRepo subscription.TransitionLogRepository,
	txManager db.TxManager,
	logger logger.Interface,
) *ReactivateSubscriptionUseCase {
	return &ReactivateSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		transitionRepo:   transitionRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

func (uc *ReactivateSubscriptionUseCase) Execute(ctx context.Context, cmd ReactivateSubscriptionCommand) (*subscription.Subscription, error) {
	var reactivated *subscription.Subscription

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		sub, err := resolveSubscription(txCtx, uc.subscriptionRepo, cmd.TenantID, cmd.SubscriptionID, cmd.SubscriptionSID)
		if err != nil {
			return err
		}

		currentPlan, err := uc.planRepo.GetByID(txCtx, cmd.TenantID, sub.PlanID())
		if err != nil {
			return fmt.Errorf("failed to get plan: %w", err)
		}
		if currentPlan == nil {
			return errors.NewInternalError("subscription references an unknown plan")
		}

		// Billing restarts from the recovery instant, not the missed date.
		now := biztime.NowUTC()
		nextBillingAt := currentPlan.BillingCycle().NextBillingDate(now)

		if err := sub.Reactivate(nextBillingAt); err != nil {
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
			reason = "payment received"
		}
		var actorID *uint
		if cmd.ActorID != 0 {
			actorID = &cmd.ActorID
		}
		from := subscription.StatusPastDue
		entry, err := subscription.NewTransition(sub.ID(), &from, subscription.StatusActive, reason, actorID)
		if err != nil {
			return fmt.Errorf("failed to build transition entry: %w", err)
		}
		if err := uc.transitionRepo.Record(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record transition: %w", err)
		}

		reactivated = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("subscription reactivated",
		"subscription_id", reactivated.ID(),
		"tenant_id", cmd.TenantID,
		"next_billing_at", reactivated.NextBillingAt())

	return reactivated, nil
}
