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

type UpgradePlanCommand struct {
	TenantID        uint
	SubscriptionID  uint
	SubscriptionSID string // Takes precedence over SubscriptionID
	NewPlanID       uint
	NewPlanSID      string // Takes precedence over NewPlanID
	ActorID         uint
}

type UpgradePlanUseCase struct {
	subscriptionRepo subscription.Repository
	planRepo         plan.Repository
	transitionRepo   subscription.TransitionLogRepository
	txManager        db.TxManager
	logger           logger.Interface
}

func NewUpgradePlanUseCase(
	subscriptionRepo subscription.Repository,
	planRepo plan.Repository,
	transitionRepo subscription.TransitionLogRepository,
	txManager db.TxManager,
	logger logger.Interface,
) *UpgradePlanUseCase {
	return &UpgradePlanUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		transitionRepo:   transitionRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

func (uc *UpgradePlanUseCase) Execute(ctx context.Context, cmd UpgradePlanCommand) (*subscription.Subscription, error) {
	var upgraded *subscription.Subscription

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		sub, err := resolveSubscription(txCtx, uc.subscriptionRepo, cmd.TenantID, cmd.SubscriptionID, cmd.SubscriptionSID)
		if err != nil {
			return err
		}
		if sub.Status() != subscription.StatusActive {
			return errors.NewBadRequestError("only active subscriptions can change plans")
		}

		newPlanID := cmd.NewPlanID
		if cmd.NewPlanSID != "" {
			resolved, err := uc.planRepo.GetBySID(txCtx, cmd.TenantID, cmd.NewPlanSID)
			if err != nil {
				return fmt.Errorf("failed to get plan: %w", err)
			}
			if resolved == nil {
				return errors.NewNotFoundError("plan not found")
			}
			newPlanID = resolved.ID()
		}

		newPlan, err := uc.planRepo.GetByIDForUpdate(txCtx, cmd.TenantID, newPlanID)
		if err != nil {
			uc.logger.Errorw("failed to lock plan", "error", err, "plan_id", newPlanID)
			return fmt.Errorf("failed to get plan: %w", err)
		}
		if newPlan == nil {
			return errors.NewNotFoundError("plan not found")
		}
		if !newPlan.IsActive() {
			return errors.NewConflictError("plan is not open for new subscriptions")
		}

		oldPlanID := sub.PlanID()

		// The billing anchor resets to the change instant on the new cycle.
		now := biztime.NowUTC()
		nextBillingAt := newPlan.BillingCycle().NextBillingDate(now)

		if err := sub.ChangePlan(newPlan.ID(), nextBillingAt); err != nil {
			if errors.Is(err, subscription.ErrInvalidUpgrade) {
				return errors.NewBadRequestError("subscription is already on this plan")
			}
			return errors.NewBadRequestError(err.Error())
		}

		if err := uc.subscriptionRepo.Update(txCtx, sub); err != nil {
			if errors.Is(err, subscription.ErrConcurrentModification) {
				return errors.NewConcurrentModificationError("subscription was modified concurrently")
			}
			return fmt.Errorf("failed to update subscription: %w", err)
		}

		from := subscription.StatusActive
		reason := fmt.Sprintf("plan changed from %d to %d", oldPlanID, newPlan.ID())
		entry, err := subscription.NewTransition(sub.ID(), &from, subscription.StatusActive, reason, &cmd.ActorID)
		if err != nil {
			return fmt.Errorf("failed to build transition entry: %w", err)
		}
		if err := uc.transitionRepo.Record(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record transition: %w", err)
		}

		upgraded = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("subscription plan changed",
		"subscription_id", upgraded.ID(),
		"tenant_id", cmd.TenantID,
		"plan_id", upgraded.PlanID(),
		"next_billing_at", upgraded.NextBillingAt())

	return upgraded, nil
}
