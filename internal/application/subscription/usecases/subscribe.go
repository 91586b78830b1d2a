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

type SubscribeCommand struct {
	TenantID uint
	UserID   uint
	PlanID   uint   // Internal plan ID (used if PlanSID is empty)
	PlanSID  string // Stripe-style plan SID (takes precedence over PlanID)
}

type SubscribeUseCase struct {
	subscriptionRepo subscription.Repository
	planRepo         plan.Repository
	transitionRepo   subscription.TransitionLogRepository
	txManager        db.TxManager
	logger           logger.Interface
}

func NewSubscribeUseCase(
	subscriptionRepo subscription.Repository,
	planRepo plan.Repository,
	transitionRepo subscription.TransitionLogRepository,
	txManager db.TxManager,
	logger logger.Interface,
) *SubscribeUseCase {
	return &SubscribeUseCase{
		subscriptionRepo: subscriptionRepo,
		planRepo:         planRepo,
		transitionRepo:   transitionRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

func (uc *SubscribeUseCase) Execute(ctx context.Context, cmd SubscribeCommand) (*subscription.Subscription, error) {
	var created *subscription.Subscription

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		// Resolve plan: prefer SID over internal ID
		planID := cmd.PlanID
		if cmd.PlanSID != "" {
			resolved, err := uc.planRepo.GetBySID(txCtx, cmd.TenantID, cmd.PlanSID)
			if err != nil {
				uc.logger.Errorw("failed to get plan by SID", "error", err, "plan_sid", cmd.PlanSID)
				return fmt.Errorf("failed to get plan: %w", err)
			}
			if resolved == nil {
				return errors.NewNotFoundError("plan not found")
			}
			planID = resolved.ID()
		}

		// The row lock makes subscribing and deleting the same plan mutually
		// exclusive: whichever commits second observes the other.
		targetPlan, err := uc.planRepo.GetByIDForUpdate(txCtx, cmd.TenantID, planID)
		if err != nil {
			uc.logger.Errorw("failed to lock plan", "error", err, "plan_id", planID)
			return fmt.Errorf("failed to get plan: %w", err)
		}
		if targetPlan == nil {
			return errors.NewNotFoundError("plan not found")
		}
		if !targetPlan.IsActive() {
			return errors.NewConflictError("plan is not open for new subscriptions")
		}

		now := biztime.NowUTC()
		nextBillingAt := targetPlan.BillingCycle().NextBillingDate(now)

		sub, err := subscription.NewSubscription(cmd.UserID, cmd.TenantID, targetPlan.ID(), now, nextBillingAt)
		if err != nil {
			return errors.NewValidationError(err.Error())
		}

		if err := uc.subscriptionRepo.Create(txCtx, sub); err != nil {
			if errors.Is(err, subscription.ErrDuplicateSubscription) {
				return errors.NewConflictError("user already has a live subscription")
			}
			uc.logger.Errorw("failed to create subscription", "error", err, "user_id", cmd.UserID, "tenant_id", cmd.TenantID)
			return fmt.Errorf("failed to create subscription: %w", err)
		}

		actorID := cmd.UserID
		entry, err := subscription.NewTransition(sub.ID(), nil, subscription.StatusActive, "subscription created", &actorID)
		if err != nil {
			return fmt.Errorf("failed to build transition entry: %w", err)
		}
		if err := uc.transitionRepo.Record(txCtx, entry); err != nil {
			return fmt.Errorf("failed to record transition: %w", err)
		}

		created = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("subscription created",
		"subscription_id", created.ID(),
		"user_id", cmd.UserID,
		"tenant_id", cmd.TenantID,
		"plan_id", created.PlanID(),
		"next_billing_at", created.NextBillingAt())

	return created, nil
}
