package usecases

import (
	"context"
	"fmt"

	"cadence/internal/domain/plan"
	"cadence/internal/domain/subscription"
	"cadence/internal/infrastructure/cache"
	"cadence/internal/shared/db"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

type DeletePlanCommand struct {
	TenantID uint
	PlanID   uint
	PlanSID  string // Takes precedence over PlanID
}

// DeletePlanUseCase soft-deletes a plan. The row lock plus the
// live-subscription count run in one transaction, so a concurrent subscribe
// against the same plan either blocks the delete or is blocked by it.
type DeletePlanUseCase struct {
	planRepo         plan.Repository
	subscriptionRepo subscription.Repository
	planCache        cache.PlanCache
	txManager        db.TxManager
	logger           logger.Interface
}

func NewDeletePlanUseCase(
	planRepo plan.Repository,
	subscriptionRepo subscription.Repository,
	planCache cache.PlanCache,
	txManager db.TxManager,
	logger logger.Interface,
) *DeletePlanUseCase {
	return &DeletePlanUseCase{
		planRepo:         planRepo,
		subscriptionRepo: subscriptionRepo,
		planCache:        planCache,
		txManager:        txManager,
		logger:           logger,
	}
}

func (uc *DeletePlanUseCase) Execute(ctx context.Context, cmd DeletePlanCommand) error {
	var deletedID uint

	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		planID := cmd.PlanID
		if cmd.PlanSID != "" {
			resolved, err := uc.planRepo.GetBySID(txCtx, cmd.TenantID, cmd.PlanSID)
			if err != nil {
				return fmt.Errorf("failed to get plan: %w", err)
			}
			if resolved == nil {
				return errors.NewNotFoundError("plan not found")
			}
			planID = resolved.ID()
		}

		target, err := uc.planRepo.GetByIDForUpdate(txCtx, cmd.TenantID, planID)
		if err != nil {
			return fmt.Errorf("failed to get plan: %w", err)
		}
		if target == nil {
			return errors.NewNotFoundError("plan not found")
		}

		liveCount, err := uc.subscriptionRepo.CountLiveByPlan(txCtx, cmd.TenantID, target.ID())
		if err != nil {
			return fmt.Errorf("failed to count live subscriptions: %w", err)
		}
		if liveCount > 0 {
			return errors.NewConflictError("plan has live subscriptions")
		}

		if err := target.SoftDelete(); err != nil {
			return errors.NewNotFoundError("plan not found")
		}

		if err := uc.planRepo.SoftDelete(txCtx, target); err != nil {
			if errors.IsConcurrentModificationError(err) {
				return err
			}
			return fmt.Errorf("failed to delete plan: %w", err)
		}

		deletedID = target.ID()
		return nil
	})
	if err != nil {
		return err
	}

	if err := uc.planCache.Invalidate(ctx, cmd.TenantID, deletedID); err != nil {
		uc.logger.Warnw("plan cache invalidation failed", "error", err, "plan_id", deletedID)
	}

	uc.logger.Infow("plan deleted", "plan_id", deletedID, "tenant_id", cmd.TenantID)
	return nil
}
