package usecases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"cadence/internal/domain/plan"
	"cadence/internal/infrastructure/cache"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

// UpdatePlanCommand carries partial updates; nil pointers leave the field as
// is. Name and billing cycle are immutable after creation.
type UpdatePlanCommand struct {
	TenantID      uint
	PlanID        uint
	PlanSID       string // Takes precedence over PlanID
	Description   *string
	Price         *decimal.Decimal
	Active        *bool
	FeatureLimits []FeatureLimitInput // nil leaves limits unchanged
}

type UpdatePlanUseCase struct {
	planRepo  plan.Repository
	planCache cache.PlanCache
	logger    logger.Interface
}

func NewUpdatePlanUseCase(planRepo plan.Repository, planCache cache.PlanCache, logger logger.Interface) *UpdatePlanUseCase {
	return &UpdatePlanUseCase{planRepo: planRepo, planCache: planCache, logger: logger}
}

func (uc *UpdatePlanUseCase) Execute(ctx context.Context, cmd UpdatePlanCommand) (*plan.Plan, error) {
	var target *plan.Plan
	var err error

	if cmd.PlanSID != "" {
		target, err = uc.planRepo.GetBySID(ctx, cmd.TenantID, cmd.PlanSID)
	} else {
		target, err = uc.planRepo.GetByID(ctx, cmd.TenantID, cmd.PlanID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if target == nil {
		return nil, errors.NewNotFoundError("plan not found")
	}

	versionBefore := target.Version()

	if cmd.Description != nil {
		target.UpdateDescription(*cmd.Description)
	}
	if cmd.Price != nil {
		if err := target.UpdatePrice(*cmd.Price); err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
	}
	if cmd.Active != nil {
		target.SetActive(*cmd.Active)
	}
	if cmd.FeatureLimits != nil {
		limits, err := buildFeatureLimits(cmd.FeatureLimits)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		target.ReplaceFeatureLimits(limits)
	}

	// Nothing changed, skip the write and keep the version token intact.
	if target.Version() == versionBefore {
		return target, nil
	}

	if err := uc.planRepo.Update(ctx, target); err != nil {
		if errors.IsConcurrentModificationError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to update plan", "error", err, "plan_id", target.ID())
		return nil, fmt.Errorf("failed to update plan: %w", err)
	}

	if err := uc.planCache.Invalidate(ctx, cmd.TenantID, target.ID()); err != nil {
		uc.logger.Warnw("plan cache invalidation failed", "error", err, "plan_id", target.ID())
	}

	uc.logger.Infow("plan updated", "plan_id", target.ID(), "tenant_id", cmd.TenantID, "version", target.Version())

	return target, nil
}
