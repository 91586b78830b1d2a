package usecases

import (
	"context"
	"fmt"

	"cadence/internal/domain/plan"
	"cadence/internal/infrastructure/cache"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

type GetPlanQuery struct {
	TenantID uint
	PlanID   uint
	PlanSID  string // Takes precedence over PlanID
}

// GetPlanUseCase reads a plan through the snapshot cache. Cache failures are
// logged and fall through to the database.
type GetPlanUseCase struct {
	planRepo  plan.Repository
	planCache cache.PlanCache
	logger    logger.Interface
}

func NewGetPlanUseCase(planRepo plan.Repository, planCache cache.PlanCache, logger logger.Interface) *GetPlanUseCase {
	return &GetPlanUseCase{planRepo: planRepo, planCache: planCache, logger: logger}
}

func (uc *GetPlanUseCase) Execute(ctx context.Context, query GetPlanQuery) (*plan.Plan, error) {
	if query.PlanSID != "" {
		p, err := uc.planRepo.GetBySID(ctx, query.TenantID, query.PlanSID)
		if err != nil {
			return nil, fmt.Errorf("failed to get plan: %w", err)
		}
		if p == nil {
			return nil, errors.NewNotFoundError("plan not found")
		}
		return p, nil
	}

	if cached, err := uc.planCache.Get(ctx, query.TenantID, query.PlanID); err != nil {
		uc.logger.Warnw("plan cache read failed", "error", err, "plan_id", query.PlanID)
	} else if cached != nil {
		if cached.NotFound {
			return nil, errors.NewNotFoundError("plan not found")
		}
		p, err := planFromSnapshot(cached)
		if err == nil {
			return p, nil
		}
		// An unrebuildable snapshot falls through to the database read,
		// which overwrites it below.
		uc.logger.Warnw("discarding stale plan snapshot", "error", err, "plan_id", query.PlanID)
	}

	p, err := uc.planRepo.GetByID(ctx, query.TenantID, query.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	if p == nil {
		if err := uc.planCache.SetNullMarker(ctx, query.TenantID, query.PlanID); err != nil {
			uc.logger.Warnw("plan cache write failed", "error", err, "plan_id", query.PlanID)
		}
		return nil, errors.NewNotFoundError("plan not found")
	}

	if err := uc.planCache.Set(ctx, snapshotOf(p)); err != nil {
		uc.logger.Warnw("plan cache write failed", "error", err, "plan_id", p.ID())
	}

	return p, nil
}

func snapshotOf(p *plan.Plan) *cache.CachedPlan {
	return &cache.CachedPlan{
		ID:            p.ID(),
		SID:           p.SID(),
		TenantID:      p.TenantID(),
		Name:          p.Name(),
		Description:   p.Description(),
		Price:         p.Price(),
		BillingCycle:  p.BillingCycle().String(),
		Active:        p.IsActive(),
		FeatureLimits: p.FeatureLimits(),
		Version:       p.Version(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func planFromSnapshot(c *cache.CachedPlan) (*plan.Plan, error) {
	cycle, err := plan.ParseBillingCycle(c.BillingCycle)
	if err != nil {
		return nil, err
	}
	return plan.ReconstructPlan(plan.PlanReconstructParams{
		ID:            c.ID,
		SID:           c.SID,
		TenantID:      c.TenantID,
		Name:          c.Name,
		Description:   c.Description,
		Price:         c.Price,
		BillingCycle:  cycle,
		Active:        c.Active,
		FeatureLimits: c.FeatureLimits,
		Version:       c.Version,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	})
}
