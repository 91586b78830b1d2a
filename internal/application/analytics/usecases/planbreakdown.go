package usecases

import (
	"context"
	"fmt"

	"cadence/internal/domain/analytics"
	"cadence/internal/domain/plan"
	"cadence/internal/shared/logger"
)

type PlanBreakdownQuery struct {
	TenantID uint
}

// PlanBreakdownRow is one plan's share of the tenant's live subscriptions.
type PlanBreakdownRow struct {
	PlanID   uint   `json:"plan_id"`
	PlanSID  string `json:"plan_sid"`
	PlanName string `json:"plan_name"`
	Count    int64  `json:"count"`
}

type PlanBreakdownUseCase struct {
	analyticsRepo analytics.Repository
	planRepo      plan.Repository
	logger        logger.Interface
}

func NewPlanBreakdownUseCase(analyticsRepo analytics.Repository, planRepo plan.Repository, logger logger.Interface) *PlanBreakdownUseCase {
	return &PlanBreakdownUseCase{analyticsRepo: analyticsRepo, planRepo: planRepo, logger: logger}
}

func (uc *PlanBreakdownUseCase) Execute(ctx context.Context, query PlanBreakdownQuery) ([]PlanBreakdownRow, error) {
	counts, err := uc.analyticsRepo.CountLiveByPlan(ctx, query.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count live by plan: %w", err)
	}
	if len(counts) == 0 {
		return []PlanBreakdownRow{}, nil
	}

	planIDs := make([]uint, 0, len(counts))
	for _, row := range counts {
		planIDs = append(planIDs, row.PlanID)
	}

	plansByID, err := uc.planRepo.GetByIDs(ctx, query.TenantID, planIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plans: %w", err)
	}

	rows := make([]PlanBreakdownRow, 0, len(counts))
	for _, row := range counts {
		item := PlanBreakdownRow{PlanID: row.PlanID, Count: row.Count}
		if p, ok := plansByID[row.PlanID]; ok {
			item.PlanSID = p.SID()
			item.PlanName = p.Name()
		}
		rows = append(rows, item)
	}
	return rows, nil
}
