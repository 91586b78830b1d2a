package usecases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"cadence/internal/domain/analytics"
	"cadence/internal/domain/plan"
	"cadence/internal/shared/logger"
)

type RevenueSummaryQuery struct {
	TenantID uint
}

// RevenueSummaryUseCase computes MRR and ARR from live subscription counts
// per plan. Yearly prices contribute one twelfth per month; past_due
// subscriptions still count since they have not churned.
type RevenueSummaryUseCase struct {
	analyticsRepo analytics.Repository
	planRepo      plan.Repository
	logger        logger.Interface
}

func NewRevenueSummaryUseCase(analyticsRepo analytics.Repository, planRepo plan.Repository, logger logger.Interface) *RevenueSummaryUseCase {
	return &RevenueSummaryUseCase{analyticsRepo: analyticsRepo, planRepo: planRepo, logger: logger}
}

func (uc *RevenueSummaryUseCase) Execute(ctx context.Context, query RevenueSummaryQuery) (*analytics.RevenueSummary, error) {
	counts, err := uc.analyticsRepo.CountLiveByPlan(ctx, query.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count live by plan: %w", err)
	}

	summary := &analytics.RevenueSummary{
		MRR:   decimal.Zero,
		ARR:   decimal.Zero,
		Plans: []analytics.PlanRevenue{},
	}
	if len(counts) == 0 {
		return summary, nil
	}

	planIDs := make([]uint, 0, len(counts))
	for _, row := range counts {
		planIDs = append(planIDs, row.PlanID)
	}

	plansByID, err := uc.planRepo.GetByIDs(ctx, query.TenantID, planIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plans: %w", err)
	}

	for _, row := range counts {
		p, ok := plansByID[row.PlanID]
		if !ok {
			uc.logger.Warnw("live subscriptions reference unknown plan", "plan_id", row.PlanID, "tenant_id", query.TenantID)
			continue
		}

		monthly := p.MonthlyRevenue().Mul(decimal.NewFromInt(row.Count))
		summary.MRR = summary.MRR.Add(monthly)
		summary.Plans = append(summary.Plans, analytics.PlanRevenue{
			PlanID:         p.ID(),
			PlanSID:        p.SID(),
			PlanName:       p.Name(),
			LiveCount:      row.Count,
			MonthlyRevenue: monthly,
		})
	}

	summary.ARR = summary.MRR.Mul(decimal.NewFromInt(12))

	// Attribute each plan's share of MRR once the total is known.
	if summary.MRR.IsPositive() {
		hundred := decimal.NewFromInt(100)
		for i := range summary.Plans {
			summary.Plans[i].Percentage = summary.Plans[i].MonthlyRevenue.
				Div(summary.MRR).
				Mul(hundred).
				Round(2)
		}
	}

	return summary, nil
}
