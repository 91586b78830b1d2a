package usecases

import (
	"context"
	"fmt"

	"cadence/internal/domain/plan"
	"cadence/internal/shared/logger"
)

type ListPlansQuery struct {
	TenantID uint
}

type ListPlansUseCase struct {
	planRepo plan.Repository
	logger   logger.Interface
}

func NewListPlansUseCase(planRepo plan.Repository, logger logger.Interface) *ListPlansUseCase {
	return &ListPlansUseCase{planRepo: planRepo, logger: logger}
}

func (uc *ListPlansUseCase) Execute(ctx context.Context, query ListPlansQuery) ([]*plan.Plan, error) {
	plans, err := uc.planRepo.ListActive(ctx, query.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}
