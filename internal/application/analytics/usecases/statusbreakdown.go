package usecases

import (
	"context"
	"fmt"

	"cadence/internal/domain/analytics"
	"cadence/internal/domain/subscription"
	"cadence/internal/shared/logger"
)

type StatusBreakdownQuery struct {
	TenantID uint
}

// StatusBreakdownUseCase reports subscription counts per status. Statuses
// with no subscriptions are reported with a zero count so consumers get a
// stable shape.
type StatusBreakdownUseCase struct {
	analyticsRepo analytics.Repository
	logger        logger.Interface
}

func NewStatusBreakdownUseCase(analyticsRepo analytics.Repository, logger logger.Interface) *StatusBreakdownUseCase {
	return &StatusBreakdownUseCase{analyticsRepo: analyticsRepo, logger: logger}
}

func (uc *StatusBreakdownUseCase) Execute(ctx context.Context, query StatusBreakdownQuery) ([]analytics.StatusCount, error) {
	counts, err := uc.analyticsRepo.CountByStatus(ctx, query.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	byStatus := make(map[subscription.Status]int64, len(counts))
	for _, row := range counts {
		byStatus[row.Status] = row.Count
	}

	ordered := []subscription.Status{subscription.StatusActive, subscription.StatusPastDue, subscription.StatusCanceled}
	result := make([]analytics.StatusCount, 0, len(ordered))
	for _, status := range ordered {
		result = append(result, analytics.StatusCount{Status: status, Count: byStatus[status]})
	}
	return result, nil
}
