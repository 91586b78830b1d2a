package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cadence/internal/domain/analytics"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

type ChurnRateQuery struct {
	TenantID uint
	From     time.Time
	To       time.Time
}

type ChurnRateResult struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	ActiveAtStart int64           `json:"active_at_start"`
	Canceled      int64           `json:"canceled"`
	ChurnRate     decimal.Decimal `json:"churn_rate"`
}

type ChurnRateUseCase struct {
	analyticsRepo analytics.Repository
	logger        logger.Interface
}

func NewChurnRateUseCase(analyticsRepo analytics.Repository, logger logger.Interface) *ChurnRateUseCase {
	return &ChurnRateUseCase{analyticsRepo: analyticsRepo, logger: logger}
}

func (uc *ChurnRateUseCase) Execute(ctx context.Context, query ChurnRateQuery) (*ChurnRateResult, error) {
	if !query.To.After(query.From) {
		return nil, errors.NewValidationError("window end must be after window start")
	}

	activeAtStart, err := uc.analyticsRepo.CountActiveAt(ctx, query.TenantID, query.From)
	if err != nil {
		return nil, fmt.Errorf("failed to count active at window start: %w", err)
	}

	canceled, err := uc.analyticsRepo.CountCanceledBetween(ctx, query.TenantID, query.From, query.To)
	if err != nil {
		return nil, fmt.Errorf("failed to count cancellations: %w", err)
	}

	result := &ChurnRateResult{
		From:          query.From,
		To:            query.To,
		ActiveAtStart: activeAtStart,
		Canceled:      canceled,
		ChurnRate:     decimal.Zero,
	}

	// No base to churn from means a zero rate, not a division error.
	if activeAtStart > 0 {
		result.ChurnRate = decimal.NewFromInt(canceled).
			Div(decimal.NewFromInt(activeAtStart)).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	return result, nil
}
