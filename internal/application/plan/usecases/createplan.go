package usecases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"cadence/internal/domain/plan"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

type FeatureLimitInput struct {
	Type  string `json:"type"`
	Value int64  `json:"value"`
}

type CreatePlanCommand struct {
	TenantID      uint
	Name          string
	Description   string
	Price         decimal.Decimal
	BillingCycle  string
	FeatureLimits []FeatureLimitInput
}

type CreatePlanUseCase struct {
	planRepo plan.Repository
	logger   logger.Interface
}

func NewCreatePlanUseCase(planRepo plan.Repository, logger logger.Interface) *CreatePlanUseCase {
	return &CreatePlanUseCase{planRepo: planRepo, logger: logger}
}

func (uc *CreatePlanUseCase) Execute(ctx context.Context, cmd CreatePlanCommand) (*plan.Plan, error) {
	cycle, err := plan.ParseBillingCycle(cmd.BillingCycle)
	if err != nil {
		return nil, errors.NewValidationError("billing_cycle must be monthly or yearly")
	}

	limits, err := buildFeatureLimits(cmd.FeatureLimits)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	newPlan, err := plan.NewPlan(cmd.TenantID, cmd.Name, cmd.Description, cmd.Price, cycle, limits)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.planRepo.Create(ctx, newPlan); err != nil {
		if errors.Is(err, plan.ErrDuplicatePlanName) {
			return nil, errors.NewConflictError("a plan with this name already exists")
		}
		uc.logger.Errorw("failed to create plan", "error", err, "tenant_id", cmd.TenantID, "name", cmd.Name)
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}

	uc.logger.Infow("plan created",
		"plan_id", newPlan.ID(),
		"tenant_id", cmd.TenantID,
		"name", newPlan.Name(),
		"billing_cycle", newPlan.BillingCycle())

	return newPlan, nil
}

func buildFeatureLimits(inputs []FeatureLimitInput) ([]plan.FeatureLimit, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	limits := make([]plan.FeatureLimit, 0, len(inputs))
	for _, input := range inputs {
		limit, err := plan.NewFeatureLimit(input.Type, input.Value)
		if err != nil {
			return nil, err
		}
		limits = append(limits, limit)
	}
	return limits, nil
}
