package usecases

import (
	"context"
	"fmt"

	"cadence/internal/domain/subscription"
	"cadence/internal/shared/logger"
)

type GetTransitionHistoryQuery struct {
	TenantID        uint
	SubscriptionID  uint
	SubscriptionSID string // Takes precedence over SubscriptionID
}

type GetTransitionHistoryUseCase struct {
	subscriptionRepo subscription.Repository
	transitionRepo   subscription.TransitionLogRepository
	logger           logger.Interface
}

func NewGetTransitionHistoryUseCase(
	subscriptionRepo subscription.Repository,
	transitionRepo subscription.TransitionLogRepository,
	logger logger.Interface,
) *GetTransitionHistoryUseCase {
	return &GetTransitionHistoryUseCase{
		subscriptionRepo: subscriptionRepo,
		transitionRepo:   transitionRepo,
		logger:           logger,
	}
}

func (uc *GetTransitionHistoryUseCase) Execute(ctx context.Context, query GetTransitionHistoryQuery) ([]*subscription.Transition, error) {
	// Resolve through the tenant scope first so one tenant cannot read
	// another's audit trail.
	sub, err := resolveSubscription(ctx, uc.subscriptionRepo, query.TenantID, query.SubscriptionID, query.SubscriptionSID)
	if err != nil {
		return nil, err
	}

	history, err := uc.transitionRepo.History(ctx, sub.ID())
	if err != nil {
		return nil, fmt.Errorf("failed to load transition history: %w", err)
	}
	return history, nil
}
