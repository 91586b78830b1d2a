package usecases

import (
	"context"
	"fmt"

	"cadence/internal/domain/subscription"
	"cadence/internal/shared/logger"
)

type GetActiveSubscriptionQuery struct {
	TenantID uint
	UserID   uint
}

// GetActiveSubscriptionUseCase answers "what is this user subscribed to".
// A nil result means the user has no live subscription.
type GetActiveSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewGetActiveSubscriptionUseCase(subscriptionRepo subscription.Repository, logger logger.Interface) *GetActiveSubscriptionUseCase {
	return &GetActiveSubscriptionUseCase{subscriptionRepo: subscriptionRepo, logger: logger}
}

func (uc *GetActiveSubscriptionUseCase) Execute(ctx context.Context, query GetActiveSubscriptionQuery) (*subscription.Subscription, error) {
	sub, err := uc.subscriptionRepo.GetLiveByUser(ctx, query.TenantID, query.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get live subscription: %w", err)
	}
	return sub, nil
}
