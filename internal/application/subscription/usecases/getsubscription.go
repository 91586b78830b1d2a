package usecases

import (
	"context"

	"cadence/internal/domain/subscription"
	"cadence/internal/shared/logger"
)

type GetSubscriptionQuery struct {
	TenantID        uint
	SubscriptionID  uint
	SubscriptionSID string // Takes precedence over SubscriptionID
}

type GetSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	logger           logger.Interface
}

func NewGetSubscriptionUseCase(subscriptionRepo subscription.Repository, logger logger.Interface) *GetSubscriptionUseCase {
	return &GetSubscriptionUseCase{subscriptionRepo: subscriptionRepo, logger: logger}
}

func (uc *GetSubscriptionUseCase) Execute(ctx context.Context, query GetSubscriptionQuery) (*subscription.Subscription, error) {
	return resolveSubscription(ctx, uc.subscriptionRepo, query.TenantID, query.SubscriptionID, query.SubscriptionSID)
}
