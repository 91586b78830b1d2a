package usecases

import (
	"context"
	"fmt"

	"cadence/internal/domain/subscription"
	"cadence/internal/shared/errors"
)

// resolveSubscription loads a tenant's subscription by SID when given,
// falling back to the internal ID.
func resolveSubscription(ctx context.Context, repo subscription.Repository, tenantID, subscriptionID uint, sid string) (*subscription.Subscription, error) {
	var sub *subscription.Subscription
	var err error

	if sid != "" {
		sub, err = repo.GetByTenantAndSID(ctx, tenantID, sid)
	} else {
		sub, err = repo.GetByTenantAndID(ctx, tenantID, subscriptionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, errors.NewNotFoundError("subscription not found")
	}
	return sub, nil
}
