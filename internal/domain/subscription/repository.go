package subscription

import (
	"context"
	"time"
)

// Repository persists subscriptions. Tenant-scoped lookups return nil for
// rows owned by another tenant so callers cannot test for their existence.
type Repository interface {
	// Create inserts a new subscription. The store's unique live-slot index
	// turns a concurrent duplicate create into ErrDuplicateSubscription, so
	// check-then-insert races cannot produce two live subscriptions.
	Create(ctx context.Context, sub *Subscription) error
	// GetByID is the unscoped lookup used by system-initiated transitions.
	GetByID(ctx context.Context, subscriptionID uint) (*Subscription, error)
	GetByTenantAndID(ctx context.Context, tenantID, subscriptionID uint) (*Subscription, error)
	GetByTenantAndSID(ctx context.Context, tenantID uint, sid string) (*Subscription, error)
	// GetLiveByUser returns the user's single active or past_due subscription,
	// or nil when none exists.
	GetLiveByUser(ctx context.Context, tenantID, userID uint) (*Subscription, error)
	// Update persists mutations under the version token loaded with the
	// aggregate. A stale token yields a concurrent-modification conflict;
	// callers reload and retry.
	Update(ctx context.Context, sub *Subscription) error
	// CountLiveByPlan counts active and past_due subscriptions referencing a
	// plan, used to guard plan deletion.
	CountLiveByPlan(ctx context.Context, tenantID, planID uint) (int64, error)
	// ListDueForBilling returns active subscriptions whose billing date has
	// passed, across tenants, for the billing scheduler.
	ListDueForBilling(ctx context.Context, before time.Time, limit int) ([]*Subscription, error)
}

// TransitionLogRepository is the append-only audit ledger. It exposes no
// update or delete operations; a failed append propagates to the caller and
// aborts the surrounding transaction so a status change can never be
// committed without its ledger entry.
type TransitionLogRepository interface {
	Record(ctx context.Context, entry *Transition) error
	// History returns all entries for a subscription, newest first.
	History(ctx context.Context, subscriptionID uint) ([]*Transition, error)
	// Latest returns the most recent entry, or nil when none exists.
	Latest(ctx context.Context, subscriptionID uint) (*Transition, error)
}
