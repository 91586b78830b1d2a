package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"cadence/internal/domain/plan"
	"cadence/internal/domain/subscription"
	"cadence/internal/shared/logger"
)

// noopTxManager satisfies db.TxManager without a database; the boundary
// semantics under test live in the use cases, not the store.
type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePlanRepo struct {
	plans  map[uint]*plan.Plan
	nextID uint
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[uint]*plan.Plan), nextID: 1}
}

func (r *fakePlanRepo) add(p *plan.Plan) *plan.Plan {
	if p.ID() == 0 {
		_ = p.SetID(r.nextID)
		r.nextID++
	}
	r.plans[p.ID()] = p
	return p
}

func (r *fakePlanRepo) Create(ctx context.Context, p *plan.Plan) error {
	r.add(p)
	return nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, tenantID, planID uint) (*plan.Plan, error) {
	p, ok := r.plans[planID]
	if !ok || p.TenantID() != tenantID || p.IsDeleted() {
		return nil, nil
	}
	return p, nil
}

func (r *fakePlanRepo) GetByIDForUpdate(ctx context.Context, tenantID, planID uint) (*plan.Plan, error) {
	return r.GetByID(ctx, tenantID, planID)
}

func (r *fakePlanRepo) GetBySID(ctx context.Context, tenantID uint, sid string) (*plan.Plan, error) {
	for _, p := range r.plans {
		if p.SID() == sid && p.TenantID() == tenantID && !p.IsDeleted() {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) GetByIDs(ctx context.Context, tenantID uint, planIDs []uint) (map[uint]*plan.Plan, error) {
	result := make(map[uint]*plan.Plan)
	for _, planID := range planIDs {
		if p, ok := r.plans[planID]; ok && p.TenantID() == tenantID {
			result[planID] = p
		}
	}
	return result, nil
}

func (r *fakePlanRepo) ListActive(ctx context.Context, tenantID uint) ([]*plan.Plan, error) {
	var result []*plan.Plan
	for _, p := range r.plans {
		if p.TenantID() == tenantID && !p.IsDeleted() && p.IsActive() {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *fakePlanRepo) Update(ctx context.Context, p *plan.Plan) error {
	r.plans[p.ID()] = p
	return nil
}

func (r *fakePlanRepo) SoftDelete(ctx context.Context, p *plan.Plan) error {
	r.plans[p.ID()] = p
	return nil
}

// fakeSubscriptionRepo mimics the store's contract, not just its happy path:
// reads hand out a reconstructed copy the way a real repository maps a row
// back into an aggregate, Update matches on the stored version-1 exactly
// like the SQL WHERE clause, and the live-slot uniqueness check runs under a
// lock so concurrent creates behave like the unique index.
type fakeSubscriptionRepo struct {
	mu            sync.Mutex
	subs          map[uint]*subscription.Subscription
	nextID        uint
	updateErr     error
	updateErrOnce bool
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[uint]*subscription.Subscription), nextID: 1}
}

func reloadSubscription(sub *subscription.Subscription) *subscription.Subscription {
	if sub == nil {
		return nil
	}
	copied, err := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID:            sub.ID(),
		SID:           sub.SID(),
		UserID:        sub.UserID(),
		TenantID:      sub.TenantID(),
		PlanID:        sub.PlanID(),
		Status:        sub.Status(),
		StartAt:       sub.StartAt(),
		NextBillingAt: sub.NextBillingAt(),
		CanceledAt:    sub.CanceledAt(),
		Version:       sub.Version(),
		CreatedAt:     sub.CreatedAt(),
		UpdatedAt:     sub.UpdatedAt(),
	})
	if err != nil {
		panic(err)
	}
	return copied
}

func (r *fakeSubscriptionRepo) Create(ctx context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs {
		if existing.TenantID() == sub.TenantID() && existing.UserID() == sub.UserID() && existing.Status().IsLive() {
			return subscription.ErrDuplicateSubscription
		}
	}
	_ = sub.SetID(r.nextID)
	r.nextID++
	r.subs[sub.ID()] = reloadSubscription(sub)
	return nil
}

func (r *fakeSubscriptionRepo) GetByID(ctx context.Context, subscriptionID uint) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return reloadSubscription(r.subs[subscriptionID]), nil
}

func (r *fakeSubscriptionRepo) GetByTenantAndID(ctx context.Context, tenantID, subscriptionID uint) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[subscriptionID]
	if !ok || sub.TenantID() != tenantID {
		return nil, nil
	}
	return reloadSubscription(sub), nil
}

func (r *fakeSubscriptionRepo) GetByTenantAndSID(ctx context.Context, tenantID uint, sid string) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.SID() == sid && sub.TenantID() == tenantID {
			return reloadSubscription(sub), nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) GetLiveByUser(ctx context.Context, tenantID, userID uint) (*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.TenantID() == tenantID && sub.UserID() == userID && sub.Status().IsLive() {
			return reloadSubscription(sub), nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) Update(ctx context.Context, sub *subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		err := r.updateErr
		if r.updateErrOnce {
			r.updateErr = nil
		}
		return err
	}
	stored, ok := r.subs[sub.ID()]
	if !ok || stored.Version() != sub.Version()-1 {
		return subscription.ErrConcurrentModification
	}
	r.subs[sub.ID()] = reloadSubscription(sub)
	return nil
}

func (r *fakeSubscriptionRepo) CountLiveByPlan(ctx context.Context, tenantID, planID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, sub := range r.subs {
		if sub.TenantID() == tenantID && sub.PlanID() == planID && sub.Status().IsLive() {
			count++
		}
	}
	return count, nil
}

func (r *fakeSubscriptionRepo) ListDueForBilling(ctx context.Context, before time.Time, limit int) ([]*subscription.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*subscription.Subscription
	for _, sub := range r.subs {
		if sub.Status() == subscription.StatusActive && sub.NextBillingAt() != nil && !sub.NextBillingAt().After(before) {
			due = append(due, reloadSubscription(sub))
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}

type fakeTransitionRepo struct {
	mu        sync.Mutex
	entries   []*subscription.Transition
	nextID    uint
	recordErr error
}

func newFakeTransitionRepo() *fakeTransitionRepo {
	return &fakeTransitionRepo{nextID: 1}
}

func (r *fakeTransitionRepo) Record(ctx context.Context, entry *subscription.Transition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.recordErr != nil {
		return r.recordErr
	}
	_ = entry.SetID(r.nextID)
	r.nextID++
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeTransitionRepo) History(ctx context.Context, subscriptionID uint) ([]*subscription.Transition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*subscription.Transition
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].SubscriptionID() == subscriptionID {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}

func (r *fakeTransitionRepo) Latest(ctx context.Context, subscriptionID uint) (*subscription.Transition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].SubscriptionID() == subscriptionID {
			return r.entries[i], nil
		}
	}
	return nil, nil
}

func mustPlan(t testingT, tenantID uint, name string, price string, cycle plan.BillingCycle) *plan.Plan {
	t.Helper()
	p, err := plan.NewPlan(tenantID, name, "", decimal.RequireFromString(price), cycle, nil)
	if err != nil {
		t.Fatalf("failed to build plan: %v", err)
	}
	return p
}

// testingT is the subset of *testing.T the helpers need.
type testingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

func testLogger() logger.Interface {
	return logger.NewLogger()
}
