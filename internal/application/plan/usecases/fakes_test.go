package usecases

import (
	"context"
	"fmt"
	"sync"

	"cadence/internal/domain/plan"
	"cadence/internal/domain/subscription"
	"cadence/internal/infrastructure/cache"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

type noopTxManager struct{}

func (noopTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// reloadPlan rebuilds a plan through the reconstruction path, the same way the
// repository mapper does. Every load gets a fresh version token baseline.
func reloadPlan(p *plan.Plan) *plan.Plan {
	clone, err := plan.ReconstructPlan(plan.PlanReconstructParams{
		ID:            p.ID(),
		SID:           p.SID(),
		TenantID:      p.TenantID(),
		Name:          p.Name(),
		Description:   p.Description(),
		Price:         p.Price(),
		BillingCycle:  p.BillingCycle(),
		Active:        p.IsActive(),
		FeatureLimits: p.FeatureLimits(),
		DeletedAt:     p.DeletedAt(),
		Version:       p.Version(),
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	})
	if err != nil {
		panic(fmt.Sprintf("reload plan: %v", err))
	}
	return clone
}

// fakePlanRepo mimics the store's contract, not just its happy path: reads
// hand out reconstructed copies and writes only land when the caller holds
// the version the store last saw.
type fakePlanRepo struct {
	mu     sync.Mutex
	plans  map[uint]*plan.Plan
	nextID uint
	reads  int
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[uint]*plan.Plan), nextID: 1}
}

func (r *fakePlanRepo) add(p *plan.Plan) *plan.Plan {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID() == 0 {
		_ = p.SetID(r.nextID)
		r.nextID++
	}
	r.plans[p.ID()] = reloadPlan(p)
	return p
}

func (r *fakePlanRepo) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func (r *fakePlanRepo) Create(ctx context.Context, p *plan.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.plans {
		if existing.TenantID() == p.TenantID() && !existing.IsDeleted() && existing.Name() == p.Name() {
			return plan.ErrDuplicatePlanName
		}
	}
	if p.ID() == 0 {
		_ = p.SetID(r.nextID)
		r.nextID++
	}
	r.plans[p.ID()] = reloadPlan(p)
	return nil
}

func (r *fakePlanRepo) GetByID(ctx context.Context, tenantID, planID uint) (*plan.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	p, ok := r.plans[planID]
	if !ok || p.TenantID() != tenantID || p.IsDeleted() {
		return nil, nil
	}
	return reloadPlan(p), nil
}

func (r *fakePlanRepo) GetByIDForUpdate(ctx context.Context, tenantID, planID uint) (*plan.Plan, error) {
	return r.GetByID(ctx, tenantID, planID)
}

func (r *fakePlanRepo) GetBySID(ctx context.Context, tenantID uint, sid string) (*plan.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.plans {
		if p.SID() == sid && p.TenantID() == tenantID && !p.IsDeleted() {
			return reloadPlan(p), nil
		}
	}
	return nil, nil
}

func (r *fakePlanRepo) GetByIDs(ctx context.Context, tenantID uint, planIDs []uint) (map[uint]*plan.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[uint]*plan.Plan)
	for _, planID := range planIDs {
		if p, ok := r.plans[planID]; ok && p.TenantID() == tenantID {
			result[planID] = reloadPlan(p)
		}
	}
	return result, nil
}

func (r *fakePlanRepo) ListActive(ctx context.Context, tenantID uint) ([]*plan.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*plan.Plan
	for _, p := range r.plans {
		if p.TenantID() == tenantID && !p.IsDeleted() && p.IsActive() {
			result = append(result, reloadPlan(p))
		}
	}
	return result, nil
}

func (r *fakePlanRepo) Update(ctx context.Context, p *plan.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.plans[p.ID()]
	if !ok || stored.Version() != p.Version()-1 {
		return errors.NewConcurrentModificationError("plan was modified concurrently")
	}
	r.plans[p.ID()] = reloadPlan(p)
	return nil
}

func (r *fakePlanRepo) SoftDelete(ctx context.Context, p *plan.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.plans[p.ID()]
	if !ok || stored.Version() != p.Version()-1 {
		return errors.NewConcurrentModificationError("plan was modified concurrently")
	}
	r.plans[p.ID()] = reloadPlan(p)
	return nil
}

// fakeSubscriptionCounter implements the one subscription.Repository method
// plan deletion depends on; the rest are unused.
type fakeSubscriptionCounter struct {
	subscription.Repository
	liveByPlan map[uint]int64
}

func (r *fakeSubscriptionCounter) CountLiveByPlan(ctx context.Context, tenantID, planID uint) (int64, error) {
	return r.liveByPlan[planID], nil
}

// memoryPlanCache is an in-process PlanCache that actually stores snapshots,
// so tests can exercise the hit path and the null marker.
type memoryPlanCache struct {
	snapshots   map[string]*cache.CachedPlan
	invalidated []uint
}

func newMemoryPlanCache() *memoryPlanCache {
	return &memoryPlanCache{snapshots: make(map[string]*cache.CachedPlan)}
}

func (c *memoryPlanCache) key(tenantID, planID uint) string {
	return fmt.Sprintf("t%d:p%d", tenantID, planID)
}

func (c *memoryPlanCache) Get(ctx context.Context, tenantID, planID uint) (*cache.CachedPlan, error) {
	return c.snapshots[c.key(tenantID, planID)], nil
}

func (c *memoryPlanCache) Set(ctx context.Context, snapshot *cache.CachedPlan) error {
	c.snapshots[c.key(snapshot.TenantID, snapshot.ID)] = snapshot
	return nil
}

func (c *memoryPlanCache) SetNullMarker(ctx context.Context, tenantID, planID uint) error {
	c.snapshots[c.key(tenantID, planID)] = &cache.CachedPlan{ID: planID, TenantID: tenantID, NotFound: true}
	return nil
}

func (c *memoryPlanCache) Invalidate(ctx context.Context, tenantID, planID uint) error {
	delete(c.snapshots, c.key(tenantID, planID))
	c.invalidated = append(c.invalidated, planID)
	return nil
}

func testLogger() logger.Interface {
	return logger.NewLogger()
}
