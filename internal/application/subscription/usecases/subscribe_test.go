package usecases

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cadence/internal/domain/plan"
	"cadence/internal/domain/subscription"
	"cadence/internal/shared/errors"
)

func newSubscribeUC(planRepo *fakePlanRepo, subRepo *fakeSubscriptionRepo, logRepo *fakeTransitionRepo) *SubscribeUseCase {
	return NewSubscribeUseCase(subRepo, planRepo, logRepo, noopTxManager{}, testLogger())
}

func TestSubscribeUseCase_CreatesActiveSubscription(t *testing.T) {
	planRepo := newFakePlanRepo()
	subRepo := newFakeSubscriptionRepo()
	logRepo := newFakeTransitionRepo()
	monthly := planRepo.add(mustPlan(t, 1, "Starter", "9.99", plan.BillingCycleMonthly))

	uc := newSubscribeUC(planRepo, subRepo, logRepo)

	sub, err := uc.Execute(context.Background(), SubscribeCommand{TenantID: 1, UserID: 42, PlanID: monthly.ID()})
	require.NoError(t, err)
	require.NotNil(t, sub)

	assert.Equal(t, subscription.StatusActive, sub.Status())
	assert.Equal(t, uint(42), sub.UserID())
	assert.Equal(t, monthly.ID(), sub.PlanID())
	require.NotNil(t, sub.NextBillingAt())
	assert.True(t, sub.NextBillingAt().After(sub.StartAt()))

	require.Len(t, logRepo.entries, 1)
	entry := logRepo.entries[0]
	assert.True(t, entry.IsInitial())
	assert.Equal(t, subscription.StatusActive, entry.ToStatus())
	require.NotNil(t, entry.ActorID())
	assert.Equal(t, uint(42), *entry.ActorID())
}

func TestSubscribeUseCase_ResolvesPlanBySID(t *testing.T) {
	planRepo := newFakePlanRepo()
	subRepo := newFakeSubscriptionRepo()
	logRepo := newFakeTransitionRepo()
	monthly := planRepo.add(mustPlan(t, 1, "Starter", "9.99", plan.BillingCycleMonthly))

	uc := newSubscribeUC(planRepo, subRepo, logRepo)

	sub, err := uc.Execute(context.Background(), SubscribeCommand{TenantID: 1, UserID: 42, PlanSID: monthly.SID()})
	require.NoError(t, err)
	assert.Equal(t, monthly.ID(), sub.PlanID())
}

func TestSubscribeUseCase_RejectsDuplicateLiveSubscription(t *testing.T) {
	planRepo := newFakePlanRepo()
	subRepo := newFakeSubscriptionRepo()
	logRepo := newFakeTransitionRepo()
	monthly := planRepo.add(mustPlan(t, 1, "Starter", "9.99", plan.BillingCycleMonthly))

	uc := newSubscribeUC(planRepo, subRepo, logRepo)

	_, err := uc.Execute(context.Background(), SubscribeCommand{TenantID: 1, UserID: 42, PlanID: monthly.ID()})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), SubscribeCommand{TenantID: 1, UserID: 42, PlanID: monthly.ID()})
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))

	// The failed attempt must not leave a ledger entry behind.
	assert.Len(t, logRepo.entries, 1)
}

func TestSubscribeUseCase_AllowsSameUserAcrossTenants(t *testing.T) {
	planRepo := newFakePlanRepo()
	subRepo := newFakeSubscriptionRepo()
	logRepo := newFakeTransitionRepo()
	planA := planRepo.add(mustPlan(t, 1, "Starter", "9.99", plan.BillingCycleMonthly))
	planB := planRepo.add(mustPlan(t, 2, "Starter", "9.99", plan.BillingCycleMonthly))

	uc := newSubscribeUC(planRepo, subRepo, logRepo)

	_, err := uc.Execute(context.Background(), SubscribeCommand{TenantID: 1, UserID: 42, PlanID: planA.ID()})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), SubscribeCommand{TenantID: 2, UserID: 42, PlanID: planB.ID()})
	require.NoError(t, err)
}

func TestSubscribeUseCase_PlanNotFound(t *testing.T) {
	uc := newSubscribeUC(newFakePlanRepo(), newFakeSubscriptionRepo(), newFakeTransitionRepo())

	_, err := uc.Execute(context.Background(), SubscribeCommand{TenantID: 1, UserID: 42, PlanID: 99})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestSubscribeUseCase_PlanBelongsToOtherTenant(t *testing.T) {
	planRepo := newFakePlanRepo()
	monthly := planRepo.add(mustPlan(t, 2, "Starter", "9.99", plan.BillingCycleMonthly))

	uc := newSubscribeUC(planRepo, newFakeSubscriptionRepo(), newFakeTransitionRepo())

	_, err := uc.Execute(context.Background(), SubscribeCommand{TenantID: 1, UserID: 42, PlanID: monthly.ID()})
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestSubscribeUseCase_InactivePlanRejected(t *testing.T) {
	planRepo := newFakePlanRepo()
	monthly := mustPlan(t, 1, "Starter", "9.99", plan.BillingCycleMonthly)
	monthly.SetActive(false)
	planRepo.add(monthly)

	uc := newSubscribeUC(planRepo, newFakeSubscriptionRepo(), newFakeTransitionRepo())

	_, err := uc.Execute(context.Background(), SubscribeCommand{TenantID: 1, UserID: 42, PlanID: monthly.ID()})
	require.Error(t, err)
	assert.True(t, errors.IsConflictError(err))
}

// Many simultaneous subscribe calls for the same user and tenant must admit
// exactly one live subscription; the rest trip the uniqueness check.
func TestSubscribeUseCase_ConcurrentRequestsAdmitOne(t *testing.T) {
	planRepo := newFakePlanRepo()
	subRepo := newFakeSubscriptionRepo()
	logRepo := newFakeTransitionRepo()
	monthly := planRepo.add(mustPlan(t, 1, "Starter", "9.99", plan.BillingCycleMonthly))

	uc := newSubscribeUC(planRepo, subRepo, logRepo)

	const attempts = 20
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), SubscribeCommand{TenantID: 1, UserID: 42, PlanID: monthly.ID()})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		require.True(t, errors.IsConflictError(err), "unexpected error kind: %v", err)
		rejected++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)

	live, err := subRepo.CountLiveByPlan(context.Background(), 1, monthly.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(1), live)
}

func TestSubscribeUseCase_LedgerFailureAbortsCreate(t *testing.T) {
	planRepo := newFakePlanRepo()
	subRepo := newFakeSubscriptionRepo()
	logRepo := newFakeTransitionRepo()
	logRepo.recordErr = assert.AnError
	monthly := planRepo.add(mustPlan(t, 1, "Starter", "9.99", plan.BillingCycleMonthly))

	uc := newSubscribeUC(planRepo, subRepo, logRepo)

	_, err := uc.Execute(context.Background(), SubscribeCommand{TenantID: 1, UserID: 42, PlanID: monthly.ID()})
	require.Error(t, err)
}
