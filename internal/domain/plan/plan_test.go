package plan

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlan(t *testing.T) *Plan {
	t.Helper()
	p, err := NewPlan(1, "Pro", "professional tier", decimal.RequireFromString("29.99"), BillingCycleMonthly, []FeatureLimit{
		{Type: "projects", Value: 10},
		{Type: "api_calls", Value: UnlimitedValue},
	})
	require.NoError(t, err)
	return p
}

func TestNewPlan_ValidInput(t *testing.T) {
	p := newTestPlan(t)

	assert.Equal(t, "Pro", p.Name())
	assert.Equal(t, uint(1), p.TenantID())
	assert.True(t, p.IsActive())
	assert.False(t, p.IsDeleted())
	assert.Equal(t, 1, p.Version())
	assert.NotEmpty(t, p.SID())
	assert.Len(t, p.FeatureLimits(), 2)
}

func TestNewPlan_Invalid(t *testing.T) {
	price := decimal.RequireFromString("10.00")

	_, err := NewPlan(0, "Pro", "", price, BillingCycleMonthly, nil)
	assert.Error(t, err, "tenant required")

	_, err = NewPlan(1, "", "", price, BillingCycleMonthly, nil)
	assert.Error(t, err, "name required")

	_, err = NewPlan(1, "Pro", "", decimal.RequireFromString("-1"), BillingCycleMonthly, nil)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = NewPlan(1, "Pro", "", price, BillingCycle("weekly"), nil)
	assert.ErrorIs(t, err, ErrInvalidBillingCycle)
}

func TestPlan_UpdatePrice(t *testing.T) {
	p := newTestPlan(t)
	version := p.Version()

	require.NoError(t, p.UpdatePrice(decimal.RequireFromString("39.99")))
	assert.True(t, p.Price().Equal(decimal.RequireFromString("39.99")))
	assert.Equal(t, version+1, p.Version())

	assert.ErrorIs(t, p.UpdatePrice(decimal.RequireFromString("-5")), ErrInvalidPrice)
}

func TestPlan_UpdatePrice_SameValueIsNoop(t *testing.T) {
	p := newTestPlan(t)
	version := p.Version()

	require.NoError(t, p.UpdatePrice(decimal.RequireFromString("29.99")))

	assert.Equal(t, version, p.Version())
}

// The version token must advance exactly once between load and save, however
// many fields change. The store matches the previous token on write, so a
// double bump would make every multi-field save unmatchable.
func TestPlan_VersionAdvancesOncePerLoadCycle(t *testing.T) {
	now := time.Now().UTC()
	p, err := ReconstructPlan(PlanReconstructParams{
		ID: 1, SID: "plan_test", TenantID: 1, Name: "Pro",
		Price: decimal.RequireFromString("29.99"), BillingCycle: BillingCycleMonthly,
		Active: true, Version: 4, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	p.UpdateDescription("for growing teams")
	require.NoError(t, p.UpdatePrice(decimal.RequireFromString("39.99")))
	p.ReplaceFeatureLimits([]FeatureLimit{{Type: "seats", Value: 25}})

	assert.Equal(t, 5, p.Version())

	reloaded, err := ReconstructPlan(PlanReconstructParams{
		ID: 1, SID: "plan_test", TenantID: 1, Name: "Pro",
		Price: decimal.RequireFromString("39.99"), BillingCycle: BillingCycleMonthly,
		Active: true, Version: 5, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	reloaded.SetActive(false)
	assert.Equal(t, 6, reloaded.Version())
}

func TestPlan_SoftDelete(t *testing.T) {
	p := newTestPlan(t)

	require.NoError(t, p.SoftDelete())

	assert.True(t, p.IsDeleted())
	assert.False(t, p.IsActive())

	assert.ErrorIs(t, p.SoftDelete(), ErrPlanNotFound)
}

func TestPlan_MonthlyRevenue(t *testing.T) {
	monthly := newTestPlan(t)
	assert.True(t, monthly.MonthlyRevenue().Equal(decimal.RequireFromString("29.99")))

	yearly, err := NewPlan(1, "Enterprise", "", decimal.RequireFromString("1200.00"), BillingCycleYearly, nil)
	require.NoError(t, err)
	assert.True(t, yearly.MonthlyRevenue().Equal(decimal.RequireFromString("100.00")))
}

func TestFeatureLimit(t *testing.T) {
	limit, err := NewFeatureLimit("projects", 10)
	require.NoError(t, err)
	assert.False(t, limit.IsUnlimited())
	assert.True(t, limit.Allows(10))
	assert.False(t, limit.Allows(11))

	unlimited, err := NewFeatureLimit("api_calls", UnlimitedValue)
	require.NoError(t, err)
	assert.True(t, unlimited.IsUnlimited())
	assert.True(t, unlimited.Allows(1<<40))

	_, err = NewFeatureLimit("", 1)
	assert.Error(t, err)

	_, err = NewFeatureLimit("projects", -2)
	assert.Error(t, err)
}
