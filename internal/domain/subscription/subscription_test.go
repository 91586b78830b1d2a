package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

func newActiveSubscription(t *testing.T) *Subscription {
	t.Helper()
	start := time.Now().UTC()
	sub, err := NewSubscription(10, 1, 100, start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

func newPastDueSubscription(t *testing.T) *Subscription {
	t.Helper()
	sub := newActiveSubscription(t)
	require.NoError(t, sub.MarkPastDue())
	return sub
}

// =====================================================================
// TestNewSubscription_*
// =====================================================================

func TestNewSubscription_ValidInput(t *testing.T) {
	start := time.Now().UTC()
	next := start.AddDate(0, 1, 0)

	sub, err := NewSubscription(10, 1, 100, start, next)

	require.NoError(t, err)
	assert.Equal(t, StatusActive, sub.Status())
	assert.Equal(t, uint(10), sub.UserID())
	assert.Equal(t, uint(1), sub.TenantID())
	assert.Equal(t, uint(100), sub.PlanID())
	require.NotNil(t, sub.NextBillingAt())
	assert.Equal(t, next, *sub.NextBillingAt())
	assert.Nil(t, sub.CanceledAt())
	assert.Equal(t, 1, sub.Version())
	assert.NotEmpty(t, sub.SID(), "SID should be generated")
	assert.NoError(t, sub.Validate())
}

func TestNewSubscription_MissingIDs(t *testing.T) {
	start := time.Now().UTC()
	next := start.AddDate(0, 1, 0)

	_, err := NewSubscription(0, 1, 100, start, next)
	assert.Error(t, err)

	_, err = NewSubscription(10, 0, 100, start, next)
	assert.Error(t, err)

	_, err = NewSubscription(10, 1, 0, start, next)
	assert.Error(t, err)
}

func TestNewSubscription_BillingDateNotAfterStart(t *testing.T) {
	start := time.Now().UTC()

	_, err := NewSubscription(10, 1, 100, start, start)
	assert.Error(t, err)
}

// =====================================================================
// Lifecycle mutations
// =====================================================================

func TestSubscription_MarkPastDue(t *testing.T) {
	sub := newActiveSubscription(t)
	version := sub.Version()

	require.NoError(t, sub.MarkPastDue())

	assert.Equal(t, StatusPastDue, sub.Status())
	assert.NotNil(t, sub.NextBillingAt(), "past_due keeps its billing date")
	assert.Equal(t, version+1, sub.Version())
	assert.NoError(t, sub.Validate())
}

func TestSubscription_MarkPastDue_FromPastDue(t *testing.T) {
	sub := newPastDueSubscription(t)

	assert.ErrorIs(t, sub.MarkPastDue(), ErrInvalidStatusTransition)
}

func TestSubscription_Reactivate(t *testing.T) {
	sub := newPastDueSubscription(t)
	next := time.Now().UTC().AddDate(0, 1, 0)

	require.NoError(t, sub.Reactivate(next))

	assert.Equal(t, StatusActive, sub.Status())
	require.NotNil(t, sub.NextBillingAt())
	assert.Equal(t, next, *sub.NextBillingAt())
	assert.NoError(t, sub.Validate())
}

func TestSubscription_Reactivate_FromActive(t *testing.T) {
	sub := newActiveSubscription(t)

	err := sub.Reactivate(time.Now().UTC().AddDate(0, 1, 0))

	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestSubscription_Cancel(t *testing.T) {
	sub := newActiveSubscription(t)
	at := time.Now().UTC()

	require.NoError(t, sub.Cancel(at))

	assert.Equal(t, StatusCanceled, sub.Status())
	assert.Nil(t, sub.NextBillingAt(), "billing date cleared on cancellation")
	require.NotNil(t, sub.CanceledAt())
	assert.Equal(t, at, *sub.CanceledAt())
	assert.NoError(t, sub.Validate())
}

func TestSubscription_Cancel_FromPastDue(t *testing.T) {
	sub := newPastDueSubscription(t)

	require.NoError(t, sub.Cancel(time.Now().UTC()))

	assert.Equal(t, StatusCanceled, sub.Status())
	assert.NoError(t, sub.Validate())
}

func TestSubscription_Cancel_AlreadyCanceled(t *testing.T) {
	sub := newActiveSubscription(t)
	require.NoError(t, sub.Cancel(time.Now().UTC()))

	err := sub.Cancel(time.Now().UTC())

	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestSubscription_CanceledIsTerminal(t *testing.T) {
	sub := newActiveSubscription(t)
	require.NoError(t, sub.Cancel(time.Now().UTC()))

	assert.ErrorIs(t, sub.MarkPastDue(), ErrInvalidStatusTransition)
	assert.ErrorIs(t, sub.Reactivate(time.Now().UTC().AddDate(0, 1, 0)), ErrInvalidStatusTransition)
}

// =====================================================================
// ChangePlan
// =====================================================================

func TestSubscription_ChangePlan(t *testing.T) {
	sub := newActiveSubscription(t)
	next := time.Now().UTC().AddDate(1, 0, 0)

	require.NoError(t, sub.ChangePlan(200, next))

	assert.Equal(t, uint(200), sub.PlanID())
	assert.Equal(t, StatusActive, sub.Status(), "upgrade does not change status")
	require.NotNil(t, sub.NextBillingAt())
	assert.Equal(t, next, *sub.NextBillingAt())
	assert.NoError(t, sub.Validate())
}

func TestSubscription_ChangePlan_SamePlan(t *testing.T) {
	sub := newActiveSubscription(t)

	err := sub.ChangePlan(sub.PlanID(), time.Now().UTC().AddDate(0, 1, 0))

	assert.ErrorIs(t, err, ErrInvalidUpgrade)
}

func TestSubscription_ChangePlan_NotActive(t *testing.T) {
	next := time.Now().UTC().AddDate(0, 1, 0)

	pastDue := newPastDueSubscription(t)
	assert.ErrorIs(t, pastDue.ChangePlan(200, next), ErrInvalidUpgrade)

	canceled := newActiveSubscription(t)
	require.NoError(t, canceled.Cancel(time.Now().UTC()))
	assert.ErrorIs(t, canceled.ChangePlan(200, next), ErrInvalidUpgrade)
}

// =====================================================================
// Reconstruction
// =====================================================================

func TestReconstructSubscription_EnforcesBillingInvariant(t *testing.T) {
	start := time.Now().UTC()
	next := start.AddDate(0, 1, 0)

	// Active subscription without a billing date is corrupt.
	_, err := ReconstructSubscription(SubscriptionReconstructParams{
		ID: 1, UserID: 10, TenantID: 1, PlanID: 100,
		Status: StatusActive, StartAt: start,
		Version: 1, CreatedAt: start, UpdatedAt: start,
	})
	assert.Error(t, err)

	// Canceled subscription with a billing date is corrupt.
	canceledAt := start.Add(time.Hour)
	_, err = ReconstructSubscription(SubscriptionReconstructParams{
		ID: 1, UserID: 10, TenantID: 1, PlanID: 100,
		Status: StatusCanceled, StartAt: start, NextBillingAt: &next, CanceledAt: &canceledAt,
		Version: 1, CreatedAt: start, UpdatedAt: start,
	})
	assert.Error(t, err)

	// Well-formed canceled subscription round-trips.
	sub, err := ReconstructSubscription(SubscriptionReconstructParams{
		ID: 1, SID: "sub_test", UserID: 10, TenantID: 1, PlanID: 100,
		Status: StatusCanceled, StartAt: start, CanceledAt: &canceledAt,
		Version: 3, CreatedAt: start, UpdatedAt: canceledAt,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCanceled, sub.Status())
	assert.Equal(t, 3, sub.Version())
}

// The version token must advance exactly once between load and save, however
// many mutations land in the same cycle. The store matches the previous token
// on write, so a double bump would make every multi-step save unmatchable.
func TestSubscription_VersionAdvancesOncePerLoadCycle(t *testing.T) {
	start := time.Now().UTC()
	next := start.AddDate(0, 1, 0)

	sub, err := ReconstructSubscription(SubscriptionReconstructParams{
		ID: 1, SID: "sub_test", UserID: 10, TenantID: 1, PlanID: 100,
		Status: StatusActive, StartAt: start, NextBillingAt: &next,
		Version: 5, CreatedAt: start, UpdatedAt: start,
	})
	require.NoError(t, err)

	require.NoError(t, sub.MarkPastDue())
	require.NoError(t, sub.Reactivate(next))
	require.NoError(t, sub.Cancel(time.Now().UTC()))

	assert.Equal(t, 6, sub.Version())

	// A fresh load starts a new cycle and earns a new bump.
	reloaded, err := ReconstructSubscription(SubscriptionReconstructParams{
		ID: 1, SID: "sub_test", UserID: 10, TenantID: 1, PlanID: 100,
		Status: StatusActive, StartAt: start, NextBillingAt: &next,
		Version: 6, CreatedAt: start, UpdatedAt: start,
	})
	require.NoError(t, err)
	require.NoError(t, reloaded.MarkPastDue())
	assert.Equal(t, 7, reloaded.Version())
}
