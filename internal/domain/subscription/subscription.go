package subscription

import (
	"fmt"
	"time"

	"cadence/internal/shared/id"
)

// Subscription is the aggregate root enforcing lifecycle legality for one
// user's subscription within a tenant. At most one subscription per
// (user, tenant) may be live (active or past_due) at any time; the backing
// store enforces that with a unique slot, this aggregate enforces the
// transition graph and the billing-date invariant: nextBillingAt is nil if
// and only if the subscription is canceled.
type Subscription struct {
	subscriptionID uint
	sid            string
	userID         uint
	tenantID       uint
	planID         uint
	status         Status
	startAt        time.Time
	nextBillingAt  *time.Time
	canceledAt     *time.Time
	version        int
	loadedVersion  int
	createdAt      time.Time
	updatedAt      time.Time
}

// NewSubscription creates an active subscription starting now with the given
// first billing date.
func NewSubscription(userID, tenantID, planID uint, startAt, nextBillingAt time.Time) (*Subscription, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if !nextBillingAt.After(startAt) {
		return nil, fmt.Errorf("next billing date must be after start date")
	}

	now := time.Now().UTC()
	next := nextBillingAt
	return &Subscription{
		sid:           id.MustGenerateWithPrefix(id.PrefixSubscription, id.DefaultLength),
		userID:        userID,
		tenantID:      tenantID,
		planID:        planID,
		status:        StatusActive,
		startAt:       startAt,
		nextBillingAt: &next,
		version:       1,
		loadedVersion: 1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// SubscriptionReconstructParams carries persisted state back into the aggregate.
type SubscriptionReconstructParams struct {
	ID            uint
	SID           string
	UserID        uint
	TenantID      uint
	PlanID        uint
	Status        Status
	StartAt       time.Time
	NextBillingAt *time.Time
	CanceledAt    *time.Time
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReconstructSubscription rebuilds a subscription from persistence and
// re-checks the billing-date invariant against the stored status.
func ReconstructSubscription(p SubscriptionReconstructParams) (*Subscription, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if p.UserID == 0 || p.TenantID == 0 || p.PlanID == 0 {
		return nil, fmt.Errorf("user, tenant and plan IDs are required")
	}
	if !ValidStatuses[p.Status] {
		return nil, fmt.Errorf("invalid subscription status: %s", p.Status)
	}
	if (p.Status == StatusCanceled) != (p.NextBillingAt == nil) {
		return nil, fmt.Errorf("billing date invariant violated for status %s", p.Status)
	}
	if p.Status == StatusCanceled && p.CanceledAt == nil {
		return nil, fmt.Errorf("canceled subscription missing cancellation timestamp")
	}

	return &Subscription{
		subscriptionID: p.ID,
		sid:            p.SID,
		userID:         p.UserID,
		tenantID:       p.TenantID,
		planID:         p.PlanID,
		status:         p.Status,
		startAt:        p.StartAt,
		nextBillingAt:  p.NextBillingAt,
		canceledAt:     p.CanceledAt,
		version:        p.Version,
		loadedVersion:  p.Version,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}, nil
}

func (s *Subscription) ID() uint                  { return s.subscriptionID }
func (s *Subscription) SID() string               { return s.sid }
func (s *Subscription) UserID() uint              { return s.userID }
func (s *Subscription) TenantID() uint            { return s.tenantID }
func (s *Subscription) PlanID() uint              { return s.planID }
func (s *Subscription) Status() Status            { return s.status }
func (s *Subscription) StartAt() time.Time        { return s.startAt }
func (s *Subscription) NextBillingAt() *time.Time { return s.nextBillingAt }
func (s *Subscription) CanceledAt() *time.Time    { return s.canceledAt }
func (s *Subscription) Version() int              { return s.version }
func (s *Subscription) CreatedAt() time.Time      { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time      { return s.updatedAt }

// SetID sets the subscription ID (only for persistence layer use).
func (s *Subscription) SetID(subscriptionID uint) error {
	if s.subscriptionID != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if subscriptionID == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.subscriptionID = subscriptionID
	return nil
}

// MarkPastDue records a failed payment.
func (s *Subscription) MarkPastDue() error {
	if err := ValidateTransition(s.status, StatusPastDue); err != nil {
		return err
	}
	s.status = StatusPastDue
	s.touch()
	return nil
}

// Reactivate records a recovered payment and anchors the next billing date.
func (s *Subscription) Reactivate(nextBillingAt time.Time) error {
	if err := ValidateTransition(s.status, StatusActive); err != nil {
		return err
	}
	s.status = StatusActive
	next := nextBillingAt
	s.nextBillingAt = &next
	s.touch()
	return nil
}

// Cancel moves the subscription to its terminal state. The billing date is
// cleared, satisfying the nil-iff-canceled invariant.
func (s *Subscription) Cancel(at time.Time) error {
	if err := ValidateTransition(s.status, StatusCanceled); err != nil {
		return err
	}
	s.status = StatusCanceled
	canceled := at
	s.canceledAt = &canceled
	s.nextBillingAt = nil
	s.touch()
	return nil
}

// ChangePlan moves the subscription onto a new plan and re-anchors the next
// billing date. Only active subscriptions may upgrade, and upgrading to the
// current plan is rejected rather than treated as a no-op.
func (s *Subscription) ChangePlan(newPlanID uint, nextBillingAt time.Time) error {
	if newPlanID == 0 {
		return fmt.Errorf("%w: new plan ID is required", ErrInvalidUpgrade)
	}
	if newPlanID == s.planID {
		return fmt.Errorf("%w: subscription is already on this plan", ErrInvalidUpgrade)
	}
	if s.status != StatusActive {
		return fmt.Errorf("%w: cannot upgrade a %s subscription", ErrInvalidUpgrade, s.status)
	}
	s.planID = newPlanID
	next := nextBillingAt
	s.nextBillingAt = &next
	s.touch()
	return nil
}

// Validate re-checks domain invariants, used after every mutation in tests.
func (s *Subscription) Validate() error {
	if !ValidStatuses[s.status] {
		return fmt.Errorf("invalid status: %s", s.status)
	}
	if (s.status == StatusCanceled) != (s.nextBillingAt == nil) {
		return fmt.Errorf("billing date invariant violated for status %s", s.status)
	}
	if s.status == StatusCanceled && s.canceledAt == nil {
		return fmt.Errorf("canceled subscription missing cancellation timestamp")
	}
	return nil
}

// touch advances the version token exactly once between load and save,
// however many mutators run. The repository matches the stored row on
// version-1, so a second in-memory bump would make the write unmatchable.
func (s *Subscription) touch() {
	s.updatedAt = time.Now().UTC()
	if s.version == s.loadedVersion {
		s.version++
	}
}
