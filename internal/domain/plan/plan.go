package plan

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"cadence/internal/shared/id"
)

// Plan is the billing plan aggregate root. A plan belongs to one tenant,
// carries a fixed-point price for one billing cycle and an ordered list of
// feature limits. Plans are soft-deleted, never physically removed once a
// subscription has referenced them.
type Plan struct {
	planID        uint
	sid           string
	tenantID      uint
	name          string
	description   string
	price         decimal.Decimal
	billingCycle  BillingCycle
	active        bool
	featureLimits []FeatureLimit
	deletedAt     *time.Time
	version       int
	loadedVersion int
	createdAt     time.Time
	updatedAt     time.Time
}

// NewPlan creates an active plan for a tenant.
func NewPlan(tenantID uint, name, description string, price decimal.Decimal, billingCycle BillingCycle, limits []FeatureLimit) (*Plan, error) {
	if tenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if name == "" {
		return nil, fmt.Errorf("plan name is required")
	}
	if len(name) > 100 {
		return nil, fmt.Errorf("plan name too long (max 100 characters)")
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidPrice)
	}
	if !billingCycle.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBillingCycle, billingCycle)
	}

	now := time.Now().UTC()
	return &Plan{
		sid:           id.MustGenerateWithPrefix(id.PrefixPlan, id.DefaultLength),
		tenantID:      tenantID,
		name:          name,
		description:   description,
		price:         price,
		billingCycle:  billingCycle,
		active:        true,
		featureLimits: limits,
		version:       1,
		loadedVersion: 1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// PlanReconstructParams carries persisted state back into the aggregate.
type PlanReconstructParams struct {
	ID            uint
	SID           string
	TenantID      uint
	Name          string
	Description   string
	Price         decimal.Decimal
	BillingCycle  BillingCycle
	Active        bool
	FeatureLimits []FeatureLimit
	DeletedAt     *time.Time
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReconstructPlan rebuilds a plan from persistence.
func ReconstructPlan(p PlanReconstructParams) (*Plan, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("plan ID cannot be zero")
	}
	if p.TenantID == 0 {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if !p.BillingCycle.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBillingCycle, p.BillingCycle)
	}

	return &Plan{
		planID:        p.ID,
		sid:           p.SID,
		tenantID:      p.TenantID,
		name:          p.Name,
		description:   p.Description,
		price:         p.Price,
		billingCycle:  p.BillingCycle,
		active:        p.Active,
		featureLimits: p.FeatureLimits,
		deletedAt:     p.DeletedAt,
		version:       p.Version,
		loadedVersion: p.Version,
		createdAt:     p.CreatedAt,
		updatedAt:     p.UpdatedAt,
	}, nil
}

func (p *Plan) ID() uint                      { return p.planID }
func (p *Plan) SID() string                   { return p.sid }
func (p *Plan) TenantID() uint                { return p.tenantID }
func (p *Plan) Name() string                  { return p.name }
func (p *Plan) Description() string           { return p.description }
func (p *Plan) Price() decimal.Decimal        { return p.price }
func (p *Plan) BillingCycle() BillingCycle    { return p.billingCycle }
func (p *Plan) IsActive() bool                { return p.active }
func (p *Plan) FeatureLimits() []FeatureLimit { return p.featureLimits }
func (p *Plan) DeletedAt() *time.Time         { return p.deletedAt }
func (p *Plan) Version() int                  { return p.version }
func (p *Plan) CreatedAt() time.Time          { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time          { return p.updatedAt }

// SetID sets the plan ID (only for persistence layer use).
func (p *Plan) SetID(planID uint) error {
	if p.planID != 0 {
		return fmt.Errorf("plan ID is already set")
	}
	if planID == 0 {
		return fmt.Errorf("plan ID cannot be zero")
	}
	p.planID = planID
	return nil
}

// IsDeleted reports whether the plan has been soft-deleted.
func (p *Plan) IsDeleted() bool {
	return p.deletedAt != nil
}

// MonthlyRevenue is the plan's contribution to MRR per active subscription.
func (p *Plan) MonthlyRevenue() decimal.Decimal {
	return p.billingCycle.MonthlyEquivalent(p.price)
}

// UpdateDescription replaces the plan description.
func (p *Plan) UpdateDescription(description string) {
	if p.description == description {
		return
	}
	p.description = description
	p.touch()
}

// UpdatePrice replaces the plan price for future billing computations.
// Existing subscriptions keep their billing anchor; only newly computed
// revenue figures see the new price.
func (p *Plan) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidPrice)
	}
	if p.price.Equal(price) {
		return nil
	}
	p.price = price
	p.touch()
	return nil
}

// SetActive toggles whether the plan accepts new subscriptions.
func (p *Plan) SetActive(active bool) {
	if p.active == active {
		return
	}
	p.active = active
	p.touch()
}

// ReplaceFeatureLimits swaps the ordered feature limit list.
func (p *Plan) ReplaceFeatureLimits(limits []FeatureLimit) {
	p.featureLimits = limits
	p.touch()
}

// SoftDelete marks the plan deleted and inactive. The caller is responsible
// for verifying no live subscription still references the plan; that check
// and this mutation must happen in one transaction.
func (p *Plan) SoftDelete() error {
	if p.deletedAt != nil {
		return ErrPlanNotFound
	}
	now := time.Now().UTC()
	p.deletedAt = &now
	p.active = false
	p.touch()
	return nil
}

// touch advances the version token exactly once between load and save,
// however many fields change. The repository matches the stored row on
// version-1, so a second in-memory bump would make the write unmatchable.
func (p *Plan) touch() {
	p.updatedAt = time.Now().UTC()
	if p.version == p.loadedVersion {
		p.version++
	}
}
