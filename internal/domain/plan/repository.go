package plan

import "context"

// Repository persists plans. All reads are tenant-scoped and exclude
// soft-deleted rows unless noted otherwise.
type Repository interface {
	Create(ctx context.Context, p *Plan) error
	// GetByID returns nil when the plan is absent, soft-deleted, or owned by
	// a different tenant.
	GetByID(ctx context.Context, tenantID, planID uint) (*Plan, error)
	// GetByIDForUpdate behaves like GetByID but takes a row lock; it must be
	// called inside a transaction. Subscribing against a plan and soft-deleting
	// that plan both lock the row so one always observes the other.
	GetByIDForUpdate(ctx context.Context, tenantID, planID uint) (*Plan, error)
	GetBySID(ctx context.Context, tenantID uint, sid string) (*Plan, error)
	// GetByIDs resolves several plans in one query, for analytics attribution.
	GetByIDs(ctx context.Context, tenantID uint, planIDs []uint) (map[uint]*Plan, error)
	ListActive(ctx context.Context, tenantID uint) ([]*Plan, error)
	// Update persists mutations under the aggregate's version token.
	Update(ctx context.Context, p *Plan) error
	// SoftDelete flips the deleted flag. The active-subscription guard runs
	// in the calling use case inside one transaction.
	SoftDelete(ctx context.Context, p *Plan) error
}
