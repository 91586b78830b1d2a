package models

import (
	"time"
)

// SubscriptionModel is the database persistence model for subscriptions.
//
// ActiveSlot enforces the single-live-subscription invariant at the storage
// layer: it holds "t{tenant_id}:u{user_id}" while the subscription is active
// or past_due and NULL once canceled. Two concurrent creates for the same
// (user, tenant) pair collide on the unique index, so exactly one succeeds
// regardless of application-level check ordering.
type SubscriptionModel struct {
	ID            uint       `gorm:"primarykey"`
	SID           string     `gorm:"uniqueIndex;not null;size:32"`
	UserID        uint       `gorm:"not null;index:idx_user_tenant,priority:1"`
	TenantID      uint       `gorm:"not null;index:idx_user_tenant,priority:2;index:idx_tenant_status,priority:1;index:idx_tenant_plan_status,priority:1"`
	PlanID        uint       `gorm:"not null;index:idx_plan_subscription;index:idx_tenant_plan_status,priority:2"`
	Status        string     `gorm:"not null;size:16;index:idx_tenant_status,priority:2;index:idx_tenant_plan_status,priority:3"`
	ActiveSlot    *string    `gorm:"uniqueIndex;size:64"`
	StartAt       time.Time  `gorm:"not null;index"`
	NextBillingAt *time.Time `gorm:"index"`
	CanceledAt    *time.Time `gorm:"index"`
	Version       int        `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
