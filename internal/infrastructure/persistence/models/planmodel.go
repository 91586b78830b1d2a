package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PlanModel is the database persistence model for billing plans.
// This is the anti-corruption layer between domain and database.
//
// NameSlot backs the "unique among non-deleted plans" rule: it holds
// "t{tenant_id}:{lower(name)}" while the plan is live and NULL once the plan
// is soft-deleted, so the unique index never blocks reusing a deleted plan's
// name. MySQL unique indexes admit any number of NULLs.
type PlanModel struct {
	ID            uint            `gorm:"primarykey"`
	SID           string          `gorm:"uniqueIndex;not null;size:32"`
	TenantID      uint            `gorm:"not null;index:idx_tenant_plan"`
	Name          string          `gorm:"not null;size:100"`
	NameSlot      *string         `gorm:"uniqueIndex;size:120"`
	Description   string          `gorm:"size:500"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	BillingCycle  string          `gorm:"not null;size:16"`
	Active        bool            `gorm:"not null;default:true"`
	FeatureLimits datatypes.JSON
	Version       int             `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time      `gorm:"index"`
}

// TableName specifies the table name for GORM
func (PlanModel) TableName() string {
	return "plans"
}
