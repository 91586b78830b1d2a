package models

import (
	"time"
)

// TransitionLogModel is the database persistence model for the append-only
// audit ledger. Rows are inserted once and never updated or deleted.
type TransitionLogModel struct {
	ID             uint      `gorm:"primarykey"`
	SubscriptionID uint      `gorm:"not null;index:idx_subscription_created,priority:1"`
	FromStatus     *string   `gorm:"size:16"`
	ToStatus       string    `gorm:"not null;size:16"`
	Reason         string    `gorm:"size:255"`
	ActorID        *uint
	CreatedAt      time.Time `gorm:"not null;index:idx_subscription_created,priority:2"`
}

// TableName specifies the table name for GORM
func (TransitionLogModel) TableName() string {
	return "transition_logs"
}
