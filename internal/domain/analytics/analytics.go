// Package analytics defines read-only aggregation contracts over committed
// subscription and plan data. Every metric is produced by grouped queries in
// the store; result sets stay proportional to the number of statuses or
// plans, never to the number of subscriptions.
package analytics

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"cadence/internal/domain/subscription"
)

// StatusCount is one row of a per-status breakdown.
type StatusCount struct {
	Status subscription.Status
	Count  int64
}

// PlanCount is one row of a per-plan breakdown of live subscriptions.
type PlanCount struct {
	PlanID uint
	Count  int64
}

// PlanRevenue is one plan's contribution to recurring revenue.
type PlanRevenue struct {
	PlanID         uint            `json:"plan_id"`
	PlanSID        string          `json:"plan_sid"`
	PlanName       string          `json:"plan_name"`
	LiveCount      int64           `json:"live_count"`
	MonthlyRevenue decimal.Decimal `json:"monthly_revenue"`
	Percentage     decimal.Decimal `json:"percentage"`
}

// RevenueSummary is the tenant-level recurring revenue picture.
type RevenueSummary struct {
	MRR   decimal.Decimal `json:"mrr"`
	ARR   decimal.Decimal `json:"arr"`
	Plans []PlanRevenue   `json:"plans"`
}

// Repository exposes the grouped queries the analytics engine is built on.
type Repository interface {
	CountByStatus(ctx context.Context, tenantID uint) ([]StatusCount, error)
	// CountLiveByPlan groups active and past_due subscriptions by plan.
	CountLiveByPlan(ctx context.Context, tenantID uint) ([]PlanCount, error)
	// CountActiveAt counts subscriptions live at an instant: started on or
	// before it and not canceled until after it.
	CountActiveAt(ctx context.Context, tenantID uint, at time.Time) (int64, error)
	// CountCanceledBetween counts cancellations inside the half-open window
	// (from, to].
	CountCanceledBetween(ctx context.Context, tenantID uint, from, to time.Time) (int64, error)
}
