package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cadence/internal/domain/analytics"
	"cadence/internal/domain/subscription"
	"cadence/internal/infrastructure/persistence/models"
	"cadence/internal/shared/db"
	"cadence/internal/shared/logger"
)

// AnalyticsRepositoryImpl answers aggregate questions with grouped queries
// instead of loading subscription rows into memory.
type AnalyticsRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewAnalyticsRepository(database *gorm.DB, log logger.Interface) analytics.Repository {
	return &AnalyticsRepositoryImpl{
		db:     database,
		logger: log.Named("repository.analytics"),
	}
}

func (r *AnalyticsRepositoryImpl) CountByStatus(ctx context.Context, tenantID uint) ([]analytics.StatusCount, error) {
	var counts []analytics.StatusCount

	if err := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Scopes(db.TenantScoped(tenantID)).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		r.logger.Errorw("failed to count subscriptions by status", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	return counts, nil
}

func (r *AnalyticsRepositoryImpl) CountLiveByPlan(ctx context.Context, tenantID uint) ([]analytics.PlanCount, error) {
	var counts []analytics.PlanCount

	if err := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Scopes(db.TenantScoped(tenantID)).
		Select("plan_id, COUNT(*) AS count").
		Where("status IN ?", []string{
			subscription.StatusActive.String(),
			subscription.StatusPastDue.String(),
		}).
		Group("plan_id").
		Scan(&counts).Error; err != nil {
		r.logger.Errorw("failed to count live subscriptions by plan", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to count live by plan: %w", err)
	}

	return counts, nil
}

func (r *AnalyticsRepositoryImpl) CountActiveAt(ctx context.Context, tenantID uint, at time.Time) (int64, error) {
	var count int64

	// A subscription counts as active at an instant when it had started and
	// was not yet canceled by then.
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Scopes(db.TenantScoped(tenantID)).
		Where("start_at <= ? AND (canceled_at IS NULL OR canceled_at > ?)", at, at).
		Count(&count).Error; err != nil {
		r.logger.Errorw("failed to count active subscriptions at instant", "tenant_id", tenantID, "at", at, "error", err)
		return 0, fmt.Errorf("failed to count active at: %w", err)
	}

	return count, nil
}

func (r *AnalyticsRepositoryImpl) CountCanceledBetween(ctx context.Context, tenantID uint, from, to time.Time) (int64, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Scopes(db.TenantScoped(tenantID)).
		Where("canceled_at IS NOT NULL AND canceled_at > ? AND canceled_at <= ?", from, to).
		Count(&count).Error; err != nil {
		r.logger.Errorw("failed to count canceled subscriptions in window", "tenant_id", tenantID, "error", err)
		return 0, fmt.Errorf("failed to count canceled between: %w", err)
	}

	return count, nil
}
