package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"cadence/internal/domain/subscription"
	"cadence/internal/infrastructure/persistence/mappers"
	"cadence/internal/infrastructure/persistence/models"
	"cadence/internal/shared/db"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(database *gorm.DB, log logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     database,
		mapper: mappers.NewSubscriptionMapper(),
		logger: log.Named("repository.subscription"),
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *subscription.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		// The active_slot unique index is the only insert-time collision a
		// well-formed aggregate can hit.
		if errors.IsDuplicateError(err) {
			return subscription.ErrDuplicateSubscription
		}
		r.logger.Errorw("failed to create subscription",
			"user_id", model.UserID, "tenant_id", model.TenantID, "plan_id", model.PlanID, "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	if err := sub.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set subscription ID: %w", err)
	}

	r.logger.Infow("subscription created",
		"id", model.ID, "user_id", model.UserID, "tenant_id", model.TenantID, "plan_id", model.PlanID)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByID(ctx context.Context, subscriptionID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("id = ?", subscriptionID).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription", "id", subscriptionID, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetByTenantAndID(ctx context.Context, tenantID, subscriptionID uint) (*subscription.Subscription, error) {
	return r.getOne(ctx, tenantID, "id = ?", subscriptionID)
}

func (r *SubscriptionRepositoryImpl) GetByTenantAndSID(ctx context.Context, tenantID uint, sid string) (*subscription.Subscription, error) {
	return r.getOne(ctx, tenantID, "sid = ?", sid)
}

func (r *SubscriptionRepositoryImpl) getOne(ctx context.Context, tenantID uint, cond string, arg interface{}) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScoped(tenantID)).
		Where(cond, arg).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetLiveByUser(ctx context.Context, tenantID, userID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScoped(tenantID)).
		Where("user_id = ? AND status IN ?", userID, []string{
			subscription.StatusActive.String(),
			subscription.StatusPastDue.String(),
		}).
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get live subscription", "tenant_id", tenantID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get live subscription: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *subscription.Subscription) error {
	model, err := r.mapper.ToModel(sub)
	if err != nil {
		return fmt.Errorf("failed to map subscription entity: %w", err)
	}

	loadedVersion := model.Version - 1

	result := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Where("id = ? AND version = ?", model.ID, loadedVersion).
		Updates(map[string]interface{}{
			"plan_id":         model.PlanID,
			"status":          model.Status,
			"active_slot":     model.ActiveSlot,
			"next_billing_at": model.NextBillingAt,
			"canceled_at":     model.CanceledAt,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		if errors.IsDuplicateError(result.Error) {
			return subscription.ErrDuplicateSubscription
		}
		r.logger.Errorw("failed to update subscription", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return subscription.ErrConcurrentModification
	}

	r.logger.Infow("subscription updated", "id", model.ID, "status", model.Status, "version", model.Version)
	return nil
}

func (r *SubscriptionRepositoryImpl) CountLiveByPlan(ctx context.Context, tenantID, planID uint) (int64, error) {
	var count int64

	if err := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Scopes(db.TenantScoped(tenantID)).
		Where("plan_id = ? AND status IN ?", planID, []string{
			subscription.StatusActive.String(),
			subscription.StatusPastDue.String(),
		}).
		Count(&count).Error; err != nil {
		r.logger.Errorw("failed to count live subscriptions", "tenant_id", tenantID, "plan_id", planID, "error", err)
		return 0, fmt.Errorf("failed to count live subscriptions: %w", err)
	}

	return count, nil
}

func (r *SubscriptionRepositoryImpl) ListDueForBilling(ctx context.Context, before time.Time, limit int) ([]*subscription.Subscription, error) {
	var subscriptionModels []*models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND next_billing_at IS NOT NULL AND next_billing_at <= ?",
			subscription.StatusActive.String(), before).
		Order("next_billing_at ASC").
		Limit(limit).
		Find(&subscriptionModels).Error; err != nil {
		r.logger.Errorw("failed to list subscriptions due for billing", "before", before, "error", err)
		return nil, fmt.Errorf("failed to list due subscriptions: %w", err)
	}

	return r.mapper.ToEntities(subscriptionModels)
}
