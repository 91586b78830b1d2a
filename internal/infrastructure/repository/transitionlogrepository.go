package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"cadence/internal/domain/subscription"
	"cadence/internal/infrastructure/persistence/mappers"
	"cadence/internal/infrastructure/persistence/models"
	"cadence/internal/shared/db"
	"cadence/internal/shared/logger"
)

type TransitionLogRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.TransitionLogMapper
	logger logger.Interface
}

func NewTransitionLogRepository(database *gorm.DB, log logger.Interface) subscription.TransitionLogRepository {
	return &TransitionLogRepositoryImpl{
		db:     database,
		mapper: mappers.NewTransitionLogMapper(),
		logger: log.Named("repository.transitionlog"),
	}
}

func (r *TransitionLogRepositoryImpl) Record(ctx context.Context, transition *subscription.Transition) error {
	model := r.mapper.ToModel(transition)

	// Callers run this inside the same transaction as the subscription write,
	// so a failure here rolls the whole change back.
	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		r.logger.Errorw("failed to record transition",
			"subscription_id", model.SubscriptionID, "to_status", model.ToStatus, "error", err)
		return fmt.Errorf("failed to record transition: %w", err)
	}

	if err := transition.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set transition ID: %w", err)
	}

	return nil
}

func (r *TransitionLogRepositoryImpl) History(ctx context.Context, subscriptionID uint) ([]*subscription.Transition, error) {
	var logModels []*models.TransitionLogModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC, id DESC").
		Find(&logModels).Error; err != nil {
		r.logger.Errorw("failed to load transition history", "subscription_id", subscriptionID, "error", err)
		return nil, fmt.Errorf("failed to load transition history: %w", err)
	}

	return r.mapper.ToEntities(logModels)
}

func (r *TransitionLogRepositoryImpl) Latest(ctx context.Context, subscriptionID uint) (*subscription.Transition, error) {
	var model models.TransitionLogModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ?", subscriptionID).
		Order("created_at DESC, id DESC").
		First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to load latest transition", "subscription_id", subscriptionID, "error", err)
		return nil, fmt.Errorf("failed to load latest transition: %w", err)
	}

	return r.mapper.ToEntity(&model)
}
