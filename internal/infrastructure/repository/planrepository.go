package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cadence/internal/domain/plan"
	"cadence/internal/infrastructure/persistence/mappers"
	"cadence/internal/infrastructure/persistence/models"
	"cadence/internal/shared/db"
	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
)

type PlanRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.PlanMapper
	logger logger.Interface
}

func NewPlanRepository(database *gorm.DB, log logger.Interface) plan.Repository {
	return &PlanRepositoryImpl{
		db:     database,
		mapper: mappers.NewPlanMapper(),
		logger: log.Named("repository.plan"),
	}
}

func (r *PlanRepositoryImpl) Create(ctx context.Context, planEntity *plan.Plan) error {
	model, err := r.mapper.ToModel(planEntity)
	if err != nil {
		return fmt.Errorf("failed to map plan entity: %w", err)
	}

	tx := db.GetTxFromContext(ctx, r.db)
	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return plan.ErrDuplicatePlanName
		}
		r.logger.Errorw("failed to create plan", "tenant_id", model.TenantID, "name", model.Name, "error", err)
		return fmt.Errorf("failed to create plan: %w", err)
	}

	if err := planEntity.SetID(model.ID); err != nil {
		return fmt.Errorf("failed to set plan ID: %w", err)
	}

	r.logger.Infow("plan created", "id", model.ID, "tenant_id", model.TenantID, "name", model.Name)
	return nil
}

func (r *PlanRepositoryImpl) GetByID(ctx context.Context, tenantID, planID uint) (*plan.Plan, error) {
	return r.getOne(ctx, tenantID, "id = ?", planID, false)
}

func (r *PlanRepositoryImpl) GetByIDForUpdate(ctx context.Context, tenantID, planID uint) (*plan.Plan, error) {
	return r.getOne(ctx, tenantID, "id = ?", planID, true)
}

func (r *PlanRepositoryImpl) GetBySID(ctx context.Context, tenantID uint, sid string) (*plan.Plan, error) {
	return r.getOne(ctx, tenantID, "sid = ?", sid, false)
}

func (r *PlanRepositoryImpl) getOne(ctx context.Context, tenantID uint, cond string, arg interface{}, forUpdate bool) (*plan.Plan, error) {
	var model models.PlanModel

	query := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScoped(tenantID), db.NotDeleted()).
		Where(cond, arg)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	if err := query.First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get plan", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return r.mapper.ToEntity(&model)
}

func (r *PlanRepositoryImpl) GetByIDs(ctx context.Context, tenantID uint, planIDs []uint) (map[uint]*plan.Plan, error) {
	if len(planIDs) == 0 {
		return map[uint]*plan.Plan{}, nil
	}

	var planModels []*models.PlanModel
	// Soft-deleted plans are intentionally included here: live subscriptions
	// block deletion, but analytics over historical data may still reference
	// a plan deleted after its last subscriber canceled.
	if err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScoped(tenantID)).
		Where("id IN ?", planIDs).
		Find(&planModels).Error; err != nil {
		r.logger.Errorw("failed to get plans by IDs", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to get plans: %w", err)
	}

	result := make(map[uint]*plan.Plan, len(planModels))
	for _, model := range planModels {
		entity, err := r.mapper.ToEntity(model)
		if err != nil {
			return nil, err
		}
		result[entity.ID()] = entity
	}
	return result, nil
}

func (r *PlanRepositoryImpl) ListActive(ctx context.Context, tenantID uint) ([]*plan.Plan, error) {
	var planModels []*models.PlanModel

	if err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.TenantScoped(tenantID), db.NotDeleted()).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&planModels).Error; err != nil {
		r.logger.Errorw("failed to list active plans", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	return r.mapper.ToEntities(planModels)
}

func (r *PlanRepositoryImpl) Update(ctx context.Context, planEntity *plan.Plan) error {
	model, err := r.mapper.ToModel(planEntity)
	if err != nil {
		return fmt.Errorf("failed to map plan entity: %w", err)
	}

	// The aggregate bumped its version in memory; the row must still hold the
	// previous one or someone else won the write.
	loadedVersion := model.Version - 1

	result := db.GetTxFromContext(ctx, r.db).Model(&models.PlanModel{}).
		Where("id = ? AND version = ?", model.ID, loadedVersion).
		Updates(map[string]interface{}{
			"name":           model.Name,
			"name_slot":      model.NameSlot,
			"description":    model.Description,
			"price":          model.Price,
			"billing_cycle":  model.BillingCycle,
			"active":         model.Active,
			"feature_limits": model.FeatureLimits,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		if errors.IsDuplicateError(result.Error) {
			return plan.ErrDuplicatePlanName
		}
		r.logger.Errorw("failed to update plan", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update plan: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return errors.NewConcurrentModificationError("plan was modified concurrently")
	}

	r.logger.Infow("plan updated", "id", model.ID, "version", model.Version)
	return nil
}

func (r *PlanRepositoryImpl) SoftDelete(ctx context.Context, planEntity *plan.Plan) error {
	model, err := r.mapper.ToModel(planEntity)
	if err != nil {
		return fmt.Errorf("failed to map plan entity: %w", err)
	}

	loadedVersion := model.Version - 1

	result := db.GetTxFromContext(ctx, r.db).Model(&models.PlanModel{}).
		Where("id = ? AND version = ? AND deleted_at IS NULL", model.ID, loadedVersion).
		Updates(map[string]interface{}{
			"name_slot":  nil,
			"active":     false,
			"deleted_at": model.DeletedAt,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to soft-delete plan", "id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to delete plan: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return errors.NewConcurrentModificationError("plan was modified concurrently")
	}

	r.logger.Infow("plan soft-deleted", "id", model.ID, "tenant_id", model.TenantID)
	return nil
}
