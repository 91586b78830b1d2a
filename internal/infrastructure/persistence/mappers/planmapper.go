package mappers

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"cadence/internal/domain/plan"
	"cadence/internal/infrastructure/persistence/models"
)

type PlanMapper interface {
	ToEntity(model *models.PlanModel) (*plan.Plan, error)
	ToModel(entity *plan.Plan) (*models.PlanModel, error)
	ToEntities(models []*models.PlanModel) ([]*plan.Plan, error)
}

type PlanMapperImpl struct{}

func NewPlanMapper() PlanMapper {
	return &PlanMapperImpl{}
}

// NameSlotFor builds the unique live-name key for a tenant's plan name.
func NameSlotFor(tenantID uint, name string) string {
	return fmt.Sprintf("t%d:%s", tenantID, strings.ToLower(name))
}

func (m *PlanMapperImpl) ToEntity(model *models.PlanModel) (*plan.Plan, error) {
	if model == nil {
		return nil, nil
	}

	cycle := plan.BillingCycle(model.BillingCycle)
	if !cycle.IsValid() {
		return nil, fmt.Errorf("invalid billing cycle: %s", model.BillingCycle)
	}

	var limits []plan.FeatureLimit
	if len(model.FeatureLimits) > 0 {
		if err := json.Unmarshal(model.FeatureLimits, &limits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal feature limits: %w", err)
		}
	}

	entity, err := plan.ReconstructPlan(plan.PlanReconstructParams{
		ID:            model.ID,
		SID:           model.SID,
		TenantID:      model.TenantID,
		Name:          model.Name,
		Description:   model.Description,
		Price:         model.Price,
		BillingCycle:  cycle,
		Active:        model.Active,
		FeatureLimits: limits,
		DeletedAt:     model.DeletedAt,
		Version:       model.Version,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct plan entity: %w", err)
	}

	return entity, nil
}

func (m *PlanMapperImpl) ToModel(entity *plan.Plan) (*models.PlanModel, error) {
	if entity == nil {
		return nil, nil
	}

	var limitsJSON datatypes.JSON
	if limits := entity.FeatureLimits(); len(limits) > 0 {
		data, err := json.Marshal(limits)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal feature limits: %w", err)
		}
		limitsJSON = data
	}

	var nameSlot *string
	if !entity.IsDeleted() {
		slot := NameSlotFor(entity.TenantID(), entity.Name())
		nameSlot = &slot
	}

	return &models.PlanModel{
		ID:            entity.ID(),
		SID:           entity.SID(),
		TenantID:      entity.TenantID(),
		Name:          entity.Name(),
		NameSlot:      nameSlot,
		Description:   entity.Description(),
		Price:         entity.Price(),
		BillingCycle:  entity.BillingCycle().String(),
		Active:        entity.IsActive(),
		FeatureLimits: limitsJSON,
		Version:       entity.Version(),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
		DeletedAt:     entity.DeletedAt(),
	}, nil
}

func (m *PlanMapperImpl) ToEntities(planModels []*models.PlanModel) ([]*plan.Plan, error) {
	entities := make([]*plan.Plan, 0, len(planModels))
	for _, model := range planModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
