package mappers

import (
	"fmt"

	"cadence/internal/domain/subscription"
	"cadence/internal/infrastructure/persistence/models"
)

type SubscriptionMapper interface {
	ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error)
	ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error)
	ToEntities(models []*models.SubscriptionModel) ([]*subscription.Subscription, error)
}

type SubscriptionMapperImpl struct{}

func NewSubscriptionMapper() SubscriptionMapper {
	return &SubscriptionMapperImpl{}
}

// ActiveSlotFor builds the unique live-slot key for a (tenant, user) pair.
func ActiveSlotFor(tenantID, userID uint) string {
	return fmt.Sprintf("t%d:u%d", tenantID, userID)
}

func (m *SubscriptionMapperImpl) ToEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	status := subscription.Status(model.Status)
	if !subscription.ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", model.Status)
	}

	entity, err := subscription.ReconstructSubscription(subscription.SubscriptionReconstructParams{
		ID:            model.ID,
		SID:           model.SID,
		UserID:        model.UserID,
		TenantID:      model.TenantID,
		PlanID:        model.PlanID,
		Status:        status,
		StartAt:       model.StartAt,
		NextBillingAt: model.NextBillingAt,
		CanceledAt:    model.CanceledAt,
		Version:       model.Version,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct subscription entity: %w", err)
	}

	return entity, nil
}

func (m *SubscriptionMapperImpl) ToModel(entity *subscription.Subscription) (*models.SubscriptionModel, error) {
	if entity == nil {
		return nil, nil
	}

	var activeSlot *string
	if entity.Status().IsLive() {
		slot := ActiveSlotFor(entity.TenantID(), entity.UserID())
		activeSlot = &slot
	}

	return &models.SubscriptionModel{
		ID:            entity.ID(),
		SID:           entity.SID(),
		UserID:        entity.UserID(),
		TenantID:      entity.TenantID(),
		PlanID:        entity.PlanID(),
		Status:        entity.Status().String(),
		ActiveSlot:    activeSlot,
		StartAt:       entity.StartAt(),
		NextBillingAt: entity.NextBillingAt(),
		CanceledAt:    entity.CanceledAt(),
		Version:       entity.Version(),
		CreatedAt:     entity.CreatedAt(),
		UpdatedAt:     entity.UpdatedAt(),
	}, nil
}

func (m *SubscriptionMapperImpl) ToEntities(subscriptionModels []*models.SubscriptionModel) ([]*subscription.Subscription, error) {
	entities := make([]*subscription.Subscription, 0, len(subscriptionModels))
	for _, model := range subscriptionModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
