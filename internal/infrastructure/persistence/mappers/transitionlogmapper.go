package mappers

import (
	"fmt"

	"cadence/internal/domain/subscription"
	"cadence/internal/infrastructure/persistence/models"
)

type TransitionLogMapper interface {
	ToEntity(model *models.TransitionLogModel) (*subscription.Transition, error)
	ToModel(entity *subscription.Transition) *models.TransitionLogModel
	ToEntities(models []*models.TransitionLogModel) ([]*subscription.Transition, error)
}

type TransitionLogMapperImpl struct{}

func NewTransitionLogMapper() TransitionLogMapper {
	return &TransitionLogMapperImpl{}
}

func (m *TransitionLogMapperImpl) ToEntity(model *models.TransitionLogModel) (*subscription.Transition, error) {
	if model == nil {
		return nil, nil
	}

	var from *subscription.Status
	if model.FromStatus != nil {
		status := subscription.Status(*model.FromStatus)
		from = &status
	}

	entity, err := subscription.ReconstructTransition(
		model.ID,
		model.SubscriptionID,
		from,
		subscription.Status(model.ToStatus),
		model.Reason,
		model.ActorID,
		model.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct transition entity: %w", err)
	}

	return entity, nil
}

func (m *TransitionLogMapperImpl) ToModel(entity *subscription.Transition) *models.TransitionLogModel {
	if entity == nil {
		return nil
	}

	var from *string
	if entity.FromStatus() != nil {
		status := entity.FromStatus().String()
		from = &status
	}

	return &models.TransitionLogModel{
		ID:             entity.ID(),
		SubscriptionID: entity.SubscriptionID(),
		FromStatus:     from,
		ToStatus:       entity.ToStatus().String(),
		Reason:         entity.Reason(),
		ActorID:        entity.ActorID(),
		CreatedAt:      entity.CreatedAt(),
	}
}

func (m *TransitionLogMapperImpl) ToEntities(logModels []*models.TransitionLogModel) ([]*subscription.Transition, error) {
	entities := make([]*subscription.Transition, 0, len(logModels))
	for _, model := range logModels {
		entity, err := m.ToEntity(model)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
