package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"cadence/internal/domain/plan"
	"cadence/internal/domain/subscription"
)

type FeatureLimitDTO struct {
	Type  string `json:"type"`
	Value int64  `json:"value"`
}

type PlanDTO struct {
	SID           string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Price         decimal.Decimal   `json:"price"`
	BillingCycle  string            `json:"billing_cycle"`
	Active        bool              `json:"active"`
	FeatureLimits []FeatureLimitDTO `json:"feature_limits"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func toPlanDTO(p *plan.Plan) PlanDTO {
	limits := make([]FeatureLimitDTO, 0, len(p.FeatureLimits()))
	for _, l := range p.FeatureLimits() {
		limits = append(limits, FeatureLimitDTO{Type: l.Type, Value: l.Value})
	}
	return PlanDTO{
		SID:           p.SID(),
		Name:          p.Name(),
		Description:   p.Description(),
		Price:         p.Price(),
		BillingCycle:  p.BillingCycle().String(),
		Active:        p.IsActive(),
		FeatureLimits: limits,
		CreatedAt:     p.CreatedAt(),
		UpdatedAt:     p.UpdatedAt(),
	}
}

func toPlanDTOs(plans []*plan.Plan) []PlanDTO {
	dtos := make([]PlanDTO, 0, len(plans))
	for _, p := range plans {
		dtos = append(dtos, toPlanDTO(p))
	}
	return dtos
}

type SubscriptionDTO struct {
	SID           string     `json:"id"`
	UserID        uint       `json:"user_id"`
	PlanID        uint       `json:"plan_id"`
	Status        string     `json:"status"`
	StartAt       time.Time  `json:"start_at"`
	NextBillingAt *time.Time `json:"next_billing_at"`
	CanceledAt    *time.Time `json:"canceled_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toSubscriptionDTO(s *subscription.Subscription) SubscriptionDTO {
	return SubscriptionDTO{
		SID:           s.SID(),
		UserID:        s.UserID(),
		PlanID:        s.PlanID(),
		Status:        s.Status().String(),
		StartAt:       s.StartAt(),
		NextBillingAt: s.NextBillingAt(),
		CanceledAt:    s.CanceledAt(),
		CreatedAt:     s.CreatedAt(),
		UpdatedAt:     s.UpdatedAt(),
	}
}

type TransitionDTO struct {
	FromStatus *string   `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Reason     string    `json:"reason"`
	ActorID    *uint     `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func toTransitionDTOs(entries []*subscription.Transition) []TransitionDTO {
	dtos := make([]TransitionDTO, 0, len(entries))
	for _, entry := range entries {
		var from *string
		if entry.FromStatus() != nil {
			value := entry.FromStatus().String()
			from = &value
		}
		dtos = append(dtos, TransitionDTO{
			FromStatus: from,
			ToStatus:   entry.ToStatus().String(),
			Reason:     entry.Reason(),
			ActorID:    entry.ActorID(),
			CreatedAt:  entry.CreatedAt(),
		})
	}
	return dtos
}
