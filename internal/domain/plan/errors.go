package plan

import "errors"

var (
	ErrPlanNotFound               = errors.New("plan not found")
	ErrDuplicatePlanName          = errors.New("duplicate plan name")
	ErrPlanHasActiveSubscriptions = errors.New("plan has active subscriptions")
	ErrInvalidPrice               = errors.New("invalid price")
	ErrInvalidBillingCycle        = errors.New("invalid billing cycle")
)
