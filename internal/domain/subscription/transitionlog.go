package subscription

import (
	"fmt"
	"time"
)

// Transition is one append-only audit ledger entry. Every status change on a
// subscription is paired 1:1 with exactly one Transition; entries are never
// updated or deleted. FromStatus is nil only for the initial creation entry,
// ActorID is nil for system-initiated transitions.
type Transition struct {
	transitionID   uint
	subscriptionID uint
	fromStatus     *Status
	toStatus       Status
	reason         string
	actorID        *uint
	createdAt      time.Time
}

// NewTransition builds a ledger entry for a subscription state change.
func NewTransition(subscriptionID uint, from *Status, to Status, reason string, actorID *uint) (*Transition, error) {
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if !ValidStatuses[to] {
		return nil, fmt.Errorf("invalid target status: %s", to)
	}
	if from != nil && !ValidStatuses[*from] {
		return nil, fmt.Errorf("invalid source status: %s", *from)
	}

	return &Transition{
		subscriptionID: subscriptionID,
		fromStatus:     from,
		toStatus:       to,
		reason:         reason,
		actorID:        actorID,
		createdAt:      time.Now().UTC(),
	}, nil
}

// ReconstructTransition rebuilds a ledger entry from persistence.
func ReconstructTransition(transitionID, subscriptionID uint, from *Status, to Status, reason string, actorID *uint, createdAt time.Time) (*Transition, error) {
	if transitionID == 0 {
		return nil, fmt.Errorf("transition ID cannot be zero")
	}
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}

	return &Transition{
		transitionID:   transitionID,
		subscriptionID: subscriptionID,
		fromStatus:     from,
		toStatus:       to,
		reason:         reason,
		actorID:        actorID,
		createdAt:      createdAt,
	}, nil
}

func (t *Transition) ID() uint             { return t.transitionID }
func (t *Transition) SubscriptionID() uint { return t.subscriptionID }
func (t *Transition) FromStatus() *Status  { return t.fromStatus }
func (t *Transition) ToStatus() Status     { return t.toStatus }
func (t *Transition) Reason() string       { return t.reason }
func (t *Transition) ActorID() *uint       { return t.actorID }
func (t *Transition) CreatedAt() time.Time { return t.createdAt }

// IsInitial reports whether this entry records the subscription's creation.
func (t *Transition) IsInitial() bool {
	return t.fromStatus == nil
}

// SetID sets the transition ID (only for persistence layer use).
func (t *Transition) SetID(transitionID uint) error {
	if t.transitionID != 0 {
		return fmt.Errorf("transition ID is already set")
	}
	if transitionID == 0 {
		return fmt.Errorf("transition ID cannot be zero")
	}
	t.transitionID = transitionID
	return nil
}
