package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrSubscriptionNotFound    = errors.New("subscription not found")
	ErrDuplicateSubscription   = errors.New("user already has a live subscription")
	ErrInvalidStatusTransition = errors.New("invalid state transition")
	ErrInvalidUpgrade          = errors.New("invalid upgrade")
	ErrConcurrentModification  = errors.New("subscription was modified concurrently")
)

// ErrInvalidTransition wraps ErrInvalidStatusTransition with the offending pair.
func ErrInvalidTransition(from, to Status) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}
