package subscription

// Status is a subscription lifecycle state.
type Status string

const (
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
)

var ValidStatuses = map[Status]bool{
	StatusActive:   true,
	StatusPastDue:  true,
	StatusCanceled: true,
}

// transitions is the legal transition table. A pair absent from the table is
// illegal, which also forbids same-state transitions.
var transitions = map[Status][]Status{
	StatusActive:   {StatusPastDue, StatusCanceled},
	StatusPastDue:  {StatusActive, StatusCanceled},
	StatusCanceled: {},
}

func (s Status) String() string {
	return string(s)
}

// IsLive reports whether the subscription still occupies the user's single
// live slot for its tenant.
func (s Status) IsLive() bool {
	return s == StatusActive || s == StatusPastDue
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s Status) IsTerminal() bool {
	return ValidStatuses[s] && len(transitions[s]) == 0
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ValidateTransition rejects any (from, to) pair outside the transition table.
func ValidateTransition(from, to Status) error {
	if !ValidStatuses[from] || !ValidStatuses[to] {
		return ErrInvalidTransition(from, to)
	}
	if !from.CanTransitionTo(to) {
		return ErrInvalidTransition(from, to)
	}
	return nil
}
