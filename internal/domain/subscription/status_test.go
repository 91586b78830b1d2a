package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTransition_LegalPairs(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusActive, StatusPastDue},
		{StatusActive, StatusCanceled},
		{StatusPastDue, StatusActive},
		{StatusPastDue, StatusCanceled},
	}

	for _, pair := range legal {
		t.Run(string(pair.from)+"_to_"+string(pair.to), func(t *testing.T) {
			assert.NoError(t, ValidateTransition(pair.from, pair.to))
		})
	}
}

func TestValidateTransition_RejectsEveryPairOutsideTheTable(t *testing.T) {
	all := []Status{StatusActive, StatusPastDue, StatusCanceled}

	for _, from := range all {
		for _, to := range all {
			if from.CanTransitionTo(to) {
				continue
			}
			t.Run(string(from)+"_to_"+string(to), func(t *testing.T) {
				err := ValidateTransition(from, to)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidStatusTransition)
			})
		}
	}
}

func TestValidateTransition_SameStateIsIllegal(t *testing.T) {
	for _, s := range []Status{StatusActive, StatusPastDue, StatusCanceled} {
		assert.ErrorIs(t, ValidateTransition(s, s), ErrInvalidStatusTransition)
	}
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	assert.ErrorIs(t, ValidateTransition(Status("paused"), StatusActive), ErrInvalidStatusTransition)
	assert.ErrorIs(t, ValidateTransition(StatusActive, Status("paused")), ErrInvalidStatusTransition)
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCanceled.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.False(t, StatusPastDue.IsTerminal())
	assert.False(t, Status("unknown").IsTerminal())
}

func TestStatus_CanceledHasNoOutgoingTransitions(t *testing.T) {
	for _, to := range []Status{StatusActive, StatusPastDue, StatusCanceled} {
		assert.False(t, StatusCanceled.CanTransitionTo(to))
	}
}

func TestStatus_IsLive(t *testing.T) {
	assert.True(t, StatusActive.IsLive())
	assert.True(t, StatusPastDue.IsLive())
	assert.False(t, StatusCanceled.IsLive())
}
