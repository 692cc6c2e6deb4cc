package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapValidation(t *testing.T) {
	err := WrapValidation([]string{"car is required", "customer is required"})

	assert.Equal(t, ErrCodeValidation, err.Code)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, []string{"car is required", "customer is required"}, Violations(err))
}

func TestWrapSettlementFailure(t *testing.T) {
	cause := errors.New("gateway timeout")
	err := WrapSettlementFailure("bk-1", cause)

	assert.True(t, errors.Is(err, ErrSettlementFailure))
	assert.True(t, errors.Is(err, cause))

	assert.True(t, errors.Is(WrapSettlementFailure("bk-1", nil), ErrSettlementFailure))
}

func TestWrapInconsistency(t *testing.T) {
	cause := errors.New("no rows updated")
	err := WrapInconsistency("car-1", cause)

	assert.True(t, errors.Is(err, ErrInconsistency))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "car-1")
}

func TestIllegalTransitionErrors(t *testing.T) {
	assert.True(t, errors.Is(WrapIllegalTransition("bk-1", "completed", "cancelled"), ErrIllegalTransition))
	assert.True(t, errors.Is(WrapUnpaidPenalty("bk-1", "198.00"), ErrIllegalTransition))
}

func TestViolations_NonValidationError(t *testing.T) {
	assert.Nil(t, Violations(WrapBookingNotFound("bk-1")))
}
