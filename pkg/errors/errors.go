package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors
var (
	ErrValidation          = errors.New("booking validation failed")
	ErrIllegalTransition   = errors.New("illegal booking status transition")
	ErrSettlementFailure   = errors.New("payment settlement failed")
	ErrInconsistency       = errors.New("booking and car status diverged")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrCarNotFound         = errors.New("car not found")
	ErrCarUnavailable      = errors.New("car is not available for the requested dates")
	ErrInvalidRefundAmount = errors.New("invalid refund amount")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError carries every rule a booking draft violated.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Error codes
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeIllegalTransition   = "ILLEGAL_TRANSITION"
	ErrCodeSettlementFailure   = "SETTLEMENT_FAILURE"
	ErrCodeInconsistency       = "INCONSISTENCY"
	ErrCodeBookingNotFound     = "BOOKING_NOT_FOUND"
	ErrCodeCarNotFound         = "CAR_NOT_FOUND"
	ErrCodeCarUnavailable      = "CAR_UNAVAILABLE"
	ErrCodeInvalidRefundAmount = "INVALID_REFUND_AMOUNT"
	ErrCodeDatabaseError       = "DATABASE_ERROR"
	ErrCodeCacheError          = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapValidation(violations []string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("%d booking rule(s) violated", len(violations)),
		&ValidationError{Violations: violations},
	)
}

func WrapIllegalTransition(bookingID, from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeIllegalTransition,
		fmt.Sprintf("Booking %s cannot move from %s to %s", bookingID, from, to),
		ErrIllegalTransition,
	)
}

func WrapUnpaidPenalty(bookingID, total string) *BusinessError {
	return NewBusinessError(
		ErrCodeIllegalTransition,
		fmt.Sprintf("Booking %s has an unpaid late-return penalty of %s; confirm payment before completing the return", bookingID, total),
		ErrIllegalTransition,
	)
}

func WrapSettlementFailure(reference string, err error) *BusinessError {
	if err == nil {
		err = ErrSettlementFailure
	} else {
		err = fmt.Errorf("%w: %w", ErrSettlementFailure, err)
	}
	return NewBusinessError(
		ErrCodeSettlementFailure,
		fmt.Sprintf("Payment for %s was not completed; no booking was created", reference),
		err,
	)
}

func WrapInconsistency(carID string, err error) *BusinessError {
	if err == nil {
		err = ErrInconsistency
	} else {
		err = fmt.Errorf("%w: %w", ErrInconsistency, err)
	}
	return NewBusinessError(
		ErrCodeInconsistency,
		fmt.Sprintf("Status of car %s could not be updated; the booking change was rolled back", carID),
		err,
	)
}

func WrapBookingNotFound(bookingID string) *BusinessError {
	return NewBusinessError(
		ErrCodeBookingNotFound,
		fmt.Sprintf("Booking with ID %s not found", bookingID),
		ErrBookingNotFound,
	)
}

func WrapCarNotFound(carID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCarNotFound,
		fmt.Sprintf("Car with ID %s not found", carID),
		ErrCarNotFound,
	)
}

func WrapCarUnavailable(carID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCarUnavailable,
		fmt.Sprintf("Car %s is not available for the requested dates", carID),
		ErrCarUnavailable,
	)
}

func WrapInvalidRefundAmount(amount, maximum string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRefundAmount,
		fmt.Sprintf("Refund amount %s must be between 0 and the amount paid %s", amount, maximum),
		ErrInvalidRefundAmount,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

// Violations extracts the rule list from a validation failure.
func Violations(err error) []string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Violations
	}
	return nil
}
