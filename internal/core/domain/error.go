package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInternal = errors.New("internal error")

	// * Data errors.
	ErrDataNotFound        = errors.New("data not found")
	ErrConflictingData     = errors.New("data conflicts with existing data in unique column")
	ErrConcurrencyConflict = errors.New("data was modified concurrently")

	// * Communication errors.
	ErrBadRequest = errors.New("error parsing request")

	// * Authority errors.
	ErrTokenCreation              = errors.New("error creating token")
	ErrExpiredToken               = errors.New("access token has expired")
	ErrInvalidToken               = errors.New("access token is invalid")
	ErrEmptyAuthorizationHeader   = errors.New("authorization header is not provided")
	ErrInvalidAuthorizationHeader = errors.New("authorization header format is invalid")
	ErrInvalidAuthorizationType   = errors.New("authorization type is not supported")
	ErrUnauthorized               = errors.New("user is unauthorized to access the resource")
	ErrForbidden                  = errors.New("user is forbidden to access the resource")

	// * Business errors.
	ErrValidation             = errors.New("validation error")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrOrderLocked            = errors.New("order is locked for changes")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrCurrencyMismatch       = errors.New("currency mismatch")
	ErrRefundExceedsPayment   = errors.New("refund exceeds payment amount")
	ErrOrderAlreadyPaid       = errors.New("order already has a settled payment")
)

// TransitionError reports an operation that is not allowed in the current status.
type TransitionError struct {
	Entity string
	Action string
	From   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s %s in status %s", ErrInvalidStateTransition, e.Action, e.Entity, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Messages flattens err (including errors.Join trees) into human readable messages.
func Messages(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, Messages(e)...)
		}
		return out
	}
	return []string{err.Error()}
}
