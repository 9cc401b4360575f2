/*
errors.go - Centralized error types for the billing engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP statuses.

ERROR CATEGORIES:
  1. Validation failures - Bad plan parameters, non-positive penalties
  2. Schedule conflicts - An installment lands on an occupied month
  3. Not-found errors - Missing clients or charges

USAGE:
  Callers classify with errors.Is / errors.As:

    var conflict *billing.ScheduleConflictError
    if errors.As(err, &conflict) {
        // conflict.Month, conflict.SuggestedStart
    }
*/
package billing

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for invalid caller input. No partial state
	// is ever created before a validation failure is reported.
	ErrValidation = errors.New("validation failed")

	// ErrScheduleConflict is returned when installment generation would
	// collide with an existing unpaid charge. Generation aborts entirely.
	ErrScheduleConflict = errors.New("schedule conflict")

	// ErrInvalidPeriod is returned for a reporting window whose end
	// precedes its start.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrClientNotFound is returned when a referenced client doesn't exist.
	ErrClientNotFound = errors.New("client not found")

	// ErrChargeNotFound is returned when a referenced charge doesn't exist.
	ErrChargeNotFound = errors.New("charge not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports which input field was rejected and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ScheduleConflictError reports the first month a planned installment would
// collide with an existing unpaid charge, plus (when one exists within a
// 24-month search) a conflict-free alternative start date.
type ScheduleConflictError struct {
	Month          DateKey
	SuggestedStart *time.Time
}

func (e *ScheduleConflictError) Error() string {
	msg := fmt.Sprintf("schedule conflict: %s already has an unpaid charge", e.Month)
	if e.SuggestedStart != nil {
		msg += fmt.Sprintf(" (suggested start: %s)", e.SuggestedStart.Format("2006-01-02"))
	}
	return msg
}

func (e *ScheduleConflictError) Unwrap() error { return ErrScheduleConflict }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrScheduleConflict) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClientNotFound) ||
		errors.Is(err, ErrChargeNotFound)
}
