package apperrors

import (
	"errors"
	"fmt"
)

// Error categories. Every failure an engine operation can report belongs to
// exactly one of these; the HTTP layer maps categories to status codes and
// the transaction boundary rolls back on all of them alike.
var (
	// ErrValidationFailed covers malformed or out-of-range input, rejected
	// before any lock is taken.
	ErrValidationFailed = errors.New("validation failed")

	// ErrResourceNotFound covers unknown instances, activities, employees
	// and missing salary history, detected after a read.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrAllocationRejected covers business-rule rejections. Distinct from
	// infrastructure failure; the specific rule violated is always named.
	ErrAllocationRejected = errors.New("allocation rejected")

	// ErrDatabaseFailure covers infrastructure failures: connection loss,
	// lock-wait timeout, constraint violations surfaced late.
	ErrDatabaseFailure = errors.New("database failure")
)

// Not-found errors
var (
	ErrInstanceNotFound   = fmt.Errorf("%w: course instance not found", ErrResourceNotFound)
	ErrActivityNotFound   = fmt.Errorf("%w: teaching activity not found", ErrResourceNotFound)
	ErrEmployeeNotFound   = fmt.Errorf("%w: employee not found", ErrResourceNotFound)
	ErrNoSalaryVersion    = fmt.Errorf("%w: employee has no salary version on record", ErrResourceNotFound)
	ErrAllocationNotFound = fmt.Errorf("%w: allocation not found", ErrResourceNotFound)
)

// Business-rule rejections
var (
	ErrDuplicateAllocation     = fmt.Errorf("%w: employee is already allocated to this activity", ErrAllocationRejected)
	ErrAllocationLimitExceeded = fmt.Errorf("%w: per-period course instance limit exceeded", ErrAllocationRejected)
	ErrDerivedActivity         = fmt.Errorf("%w: derived activities cannot have planned hours", ErrAllocationRejected)
	ErrAllocationNotActive     = fmt.Errorf("%w: allocation is not active", ErrAllocationRejected)
	ErrPlannedActivityExists   = fmt.Errorf("%w: activity is already planned for this instance", ErrAllocationRejected)
	ErrActivityAlreadyExists   = fmt.Errorf("%w: activity with this name already exists", ErrAllocationRejected)
)

// CustomError carries additional context alongside a wrapped sentinel.
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap.
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError wrapping err.
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

// WithDetails attaches context details to the error.
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}
