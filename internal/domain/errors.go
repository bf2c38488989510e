package domain

import "fmt"

// ValidationError reports missing or invalid input. It is always detected
// before any write.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validationf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an absent referenced entity.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// ConflictError reports a uniqueness or state conflict, such as a duplicate
// vehicle number or a second active job card for the same vehicle.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflictf(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ComputationError reports a failure while generating a bill or allocating a
// bill number.
type ComputationError struct {
	Message string
	Err     error
}

func (e *ComputationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ComputationError) Unwrap() error { return e.Err }

func Computation(message string, err error) error {
	return &ComputationError{Message: message, Err: err}
}
