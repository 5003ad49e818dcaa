package errs

import (
	"fmt"
	"strings"
)

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

// ValidationError is raised before any network call when a required
// identifier or field is missing or out of range.
type ValidationError struct {
	ErrorMessage
	Field string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
		Field:        field,
	}
}

// Required is shorthand for the common "x is required" validation failure.
func Required(field string) *ValidationError {
	return NewValidationError(field, field+" is required")
}

// PropagationPartialFailureError reports a currency fan-out where at least one
// document update was rejected. Failed holds "<collection>/<id>" paths.
type PropagationPartialFailureError struct {
	ErrorMessage
	Total  int
	Failed []string
	Causes []error
}

func NewPropagationPartialFailureError(total int, failed []string, causes []error) *PropagationPartialFailureError {
	return &PropagationPartialFailureError{
		ErrorMessage: ErrorMessage{
			Message: fmt.Sprintf("currency propagation failed for %d of %d documents: %s",
				len(failed), total, strings.Join(failed, ", ")),
		},
		Total:  total,
		Failed: failed,
		Causes: causes,
	}
}

func (e *PropagationPartialFailureError) Unwrap() []error { return e.Causes }
