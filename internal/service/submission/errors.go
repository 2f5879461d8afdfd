package submission

import (
	"errors"
	"fmt"
)

// Common sentinel errors for the submission service. Callers check these
// with errors.Is; the API layer maps them to HTTP status codes.
var (
	// ErrNotSubmittable indicates the material's type does not accept
	// answer submissions.
	ErrNotSubmittable = errors.New("material does not accept submissions")

	// ErrNoAnswers indicates a submission carried no answers at all.
	ErrNoAnswers = errors.New("submission contains no answers")
)

// Error wraps errors from the submission service with operation context.
type Error struct {
	// Operation is the operation that failed (e.g., "process_submission")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a new submission service error
func newError(operation, message string, err error) *Error {
	return &Error{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
