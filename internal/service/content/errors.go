package content

import (
	"fmt"
	"strings"

	"github.com/traincore/traincore-api/internal/domain"
)

// ValidationError carries the full set of structural violations found in a
// material. The API layer serializes the violations so authors can fix them
// in one pass.
type ValidationError struct {
	Violations []domain.Violation
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("%s: %s", v.Ref, v.Message))
	}
	return "material has structural violations: " + strings.Join(msgs, "; ")
}

// Error wraps errors from the content service with operation context.
type Error struct {
	// Operation is the operation that failed (e.g., "create_material")
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

// newError creates a new content service error
func newError(operation, message string, err error) *Error {
	return &Error{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
