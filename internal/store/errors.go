package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors below.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of
	// a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or references a row that does not exist (foreign key
	// violation). Check the wrapped error for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails to
	// commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrMaterialNotFound indicates that the requested material does not exist.
	ErrMaterialNotFound = fmt.Errorf("%w: material", ErrNotFound)

	// ErrRelationshipNotFound indicates that the requested relationship does not exist.
	ErrRelationshipNotFound = fmt.Errorf("%w: relationship", ErrNotFound)

	// ErrProgramNotFound indicates that the requested training program does not exist.
	ErrProgramNotFound = fmt.Errorf("%w: training program", ErrNotFound)

	// ErrLearningPathNotFound indicates that the requested learning path does not exist.
	ErrLearningPathNotFound = fmt.Errorf("%w: learning path", ErrNotFound)

	// ErrSubmissionNotFound indicates that no history row exists for the
	// requested (user, material) pair.
	ErrSubmissionNotFound = fmt.Errorf("%w: submission", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific variants.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "material", "relationship")
	Operation string // The operation that failed (e.g., "create", "replace")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation,
// message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
