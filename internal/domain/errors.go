// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidMaterialType is returned when a material type is not one of
	// the closed set of known discriminants.
	ErrInvalidMaterialType = errors.New("invalid material type")

	// ErrInvalidQuestionType is returned when a question type string cannot
	// be normalized to one of the five storage values.
	ErrInvalidQuestionType = errors.New("invalid question type")

	// ErrPayloadMismatch is returned when a material's payload does not match
	// its type discriminant.
	ErrPayloadMismatch = errors.New("payload does not match material type")

	// ErrInvalidSubcomponentKind is returned when a subcomponent kind tag is
	// not one of the known kinds.
	ErrInvalidSubcomponentKind = errors.New("invalid subcomponent kind")

	// ErrMaterialNameEmpty is returned when a material's name is empty.
	ErrMaterialNameEmpty = errors.New("material name cannot be empty")

	// ErrInvalidSourceRef is returned when a relationship source reference is
	// incomplete (missing material id, or a subcomponent ref without a kind).
	ErrInvalidSourceRef = errors.New("invalid relationship source reference")

	// ErrInvalidTarget is returned when a relationship target material id is
	// missing.
	ErrInvalidTarget = errors.New("relationship target material id cannot be empty")

	// ErrEmptyUserID is returned when a history or score row carries no user id.
	ErrEmptyUserID = errors.New("user ID cannot be empty")

	// ErrEmptyMaterialID is returned when a material id is missing where one
	// is required.
	ErrEmptyMaterialID = errors.New("material ID cannot be empty")
)
