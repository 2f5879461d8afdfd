package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/traincore/traincore-api/internal/domain"
	"github.com/traincore/traincore-api/internal/service/auth"
	"github.com/traincore/traincore-api/internal/service/content"
	"github.com/traincore/traincore-api/internal/service/submission"
	"github.com/traincore/traincore-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErr *content.ValidationError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Structural and shape validation errors
	case errors.As(err, &validationErr),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidMaterialType),
		errors.Is(err, domain.ErrInvalidQuestionType),
		errors.Is(err, domain.ErrInvalidSubcomponentKind),
		errors.Is(err, domain.ErrInvalidSourceRef),
		errors.Is(err, domain.ErrInvalidTarget),
		errors.Is(err, domain.ErrMaterialNameEmpty),
		errors.Is(err, domain.ErrPayloadMismatch),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, submission.ErrNotSubmittable),
		errors.Is(err, submission.ErrNoAnswers):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *content.ValidationError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	// Not found errors
	case errors.Is(err, store.ErrMaterialNotFound):
		return "Material not found"

	case errors.Is(err, store.ErrRelationshipNotFound):
		return "Relationship not found"

	case errors.Is(err, store.ErrProgramNotFound):
		return "Training program not found"

	case errors.Is(err, store.ErrLearningPathNotFound):
		return "Learning path not found"

	case errors.Is(err, store.ErrSubmissionNotFound):
		return "No submission found"

	case store.IsNotFoundError(err):
		return "Resource not found"

	// Validation errors
	case errors.As(err, &validationErr):
		return "Material has structural violations"

	case errors.Is(err, domain.ErrInvalidMaterialType):
		return "Unknown material type"

	case errors.Is(err, domain.ErrInvalidQuestionType):
		return "Unknown question type"

	case errors.Is(err, domain.ErrInvalidSubcomponentKind):
		return "Unknown subcomponent kind"

	case errors.Is(err, domain.ErrInvalidSourceRef):
		return "Invalid relationship source reference"

	case errors.Is(err, domain.ErrInvalidTarget):
		return "Invalid relationship target"

	case errors.Is(err, domain.ErrMaterialNameEmpty):
		return "Material name is required"

	case errors.Is(err, domain.ErrPayloadMismatch):
		return "Payload does not match material type"

	case errors.Is(err, submission.ErrNotSubmittable):
		return "Material does not accept submissions"

	case errors.Is(err, submission.ErrNoAnswers):
		return "Submission contains no answers"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example: "Key: 'CreateMaterialRequest.Name' Error:Field validation
		// for 'Name' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "gte":
		return "value too small"
	case "lte":
		return "value too large"
	default:
		return "validation failed"
	}
}
