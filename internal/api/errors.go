// Package api provides HTTP handlers for the API.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/phrazzld/kanban-api/internal/service"
	"github.com/phrazzld/kanban-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErr *domain.ValidationError

	switch {
	// Validation errors
	case errors.Is(err, service.ErrInvalidPosition),
		errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Cross-project references
	case errors.Is(err, service.ErrProjectMismatch):
		return http.StatusUnprocessableEntity

	// User-correctable conflicts
	case errors.Is(err, service.ErrColumnFull),
		errors.Is(err, service.ErrHasSubIssues):
		return http.StatusConflict

	// Authorization verdicts propagated from upstream
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden

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

	switch {
	case errors.Is(err, service.ErrInvalidPosition):
		return "Position must be non-negative"

	case errors.Is(err, store.ErrIssueNotFound):
		return "Issue not found"

	case errors.Is(err, store.ErrColumnNotFound):
		return "Column not found"

	case errors.Is(err, store.ErrTemplateNotFound):
		return "Template not found"

	case store.IsNotFoundError(err):
		return "Entity not found"

	case errors.Is(err, service.ErrProjectMismatch):
		return "Issue and columns must belong to the same project"

	case errors.Is(err, service.ErrColumnFull):
		return "Column is at its WIP limit"

	case errors.Is(err, service.ErrHasSubIssues):
		return "Issue has sub-issues and cannot be deleted"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Operation not permitted"

	default:
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return "Invalid request data"
		}
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a client-safe message
// naming the offending field but none of the struct internals.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("Invalid %s: this field is required", fe.Field())
		case "min":
			return fmt.Sprintf("Invalid %s: value is below the minimum", fe.Field())
		case "max":
			return fmt.Sprintf("Invalid %s: value exceeds the maximum", fe.Field())
		case "uuid":
			return fmt.Sprintf("Invalid %s: must be a valid UUID", fe.Field())
		case "oneof":
			return fmt.Sprintf("Invalid %s: value is not one of the allowed options", fe.Field())
		default:
			return fmt.Sprintf("Invalid %s", fe.Field())
		}
	}
	return "Validation error"
}
