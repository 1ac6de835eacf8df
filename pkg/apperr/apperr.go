// Package apperr defines the error kinds shared by the gateway, the database
// layer and the client-side action layer. Callers match them with errors.Is.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrValidation marks a missing or malformed field at a mutation boundary.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks a referenced id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSchemaDrift marks a storage schema missing an expected column.
	ErrSchemaDrift = errors.New("schema drift")
	// ErrTenantBoundary marks a read or write that would cross organizations.
	// It is a programming defect, never a recoverable condition.
	ErrTenantBoundary = errors.New("tenant boundary violation")
	// ErrConfiguration marks an action issued without an active organization.
	ErrConfiguration = errors.New("configuration error")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
)

// Validation wraps ErrValidation with a formatted message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound for an entity kind and id.
func NotFound(kind, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, id)
}

// SchemaDrift wraps ErrSchemaDrift for a table column and the underlying cause.
func SchemaDrift(table, column string, cause error) error {
	return fmt.Errorf("%w: %s.%s: %v", ErrSchemaDrift, table, column, cause)
}

// TenantBoundary wraps ErrTenantBoundary.
func TenantBoundary(kind, id, orgID string) error {
	return fmt.Errorf("%w: %s %q does not belong to organization %q", ErrTenantBoundary, kind, id, orgID)
}

// NoOrganization is returned by actions that need a current organization.
func NoOrganization(action string) error {
	return fmt.Errorf("%w: %s requires an active organization", ErrConfiguration, action)
}

func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func Unauthorized(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

// HTTPStatus maps an error onto the status code the REST layer answers with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus is the inverse of HTTPStatus, used by the gateway client.
func FromStatus(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrValidation
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		return nil
	}
}
