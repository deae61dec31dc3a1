// Package apperr defines the error kinds surfaced to the UI.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNetwork          = errors.New("network failure")
	ErrDataCorruption   = errors.New("data corruption")
)

// HTTPStatus maps an error to the status code the API responds with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the single message shown next to the retry action.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "We couldn't find what you were looking for."
	case errors.Is(err, ErrValidation):
		return "We couldn't grade this submission. Please try again."
	case errors.Is(err, ErrPermissionDenied):
		return "Permission is required to continue."
	case errors.Is(err, ErrNetwork):
		return "Network problem. Check your connection and try again."
	default:
		return "Something went wrong. Please try again."
	}
}
