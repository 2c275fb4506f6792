// Package apperr defines the error taxonomy shared by every handler.
// Sentinel values allow repositories to report a failure class without
// knowing anything about HTTP; the handler layer translates them into a
// status code and the uniform {success:false, error:{message, code}}
// envelope.  Driver errors never reach clients: they are logged server-side
// and surfaced as ErrInternal.
package apperr

import (
	"errors"
	"net/http"
)

// ErrValidation indicates missing or malformed request fields (HTTP 400).
var ErrValidation = errors.New("validation failed")

// ErrUnauthorized indicates a missing, invalid or expired bearer token
// (HTTP 401).  Callers cannot distinguish a bad token from an expired one.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates the principal's role does not permit the operation
// (HTTP 403).
var ErrForbidden = errors.New("forbidden")

// ErrNotFound indicates no matching row (HTTP 404).
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a duplicate unique key or conflicting state
// (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrInternal indicates a database or downstream failure (HTTP 500).  The
// client message is always opaque.
var ErrInternal = errors.New("internal error")

// Code returns the machine-readable code for an error class.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal_error"
	}
}

// Status maps an error class to its HTTP status code.
func Status(err error) int {
	switch {
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
