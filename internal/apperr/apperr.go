// Package apperr defines the typed domain errors shared by every service.
// Each error carries the HTTP status the boundary layer should answer with,
// so handlers translate failures uniformly instead of switching on sentinel
// errors per package.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status  int
	Code    string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is lets errors.Is match two apperr values by code, so tests and callers can
// compare against a constructor result without caring about the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func NotFound(resource string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Message: resource + " not found"}
}

func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Code: "conflict", Message: message}
}

func InvalidInput(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "invalid_input", Message: message}
}

func InsufficientStock(productName string, available, requested int) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    "insufficient_stock",
		Message: fmt.Sprintf("insufficient stock for %q: %d available, %d requested", productName, available, requested),
	}
}

func ProductUnavailable(productName string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    "product_unavailable",
		Message: fmt.Sprintf("product %q is not available", productName),
	}
}

func InvalidTransition(from, to string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Code:    "invalid_transition",
		Message: fmt.Sprintf("cannot transition order from %q to %q", from, to),
	}
}

func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "unauthorized", Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Code: "forbidden", Message: message}
}

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "internal", Message: "internal server error", cause: err}
}

// StatusFor maps any error to the HTTP status the boundary should report.
// Unexpected errors map to 500.
func StatusFor(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// CodeFor returns the machine-readable code for an error, or "internal" for
// anything that is not an *Error.
func CodeFor(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return "internal"
}
