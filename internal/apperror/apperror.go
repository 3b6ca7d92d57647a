// Package apperror defines the error taxonomy rendered in every failure envelope.
package apperror

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes exposed to API consumers.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// Error is an error that knows its HTTP status and public code.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetails returns a copy of e carrying the given details.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// New creates an Error.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Validation reports a rejected request body or field (422).
func Validation(message string) *Error {
	return New(fiber.StatusUnprocessableEntity, CodeValidation, message)
}

// Unauthorized reports missing or invalid credentials (401).
func Unauthorized(message string) *Error {
	return New(fiber.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden reports an authenticated caller lacking the required role (403).
func Forbidden(message string) *Error {
	return New(fiber.StatusForbidden, CodeForbidden, message)
}

// NotFound reports a missing resource (404).
func NotFound(message string) *Error {
	return New(fiber.StatusNotFound, CodeNotFound, message)
}

// Conflict reports a write that clashes with existing data (409).
func Conflict(message string) *Error {
	return New(fiber.StatusConflict, CodeConflict, message)
}

// Internal is the generic 500. Its message never carries the cause.
func Internal() *Error {
	return New(fiber.StatusInternalServerError, CodeInternal, "Internal Server Error")
}

// As reports whether err is (or wraps) an *Error and returns it.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
