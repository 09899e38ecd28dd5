// Package apperr defines the typed outcomes returned by services and the
// HTTP status each one maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an AppError.
type Code string

const (
	CodeValidationFailed   Code = "VALIDATION_FAILED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeTooManyRequests    Code = "TOO_MANY_REQUESTS"
	CodeDatabaseError      Code = "DATABASE_ERROR"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// AppError is a domain error carrying a code, a user-facing message and an
// optional cause for logs.
type AppError struct {
	Code    Code
	Message string
	Details string
	Cause   error
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Details != "" {
		msg += " (" + e.Details + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error { return e.Cause }

// Is matches any AppError with the same code, so callers can write
// errors.Is(err, apperr.ErrNotFound).
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// StatusCode maps the code to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeValidationFailed:
		return http.StatusUnprocessableEntity
	case CodeInvalidCredentials, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation         = &AppError{Code: CodeValidationFailed}
	ErrInvalidCredentials = &AppError{Code: CodeInvalidCredentials}
	ErrUnauthorized       = &AppError{Code: CodeUnauthorized}
	ErrForbidden          = &AppError{Code: CodeForbidden}
	ErrNotFound           = &AppError{Code: CodeNotFound}
	ErrDatabase           = &AppError{Code: CodeDatabaseError}
)

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Validation(message string) *AppError {
	return New(CodeValidationFailed, message)
}

func InvalidCredentials() *AppError {
	return New(CodeInvalidCredentials, "Login unsuccessful. Check email and password.")
}

func Unauthorized() *AppError {
	return New(CodeUnauthorized, "Please log in to access this page.")
}

func Forbidden(message string) *AppError {
	if message == "" {
		message = "You do not have permission to do that."
	}
	return New(CodeForbidden, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found")
}

func TooManyRequests(details string) *AppError {
	return &AppError{Code: CodeTooManyRequests, Message: "Too many requests. Please try again later.", Details: details}
}

// Database wraps a storage failure. The cause is kept for logging only.
func Database(op string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: "Something went wrong. Please try again.", Details: op, Cause: cause}
}

// From returns err as an AppError, wrapping unknown errors as internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: CodeInternal, Message: "Something went wrong. Please try again.", Cause: err}
}
