package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents the kind of failure surfaced to clients.
type Code string

const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeNotOwned      Code = "NOT_OWNED"
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeQuotaExceeded Code = "QUOTA_EXCEEDED"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeConflict      Code = "CONFLICT"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeRateLimited   Code = "RATE_LIMITED"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// StatusCodeMap maps Code to HTTP status code
var StatusCodeMap = map[Code]int{
	CodeNotFound:      http.StatusNotFound,
	CodeNotOwned:      http.StatusNotFound,
	CodeValidation:    http.StatusBadRequest,
	CodeQuotaExceeded: http.StatusTooManyRequests,
	CodeStateConflict: http.StatusConflict,
	CodeConflict:      http.StatusConflict,
	CodeUnauthorized:  http.StatusUnauthorized,
	CodeRateLimited:   http.StatusTooManyRequests,
	CodeInternal:      http.StatusInternalServerError,
}

// StatusCode returns the HTTP status code for this error code
func (c Code) StatusCode() int {
	if code, ok := StatusCodeMap[c]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Error is the application error returned by services. Err keeps the
// underlying cause for logs and is never serialized.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StatusCode() int {
	return e.Code.StatusCode()
}

// NotFoundOrForbidden covers absent, inactive and unreadable entities alike.
func NotFoundOrForbidden(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found"}
}

// NotOwned is returned by ownership-gated mutations that matched nothing.
func NotOwned(resource string) *Error {
	return &Error{Code: CodeNotOwned, Message: resource + " not found under your ownership"}
}

func Validation(field, message string) *Error {
	return &Error{Code: CodeValidation, Message: message, Field: field}
}

func QuotaExceeded(message string) *Error {
	return &Error{Code: CodeQuotaExceeded, Message: message}
}

func StateConflict(message string) *Error {
	return &Error{Code: CodeStateConflict, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

func RateLimited(message string) *Error {
	return &Error{Code: CodeRateLimited, Message: message}
}

// Internal wraps an unexpected failure. The cause is kept for logging only.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal server error", Err: err}
}

// CodeOf extracts the Code of err, or CodeInternal when err is not an *Error.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
