package errorutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared with API consumers.
const (
	CodeValidation                = "VALIDATION_FAILED"
	CodeNotFound                  = "NOT_FOUND"
	CodeInvalidTransition         = "INVALID_TRANSITION"
	CodeClassificationUnavailable = "CLASSIFICATION_UNAVAILABLE"
	CodeClassificationTimeout     = "CLASSIFICATION_TIMEOUT"
	CodeUnauthorized              = "UNAUTHORIZED"
	CodeForbidden                 = "FORBIDDEN"
	CodeTimeout                   = "REQUEST_TIMEOUT"
	CodeInternal                  = "INTERNAL_ERROR"
)

// FieldError points at one invalid input field.
type FieldError struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Fields     []FieldError
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller may retry the same request unchanged.
func (e *DomainError) Retryable() bool {
	return e.Code == CodeClassificationUnavailable || e.Code == CodeClassificationTimeout
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewValidationError reports malformed input with per-field messages.
func NewValidationError(message string, fields []FieldError) error {
	return &DomainError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Fields:     fields,
	}
}

// NewBadRequest reports a malformed parameter with 400 rather than 422.
func NewBadRequest(message string, fields []FieldError) error {
	return &DomainError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Fields:     fields,
	}
}

// NewFieldError is a shorthand for a single-field validation failure.
func NewFieldError(msg string, loc ...string) error {
	return NewValidationError(msg, []FieldError{{Loc: loc, Msg: msg}})
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewInvalidTransition(from, to string) error {
	return &DomainError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("cannot change status from %s to %s", from, to),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"from": from, "to": to},
	}
}

// NewClassificationUnavailable wraps a classifier failure; timeouts map to 504.
func NewClassificationUnavailable(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &DomainError{
			Code:       CodeClassificationTimeout,
			Message:    "classification timed out, please retry",
			HTTPStatus: http.StatusGatewayTimeout,
			Err:        err,
		}
	}
	return &DomainError{
		Code:       CodeClassificationUnavailable,
		Message:    "classification service unavailable, please retry",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &DomainError{
			Code:       CodeTimeout,
			Message:    "request timed out",
			HTTPStatus: http.StatusGatewayTimeout,
			Err:        err,
		}
	}
	return NewInternalError(err).(*DomainError)
}

// IsCode reports whether err carries the given DomainError code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
