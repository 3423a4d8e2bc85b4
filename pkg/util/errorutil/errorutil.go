package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation  = "VALIDATION_FAILED"
	CodeNotFound    = "NOT_FOUND"
	CodePersistence = "PERSISTENCE_FAILURE"
	CodeSideEffect  = "SIDE_EFFECT_FAILED"
	CodeInternal    = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
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

// NewPersistenceFailure wraps a store or lock error; the operation was not applied.
func NewPersistenceFailure(op string, err error) error {
	return &DomainError{
		Code:       CodePersistence,
		Message:    op + " failed",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewSideEffectFailure records a best-effort step that failed after the primary transition.
func NewSideEffectFailure(effect string, err error) error {
	if err == nil {
		return nil
	}
	return &DomainError{
		Code:       CodeSideEffect,
		Message:    effect + " failed",
		HTTPStatus: http.StatusOK,
		Details:    map[string]any{"effect": effect},
		Err:        err,
	}
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
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err carries a DomainError with the given code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

func IsValidation(err error) bool  { return HasCode(err, CodeValidation) }
func IsNotFound(err error) bool    { return HasCode(err, CodeNotFound) }
func IsPersistence(err error) bool { return HasCode(err, CodePersistence) }
