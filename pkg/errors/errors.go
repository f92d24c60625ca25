// Package errors defines the application error model: sentinel kinds for
// errors.Is checks and an AppError carrying the HTTP status, machine code,
// and field details the response envelope exposes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel error kinds.
var (
	ErrNotFound              = errors.New("resource not found")
	ErrBadRequest            = errors.New("bad request")
	ErrConflict              = errors.New("resource conflict")
	ErrInternal              = errors.New("internal server error")
	ErrValidation            = errors.New("validation error")
	ErrInvalidParameters     = errors.New("invalid parameters")
	ErrBusinessRuleViolation = errors.New("business rule violation")
)

// AppError is an error with enough context to render an HTTP response.
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource by name ("employee not found").
func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		StatusCode: http.StatusNotFound,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:        ErrConflict,
		Code:       "CONFLICT",
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// Validation reports per-field failures of a request payload.
func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// InvalidParameters marks a structurally malformed time-record write.
// Reported per batch item, never fatal to the batch.
func InvalidParameters(message string) *AppError {
	return &AppError{
		Err:        ErrInvalidParameters,
		Code:       "INVALID_PARAMETERS",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

// BusinessRuleViolation marks a write targeting a cell the validity engine
// classifies as non-editable (weekend, future, outside the employment window).
func BusinessRuleViolation(message string) *AppError {
	return &AppError{
		Err:        ErrBusinessRuleViolation,
		Code:       "BUSINESS_RULE_VIOLATION",
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// Is reports whether err matches the sentinel kind.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target any) bool {
	return errors.As(err, target)
}
