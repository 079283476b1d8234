package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Validation marks user-correctable input errors; message names the field.
func Validation(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     nil,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Message: message,
		Status:  http.StatusConflict,
		Err:     nil,
	}
}

// DuplicateItem is a soft consistency error: the operation is a no-op and the
// message is surfaced as a warning, not a hard failure.
func DuplicateItem(message string) *AppError {
	return &AppError{
		Code:    "DUPLICATE_ITEM",
		Message: message,
		Status:  http.StatusConflict,
		Err:     nil,
	}
}

func QuotaExceeded(message string, err error) *AppError {
	return &AppError{
		Code:    "QUOTA_EXCEEDED",
		Message: message,
		Status:  http.StatusTooManyRequests,
		Err:     err,
	}
}

func UnsupportedMediaType(message string) *AppError {
	return &AppError{
		Code:    "UNSUPPORTED_MEDIA_TYPE",
		Message: message,
		Status:  http.StatusUnsupportedMediaType,
		Err:     nil,
	}
}

// SafetyBlocked carries the service's refusal message verbatim.
func SafetyBlocked(message string) *AppError {
	return &AppError{
		Code:    "SAFETY_BLOCKED",
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Err:     nil,
	}
}

func EmptyResponse(message string) *AppError {
	return &AppError{
		Code:    "EMPTY_RESPONSE",
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     nil,
	}
}

func ServiceUnavailable(message string, err error) *AppError {
	return &AppError{
		Code:    "SERVICE_UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

func PermissionDenied(message string, err error) *AppError {
	return &AppError{
		Code:    "PERMISSION_DENIED",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Unavailable(message string, err error) *AppError {
	return &AppError{
		Code:    "UNAVAILABLE",
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}
