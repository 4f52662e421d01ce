// Package errors provides the structured error types for the platform API
package errors

import (
	"fmt"
	"net/http"
)

// PlatformError is the base interface for all platform errors
type PlatformError interface {
	error
	HTTPStatus() int
	Code() string
}

// BaseError is the base implementation of PlatformError
type BaseError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"code"`
	Details    string `json:"details,omitempty"`
}

func (e *BaseError) Error() string {
	return e.Message
}

func (e *BaseError) HTTPStatus() int {
	return e.StatusCode
}

func (e *BaseError) Code() string {
	return e.ErrorCode
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	BaseError
	Resource string
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{
		BaseError: BaseError{
			Message:    fmt.Sprintf("%s not found", resource),
			StatusCode: http.StatusNotFound,
			ErrorCode:  "NOT_FOUND",
		},
		Resource: resource,
	}
}

// ValidationError represents a locally recoverable validation error: the
// caller fixes the input and retries.
type ValidationError struct {
	BaseError
	Field string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			ErrorCode:  "VALIDATION_ERROR",
		},
		Field: field,
	}
}

// PolicyError represents a tier or flag rule that blocks the requested
// operation; not recoverable without changing the request itself.
type PolicyError struct {
	BaseError
}

func NewPolicyError(message string) *PolicyError {
	return &PolicyError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusForbidden,
			ErrorCode:  "POLICY_BLOCKED",
		},
	}
}

// ConfirmationRequiredError is not a failure: the operation needs more input.
// It carries the exact confirmation phrase the caller must echo back.
type ConfirmationRequiredError struct {
	BaseError
	ConfirmationPhrase string `json:"confirmation_phrase"`
}

func NewConfirmationRequiredError(phrase string) *ConfirmationRequiredError {
	return &ConfirmationRequiredError{
		BaseError: BaseError{
			Message:    "confirmation required before this operation can proceed",
			StatusCode: http.StatusConflict,
			ErrorCode:  "CONFIRMATION_REQUIRED",
		},
		ConfirmationPhrase: phrase,
	}
}

// UnauthorizedError represents an authentication error
type UnauthorizedError struct {
	BaseError
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	if message == "" {
		message = "authentication required"
	}
	return &UnauthorizedError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusUnauthorized,
			ErrorCode:  "UNAUTHORIZED",
		},
	}
}

// PermissionDeniedError represents a permission denied error
type PermissionDeniedError struct {
	BaseError
	Action   string
	Resource string
}

func NewPermissionDeniedError(action, resource string) *PermissionDeniedError {
	return &PermissionDeniedError{
		BaseError: BaseError{
			Message:    "permission denied",
			StatusCode: http.StatusForbidden,
			ErrorCode:  "PERMISSION_DENIED",
		},
		Action:   action,
		Resource: resource,
	}
}

// ConflictError represents a conflicting state: non-monotonic version,
// incompatible upgrade path, expired rollback window, duplicate name.
type ConflictError struct {
	BaseError
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusConflict,
			ErrorCode:  "CONFLICT",
		},
	}
}

// InternalError represents a system/transient error; any surrounding
// transaction has been rolled back with no partial state.
type InternalError struct {
	BaseError
	OriginalError error
}

func NewInternalError(original error) *InternalError {
	return &InternalError{
		BaseError: BaseError{
			Message:    "internal server error",
			StatusCode: http.StatusInternalServerError,
			ErrorCode:  "INTERNAL_ERROR",
		},
		OriginalError: original,
	}
}

// BadRequestError represents a generic bad request error
type BadRequestError struct {
	BaseError
}

func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{
		BaseError: BaseError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			ErrorCode:  "BAD_REQUEST",
		},
	}
}

// ToHTTPError converts any error to an appropriate HTTP response body
func ToHTTPError(err error) (int, map[string]interface{}) {
	if err == nil {
		return http.StatusOK, nil
	}

	if ce, ok := err.(*ConfirmationRequiredError); ok {
		return ce.HTTPStatus(), map[string]interface{}{
			"error":               ce.Code(),
			"message":             ce.Error(),
			"confirmation_phrase": ce.ConfirmationPhrase,
		}
	}

	if pe, ok := err.(PlatformError); ok {
		return pe.HTTPStatus(), map[string]interface{}{
			"error":   pe.Code(),
			"message": pe.Error(),
		}
	}

	// Default to internal server error for unknown errors
	return http.StatusInternalServerError, map[string]interface{}{
		"error":   "INTERNAL_ERROR",
		"message": "internal server error",
	}
}
