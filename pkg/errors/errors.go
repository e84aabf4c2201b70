package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
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

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrValidation
	ErrAccessDenied
	ErrIncompleteProfile
	ErrInvalidTransition
	ErrConflict
	ErrStaleState
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewBadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return NewNotFound(resource, err)
}

func BadRequest(message string, err error) *AppError {
	return NewBadRequest(message, err)
}

func Internal(err error) *AppError {
	return NewInternal(err)
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

// Validation reports malformed or missing input, e.g. a cancellation
// without a reason.
func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

// AccessDenied reports an entity/role combination outside the policy
// allow table. Handlers render it as a generic "not available".
func AccessDenied(message string) *AppError {
	return &AppError{
		Code:    ErrAccessDenied,
		Message: message,
	}
}

// IncompleteProfile reports a patient or clinician principal whose scoped
// record does not exist yet. Callers should route to onboarding, not deny.
func IncompleteProfile(role string) *AppError {
	return &AppError{
		Code:    ErrIncompleteProfile,
		Message: fmt.Sprintf("%s profile is not set up yet", role),
	}
}

// InvalidTransition reports a lifecycle event that is not legal from the
// appointment's current status.
func InvalidTransition(from, event string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("cannot %s an appointment in status %q", event, from),
	}
}

// Conflict reports a confirmed appointment already occupying the slot.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    ErrConflict,
		Message: message,
	}
}

// StaleState reports an optimistic-concurrency mismatch: the appointment
// changed between read and write. Callers should re-fetch and retry.
func StaleState(resource string) *AppError {
	return &AppError{
		Code:    ErrStaleState,
		Message: fmt.Sprintf("%s was modified concurrently, please retry", resource),
	}
}

// Is reports whether err is an AppError carrying the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the AppError code carried by err, or ErrInternal when err
// is not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}
