package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal           ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrValidation         ErrorCode = "VALIDATION_ERROR"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrForbidden          ErrorCode = "FORBIDDEN"
	ErrConflict           ErrorCode = "CONFLICT"
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Auth errors
	ErrAuthInvalidCredentials ErrorCode = "AUTH_INVALID_CREDENTIALS"
	ErrAuthInvalidToken       ErrorCode = "AUTH_INVALID_TOKEN"
	ErrAuthExpiredToken       ErrorCode = "AUTH_EXPIRED_TOKEN"

	// Quiz errors
	ErrQuizNotFound      ErrorCode = "QUIZ_NOT_FOUND"
	ErrQuizNotOpen       ErrorCode = "QUIZ_NOT_OPEN"
	ErrQuizUnpublishable ErrorCode = "QUIZ_UNPUBLISHABLE"

	// Attempt errors
	ErrAttemptExpired   ErrorCode = "ATTEMPT_EXPIRED"
	ErrAttemptSubmitted ErrorCode = "ATTEMPT_ALREADY_SUBMITTED"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewValidationError(message string) *DomainError {
	return NewError(ErrValidation, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(ErrUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(ErrForbidden, message, nil)
}

func NewConflictError(message string) *DomainError {
	return NewError(ErrConflict, message, nil)
}

func NewServiceUnavailableError(message string) *DomainError {
	return NewError(ErrServiceUnavailable, message, nil)
}

func NewInvalidCredentialsError() *DomainError {
	return NewError(ErrAuthInvalidCredentials, "invalid email or password", nil)
}

func NewInvalidTokenError(message string) *DomainError {
	return NewError(ErrAuthInvalidToken, message, nil)
}

func NewExpiredTokenError() *DomainError {
	return NewError(ErrAuthExpiredToken, "token has expired", nil)
}

func NewQuizNotFoundError(quizID string) *DomainError {
	return NewError(ErrQuizNotFound, fmt.Sprintf("quiz not found with ID: %s", quizID), nil)
}

func NewQuizNotOpenError(quizID string) *DomainError {
	return NewError(ErrQuizNotOpen, fmt.Sprintf("quiz %s is not open for attempts", quizID), nil)
}

func NewQuizUnpublishableError(message string) *DomainError {
	return NewError(ErrQuizUnpublishable, message, nil)
}

func NewAttemptExpiredError(attemptID string) *DomainError {
	return NewError(ErrAttemptExpired, fmt.Sprintf("attempt %s is past its deadline", attemptID), nil)
}

func NewAttemptSubmittedError(attemptID string) *DomainError {
	return NewError(ErrAttemptSubmitted, fmt.Sprintf("attempt %s has already been finalized", attemptID), nil)
}
