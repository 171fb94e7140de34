package services

import (
	"errors"
	"fmt"

	"mediabank/internal/constants"
)

// ServiceError represents a service-level error with an error code.
type ServiceError struct {
	Code    string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new service error.
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// WrapServiceError wraps an existing error with a service error.
func WrapServiceError(code, message string, err error) *ServiceError {
	return &ServiceError{Code: code, Message: message, Err: err}
}

// IsServiceError checks if an error is a ServiceError and returns its code.
func IsServiceError(err error) (string, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code, true
	}
	return "", false
}

// Pre-defined service errors for common cases.
var (
	ErrInvalidCredentials = NewServiceError(constants.ErrCodeInvalidCredentials, "invalid username or password")
	ErrUsernameTaken      = NewServiceError(constants.ErrCodeUsernameTaken, "username already exists")
	ErrAccountNotFound    = NewServiceError(constants.ErrCodeNotFound, "account not found")
	ErrAccountBanned      = NewServiceError(constants.ErrCodeBanned, "account is banned")
	ErrMediaNotFound      = NewServiceError(constants.ErrCodeNotFound, "media record not found")
)

// storageFailure wraps an unexpected store error with an opaque client
// message; the full detail goes to the log, never to the client.
func storageFailure(err error) *ServiceError {
	return WrapServiceError(constants.ErrCodeStorageFailure, "internal storage error", err)
}

func invalidRequest(message string) *ServiceError {
	return NewServiceError(constants.ErrCodeInvalidRequest, message)
}
