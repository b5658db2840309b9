package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrPaymentNotSuccessful = errors.New("payment not successful")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrDescriberUnavailable = errors.New("description generator is not configured")
	ErrDescriberFailed      = errors.New("description generation failed")
)

// ValidationError is a rejected request field. It matches ErrInvalidInput.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidStateError is returned when an operation is not allowed in the current
// state of the entity it targets.
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return e.Reason
}
