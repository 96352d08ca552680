// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Database errors.
	ErrNotFound = errors.New("not found")

	// Artifact errors.
	ErrArtifactMissing = errors.New("artifact missing")
	ErrArtifactInvalid = errors.New("artifact invalid")

	// Prediction errors.
	ErrInvalidInput   = errors.New("invalid input")
	ErrModelInference = errors.New("model inference failed")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the service itself.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
