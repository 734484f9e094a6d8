package domain

import (
	"errors"
	"strings"
)

// Sentinel errors shared by repositories, services and controllers.
var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidStatus      = errors.New("invalid event status")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUnavailable        = errors.New("backing service unavailable")
	ErrDuplicateEmail     = errors.New("email already in use")
)

// ValidationError lists the fields that failed validation. It unwraps to ErrValidation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
