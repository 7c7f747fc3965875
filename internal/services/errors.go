package services

import (
	"errors"

	"github.com/isdelr/auth-api/internal/auth"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrInvalidToken       = auth.ErrInvalidToken
)

// ValidationError reports the first input field that broke a constraint.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
