package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbidden          = errors.New("forbidden")
	ErrAdminRequired      = fmt.Errorf("admin privileges required: %w", ErrForbidden)

	ErrCallSessionNotFound = errors.New("call session not found")

	ErrMisconfigured = errors.New("misconfigured")
	ErrProviderAuth  = errors.New("telephony provider authentication failed")
	ErrProvider      = errors.New("telephony provider error")
)

// MisconfiguredError lists settings that must be set before a feature can work.
// Matches ErrMisconfigured with errors.Is
type MisconfiguredError struct {
	Missing []string
}

func (e *MisconfiguredError) Error() string {
	return "missing required settings: " + strings.Join(e.Missing, ", ")
}

func (e *MisconfiguredError) Is(target error) bool {
	return target == ErrMisconfigured
}

// ProviderError is a telephony provider failure.
// Matches ErrProviderAuth with errors.Is when provider rejected credentials and ErrProvider otherwise
type ProviderError struct {
	Status       int
	Message      string
	Unauthorized bool

	// Provider's own error description, forwarded to the caller as is
	Details any
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider error (status %d): %s", e.Status, e.Message)
	}
	return "provider error: " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	if e.Unauthorized {
		return target == ErrProviderAuth
	}
	return target == ErrProvider
}
