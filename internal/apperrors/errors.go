// Package apperrors defines the error taxonomy of the authentication core.
// Services wrap these sentinels with %w; handlers map them to HTTP statuses
// with Status instead of matching on message text.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials covers both "user not found" and "wrong
	// password" so callers cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials, please check your email and password")

	// ErrAccountDisabled is returned only after the password check passed,
	// so it never leaks whether unknown credentials belong to a real account.
	ErrAccountDisabled = errors.New("your account has been disabled")

	ErrEmailTaken    = errors.New("email is already registered")
	ErrUsernameTaken = errors.New("username is already taken")

	ErrTokenMissing = errors.New("access denied, no token provided")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// ErrUnauthenticated is the generic verdict for a valid token whose
	// subject is missing or disabled. Both cases report identically.
	ErrUnauthenticated = errors.New("user not found or account disabled")

	ErrUserNotFound = errors.New("user not found")

	ErrForbidden = errors.New("access denied, you do not have the required permissions")
)

// ValidationError reports the first failing field of a malformed request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Status maps an error to the HTTP status code it should be surfaced with.
// Unknown errors map to 500; the handler logs the detail and returns a
// generic body.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrUsernameTaken):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrTokenMissing),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccountDisabled), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
