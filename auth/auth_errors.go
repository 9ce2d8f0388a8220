package auth

import (
	"errors"

	"github.com/medsure/claims-client/api"
)

var (
	ErrNoRefreshToken   = errors.New("no refresh token available")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Fallback messages shown when the server did not send one.
const (
	loginFailedMsg   = "Login failed. Please try again."
	signupFailedMsg  = "Signup failed. Please try again."
	refreshFailedMsg = "Your session has expired. Please log in again."
)

// AuthError carries the human-readable message the UI layer displays. The
// underlying cause stays attached for logging and errors.Is/As matching.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// newAuthError builds an AuthError from a failed request: the server's
// envelope message wins when present, otherwise the fallback is used.
func newAuthError(err error, fallback string) *AuthError {
	message := fallback
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}
	return &AuthError{Message: message, Err: err}
}
