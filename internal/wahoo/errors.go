package wahoo

import (
	"fmt"

	apperrors "github.com/askaldwell/wahoo-mcp/internal/errors"
)

// StatusError is a non-2xx API response after the authentication
// machinery has had its chance at the request.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP Error %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error { return apperrors.ErrAPIResponse }

// AuthError reports a 401 that could not be repaired because the token
// refresh failed. It carries the original response so callers can still
// inspect what the API said.
type AuthError struct {
	StatusCode int
	Body       string
}

func (e *AuthError) Error() string {
	return "authentication failed and token refresh was unsuccessful"
}

func (e *AuthError) Unwrap() error { return apperrors.ErrAuthenticationFailed }
