package errors

import "errors"

// Token lifecycle errors.
var (
	ErrNoToken              = errors.New("no token available")
	ErrNoRefreshToken       = errors.New("no refresh token available")
	ErrNoClientID           = errors.New("OAuth client id not configured")
	ErrRefreshRejected      = errors.New("token refresh rejected")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// API transport errors.
var (
	ErrAPIRequest  = errors.New("API request failed")
	ErrAPIResponse = errors.New("unexpected API response")
)
