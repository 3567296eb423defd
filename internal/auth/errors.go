package auth

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the password does not match.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrTokenInvalid is returned when a token fails signature, expiry or claim checks.
	ErrTokenInvalid = errors.New("auth: invalid token")

	// ErrMisconfigured is returned by New when the secret or hash is unusable.
	ErrMisconfigured = errors.New("auth: misconfigured")
)
