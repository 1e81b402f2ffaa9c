// Package common defines shared constants and sentinel errors used across
// the identity service. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Key material errors. The private and public sides share the same kinds;
	// only the wrapping message distinguishes them.
	ErrKeyPathNotConfigured = errors.New("key path not configured")
	ErrKeyFileNotFound      = errors.New("key file not found")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Use-case errors. Deliberately coarse: the HTTP layer flattens each of
	// them into a single uniform response so callers cannot tell which
	// specific check failed.
	ErrAuthenticationFailed  = errors.New("authentication failed")
	ErrDuplicateUserID       = errors.New("invalid userId")
	ErrImpersonationFailed   = errors.New("impersonation failed")
	ErrUpdateUserFailed      = errors.New("update user failed")
	ErrInsufficientPrivilege = errors.New("insufficient privilege")

	// Infrastructure errors.
	ErrInternal     = errors.New("internal error")
	ErrMailDelivery = errors.New("mail delivery failed")
)
