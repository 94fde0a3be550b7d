package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin gateway
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionCorrupt   = errors.New("session data corrupt")

	// Token errors
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshFailed       = errors.New("token refresh failed")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("admin role required")

	// Tenant errors
	ErrTenantNotFound = errors.New("tenant not found")

	// Upstream errors
	ErrUpstreamUnavailable = errors.New("backend unavailable")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
