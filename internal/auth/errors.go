// Package auth holds the credential, password-policy and token primitives of
// the service together with the typed errors the service and middleware
// layers translate into HTTP responses.  Failure kinds are sentinel values
// compared with errors.Is; handlers never match on message substrings.
package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Account and credential failures raised by the service layer.
var (
	// ErrInvalidCredentials covers both "no such email" and "wrong
	// password" so responses cannot be used to probe which emails are
	// registered.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrAccountDeactivated is returned when credentials check out but the
	// account has been soft-deactivated.  Unlike ErrInvalidCredentials this
	// one is deliberately distinguishable.
	ErrAccountDeactivated = errors.New("account is deactivated")
	// ErrUserNotFound is returned when a user id has no matching row.
	ErrUserNotFound = errors.New("user not found")
	// ErrIncorrectPassword is returned by ChangePassword when the supplied
	// current password does not verify.
	ErrIncorrectPassword = errors.New("current password is incorrect")
	// ErrInvalidRefreshToken is returned when a token presented for refresh
	// does not carry the refresh discriminator or fails verification.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrUserInactive is returned on refresh when the user referenced by an
	// otherwise valid refresh token no longer exists or is deactivated.
	ErrUserInactive = errors.New("user not found or inactive")
)

// Token parse/verify failures raised by VerifyToken and ExtractBearer.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenSignature = errors.New("invalid token signature")
	ErrTokenMalformed = errors.New("malformed token")

	ErrNoAuthHeader  = errors.New("authorization header missing")
	ErrBadAuthScheme = errors.New("invalid authorization format, use: Bearer <token>")
	ErrEmptyBearer   = errors.New("access token required")
)

// PasswordPolicyError reports every rule a candidate password violated.  It
// is returned by the registration and change-password paths and maps to a
// 400 response listing all reasons at once.
type PasswordPolicyError struct {
	Reasons []string
}

func (e *PasswordPolicyError) Error() string {
	return fmt.Sprintf("password rejected: %s", strings.Join(e.Reasons, ", "))
}
