package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrTokenMissing is returned when a guarded request carries no token
var ErrTokenMissing = goerrors.New("Token missing", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_MISSING")

// ErrTokenEmpty is returned when a refresh request carries an empty token
var ErrTokenEmpty = goerrors.New("Token Empty", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode("TOKEN_EMPTY")

// ErrTokenMalformed covers bad structure and bad signatures
var ErrTokenMalformed = goerrors.New("Token Invalid", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_INVALID")

// ErrTokenExpired is the explicit expiry failure on guarded routes
var ErrTokenExpired = goerrors.New("Token Expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("TOKEN_EXPIRED")

// ErrRefreshTokenExpired keeps the refresh endpoint's wire contract
var ErrRefreshTokenExpired = goerrors.New("Token Expired", goerrors.CategoryAuth).
	WithCode(goerrors.CodeForbidden).
	WithTextCode("REFRESH_TOKEN_EXPIRED")

// ErrInvalidCredentials is returned when no account matches the identifier pair
var ErrInvalidCredentials = goerrors.New("invalid credentials", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("INVALID_CREDENTIALS")

// ErrPasswordInvalid is returned on a password mismatch for a known account
var ErrPasswordInvalid = goerrors.New("password invalid", goerrors.CategoryAuth).
	WithCode(goerrors.CodeForbidden).
	WithTextCode("PASSWORD_INVALID")

// ErrUserExists is returned when registration hits an existing account
var ErrUserExists = goerrors.New("user already exist", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode("USER_EXISTS")

// ErrRoleUnauthorized is returned when the token role is not allowed through
var ErrRoleUnauthorized = goerrors.New("unauthorized", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode("ROLE_UNAUTHORIZED")

// ErrVersionMismatch is returned when the token version trails the stored one
var ErrVersionMismatch = goerrors.New("forbidden", goerrors.CategoryAuthz).
	WithCode(goerrors.CodeForbidden).
	WithTextCode("TOKEN_VERSION_STALE")

// ErrIdentityNotFound is returned when the token subject has no account
var ErrIdentityNotFound = goerrors.New("unauthorized", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized).
	WithTextCode("IDENTITY_NOT_FOUND")

// ErrNoEmailReceived is returned by forgot-password when the body has no email
var ErrNoEmailReceived = goerrors.New("no email received", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode("EMAIL_MISSING")

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithCode(goerrors.CodeBadRequest).
	WithTextCode("PASSWORD_EMPTY")

// ErrHashingFailure wraps bcrypt failures
var ErrHashingFailure = goerrors.New("failed to hash password", goerrors.CategoryInternal).
	WithCode(goerrors.CodeInternal).
	WithTextCode("HASHING_FAILURE")

// ErrStoreFailure wraps storage failures surfaced to HTTP callers
var ErrStoreFailure = goerrors.New("storage operation failed", goerrors.CategoryInternal).
	WithCode(goerrors.CodeInternal).
	WithTextCode("STORE_FAILURE")

// ErrMailDispatchFailure marks a reset email that could not be sent
var ErrMailDispatchFailure = goerrors.New("failed to dispatch email", goerrors.CategoryOperation).
	WithCode(goerrors.CodeInternal).
	WithTextCode("MAIL_DISPATCH_FAILURE")

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == ErrTokenExpired.TextCode ||
			richErr.TextCode == ErrRefreshTokenExpired.TextCode
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == ErrTokenMalformed.TextCode
	}
	return strings.Contains(err.Error(), "token is malformed")
}
