package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PasswordResetTokenType marks reset tokens so they cannot pass as sessions
const PasswordResetTokenType = "password_reset"

// AuthClaims represents structured JWT claims for session tokens
type AuthClaims interface {
	Subject() string
	UserID() string
	Role() string
	TokenVersion() int
	Expires() time.Time
	IssuedAt() time.Time
	IsExpired(now time.Time) bool
}

// SessionClaims is the concrete claim set shared by access and refresh tokens
type SessionClaims struct {
	jwt.RegisteredClaims
	UserRole string `json:"role,omitempty"`
	Version  int    `json:"token_version"`
}

// Verify interface compliance
var _ AuthClaims = (*SessionClaims)(nil)

// Subject returns the subject claim
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *SessionClaims) UserID() string {
	return c.Subject()
}

// Role returns the global role
func (c *SessionClaims) Role() string {
	return c.UserRole
}

// TokenVersion returns the version snapshot embedded at mint time
func (c *SessionClaims) TokenVersion() int {
	return c.Version
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// IsExpired is the wall clock expiry check. The codec verifies signatures
// only; every caller runs this comparison itself. A token expiring at
// exactly now is already expired.
func (c *SessionClaims) IsExpired(now time.Time) bool {
	exp := c.Expires()
	return !exp.IsZero() && !now.Before(exp)
}

// PasswordResetClaims is the claim set for short lived reset tokens
type PasswordResetClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	TokenType string `json:"type"`
}

// IsExpired is the wall clock expiry check for reset tokens
func (c *PasswordResetClaims) IsExpired(now time.Time) bool {
	if c.RegisteredClaims.ExpiresAt == nil {
		return false
	}
	return !now.Before(c.RegisteredClaims.ExpiresAt.Time)
}
