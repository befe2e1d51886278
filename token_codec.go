package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// TokenCodec signs and parses the service's HS256 tokens.
//
// Verify methods check structure and signature only. Expiry is a caller
// concern: the authenticator and the middleware run the wall clock
// comparison themselves so an expired token can be reported as such
// instead of folding into a generic parse failure.
type TokenCodec struct {
	signingKey []byte
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
}

// NewTokenCodec creates a new TokenCodec instance
func NewTokenCodec(signingKey []byte, issuer string, audience jwt.ClaimStrings, logger Logger) *TokenCodec {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenCodec{
		signingKey: signingKey,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
	}
}

// IssueSession mints a session token carrying the given version snapshot
func (tc *TokenCodec) IssueSession(identity Identity, version int, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tc.issuer,
			Subject:   identity.ID(),
			Audience:  tc.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserRole: identity.Role(),
		Version:  version,
	}

	return tc.SignClaims(claims)
}

// IssueReset mints a short lived password reset token
func (tc *TokenCodec) IssueReset(identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &PasswordResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tc.issuer,
			Subject:   identity.ID(),
			Audience:  tc.audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:     identity.Email(),
		TokenType: PasswordResetTokenType,
	}

	return tc.SignClaims(claims)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (tc *TokenCodec) SignClaims(claims jwt.Claims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(tc.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// VerifySession parses a session token and checks its signature
func (tc *TokenCodec) VerifySession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := tc.verify(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyReset parses a reset token, checks its signature and token type
func (tc *TokenCodec) VerifyReset(tokenString string) (*PasswordResetClaims, error) {
	claims := &PasswordResetClaims{}
	if err := tc.verify(tokenString, claims); err != nil {
		return nil, err
	}

	if claims.TokenType != PasswordResetTokenType {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}

func (tc *TokenCodec) verify(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("TokenCodec verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return tc.signingKey, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		return goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithCode(ErrTokenMalformed.Code).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if !token.Valid {
		return ErrTokenMalformed
	}

	return nil
}

// DecodeSession parses a session token WITHOUT verifying its signature.
// Identity extraction only, never a trust boundary on its own. Callers
// sit behind the signature gate before relying on the result.
func (tc *TokenCodec) DecodeSession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithCode(ErrTokenMalformed.Code).
			WithTextCode(ErrTokenMalformed.TextCode)
	}
	return claims, nil
}
