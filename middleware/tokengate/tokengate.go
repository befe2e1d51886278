// Package tokengate guards routes with a two stage chain: a signature
// gate that proves the token is authentic, well formed, in date and
// carries an allowed role, and a version gate that compares the token's
// version snapshot against the stored per user counter so revoked
// tokens stop working before they expire.
package tokengate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

var defaultTokenLookup = "header:" + router.HeaderAuthorization

// Gate errors. Codes carry the HTTP status the default handler responds with.
var (
	ErrTokenMissing = goerrors.New("Token missing", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode("TOKEN_MISSING")

	ErrTokenInvalid = goerrors.New("Token Invalid", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode("TOKEN_INVALID")

	ErrTokenExpired = goerrors.New("Token Expired", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized).
			WithTextCode("TOKEN_EXPIRED")

	ErrRoleUnauthorized = goerrors.New("unauthorized", goerrors.CategoryAuthz).
				WithCode(goerrors.CodeForbidden).
				WithTextCode("ROLE_UNAUTHORIZED")

	ErrIdentityNotFound = goerrors.New("unauthorized", goerrors.CategoryAuth).
				WithCode(goerrors.CodeUnauthorized).
				WithTextCode("IDENTITY_NOT_FOUND")

	ErrVersionMismatch = goerrors.New("forbidden", goerrors.CategoryAuthz).
				WithCode(goerrors.CodeForbidden).
				WithTextCode("TOKEN_VERSION_STALE")
)

// AuthClaims is the claim view the gates need.
// This mirrors the session claims from the auth package without import cycles.
type AuthClaims interface {
	UserID() string
	Role() string
	TokenVersion() int
	Expires() time.Time
	IsExpired(now time.Time) bool
}

// TokenVerifier checks structure and signature of a session token.
// Expiry stays with the gate, which runs the wall clock comparison itself.
type TokenVerifier interface {
	VerifySession(token string) (AuthClaims, error)
}

// VerifierFunc adapts a function to the TokenVerifier interface
type VerifierFunc func(token string) (AuthClaims, error)

func (f VerifierFunc) VerifySession(token string) (AuthClaims, error) {
	return f(token)
}

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	// TokenVerifier validates signature and structure. When nil the gate
	// parses tokens itself using KeyFunc/SigningKey/SigningKeys/JWKSetURLs.
	TokenVerifier TokenVerifier
	SigningKey    SigningKey
	SigningKeys   map[string]SigningKey
	JWKSetURLs    []string
	KeyFunc       jwt.Keyfunc
	ContextKey    string
	TokenLookup   string
	AuthScheme    string
	// AllowedRoles gates the request on the token's role claim
	AllowedRoles []string
	// Clock supplies "now" for the expiry comparison
	Clock func() time.Time
}

type SigningKey struct {
	JWTAlg string
	Key    any
}

// New builds the signature gate
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
			if err != nil || raw == "" {
				return cfg.ErrorHandler(ctx, ErrTokenMissing)
			}

			claims, err := cfg.verify(raw)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			if claims.IsExpired(cfg.Clock()) {
				return cfg.ErrorHandler(ctx, ErrTokenExpired)
			}

			if err := checkRole(claims, cfg.AllowedRoles); err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)

			return cfg.SuccessHandler(ctx)
		}
	}
}

func (cfg *Config) getExtractors() []Extractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) verify(raw string) (AuthClaims, error) {
	if cfg.TokenVerifier != nil {
		claims, err := cfg.TokenVerifier.VerifySession(raw)
		if err != nil {
			return nil, goerrors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
				WithCode(ErrTokenInvalid.Code).
				WithTextCode(ErrTokenInvalid.TextCode)
		}
		return claims, nil
	}

	claims := &gateClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, cfg.KeyFunc, jwt.WithoutClaimsValidation())
	if err != nil || !token.Valid {
		if err == nil {
			return nil, ErrTokenInvalid
		}
		return nil, goerrors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithCode(ErrTokenInvalid.Code).
			WithTextCode(ErrTokenInvalid.TextCode)
	}

	return claims, nil
}

func checkRole(claims AuthClaims, allowed []string) error {
	if len(allowed) == 0 {
		return nil
	}

	for _, role := range allowed {
		if claims.Role() == role {
			return nil
		}
	}

	return ErrRoleUnauthorized
}

// gateClaims is the concrete claim set the gate parses when it verifies
// tokens itself rather than through a TokenVerifier
type gateClaims struct {
	jwt.RegisteredClaims
	UserRole string `json:"role,omitempty"`
	Version  int    `json:"token_version"`
}

var _ AuthClaims = (*gateClaims)(nil)

func (c *gateClaims) UserID() string {
	return c.RegisteredClaims.Subject
}

func (c *gateClaims) Role() string {
	return c.UserRole
}

func (c *gateClaims) TokenVersion() int {
	return c.Version
}

func (c *gateClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IsExpired treats a token expiring at exactly now as expired
func (c *gateClaims) IsExpired(now time.Time) bool {
	exp := c.Expires()
	return !exp.IsZero() && !now.Before(exp)
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.TokenVerifier == nil && cfg.SigningKey.Key == nil && len(cfg.SigningKeys) == 0 && len(cfg.JWKSetURLs) == 0 && cfg.KeyFunc == nil {
		panic("AUTH: token gate configuration: At least one of the following is required: TokenVerifier, KeyFunc, JWKSetURLs, SigningKeys, or SigningKey.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	if cfg.TokenVerifier == nil && cfg.KeyFunc == nil {
		if len(cfg.SigningKeys) > 0 || len(cfg.JWKSetURLs) > 0 {
			var givenKeys map[string]keyfunc.GivenKey
			if cfg.SigningKeys != nil {
				givenKeys = make(map[string]keyfunc.GivenKey, len(cfg.SigningKeys))
				for kid, key := range cfg.SigningKeys {
					givenKeys[kid] = keyfunc.NewGivenCustom(key.Key, keyfunc.GivenKeyOptions{
						Algorithm: key.JWTAlg,
					})
				}
			}
			if len(cfg.JWKSetURLs) > 0 {
				var err error
				cfg.KeyFunc, err = multiKeyfunc(givenKeys, cfg.JWKSetURLs)
				if err != nil {
					panic("Failed to create keyfunc from JWK Set URL: " + err.Error())
				}
			} else {
				cfg.KeyFunc = keyfunc.NewGiven(givenKeys).Keyfunc
			}
		} else {
			cfg.KeyFunc = signingKeyFunc(cfg.SigningKey)
		}
	}

	return cfg
}

// DefaultErrorHandler writes the gate error as a JSON message with the
// status carried by the error code
func DefaultErrorHandler(c router.Context, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return c.JSON(richErr.Code, map[string]any{
			"message": richErr.Message,
		})
	}
	return c.JSON(router.StatusUnauthorized, map[string]any{
		"message": "unauthorized",
	})
}

// VersionStore resolves the current stored token version for a user
type VersionStore interface {
	CurrentTokenVersion(ctx context.Context, userID string) (int, error)
}

// TokenDecoder extracts claims without verifying the signature. The
// version gate only uses it behind the signature gate.
type TokenDecoder interface {
	DecodeSession(token string) (AuthClaims, error)
}

// DecoderFunc adapts a function to the TokenDecoder interface
type DecoderFunc func(token string) (AuthClaims, error)

func (f DecoderFunc) DecodeSession(token string) (AuthClaims, error) {
	return f(token)
}

type VersionGateConfig struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	// Store is required
	Store VersionStore
	// Decoder recovers claims from the raw token when the signature gate
	// did not run first (or used a different context key)
	Decoder     TokenDecoder
	ContextKey  string
	TokenLookup string
	AuthScheme  string
}

// NewVersionGate builds the revocation gate. Mount it AFTER New: it
// trusts the claims the signature gate stored in the request locals.
func NewVersionGate(config ...VersionGateConfig) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := getVersionGateDefaults(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			claims, err := cfg.resolveClaims(ctx)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			version, err := cfg.Store.CurrentTokenVersion(ctx.Context(), claims.UserID())
			if err != nil {
				if goerrors.IsNotFound(err) {
					return cfg.ErrorHandler(ctx, ErrIdentityNotFound)
				}
				return cfg.ErrorHandler(ctx, goerrors.Wrap(err, goerrors.CategoryInternal, "token version lookup failed").
					WithCode(goerrors.CodeInternal))
			}

			if claims.TokenVersion() != version {
				return cfg.ErrorHandler(ctx, ErrVersionMismatch)
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

func (cfg *VersionGateConfig) resolveClaims(ctx router.Context) (AuthClaims, error) {
	if claims, ok := ctx.Locals(cfg.ContextKey).(AuthClaims); ok && claims != nil {
		return claims, nil
	}

	if cfg.Decoder == nil {
		return nil, ErrTokenMissing
	}

	raw, err := ExtractRawTokenFromContext(ctx, GetExtractors(cfg.TokenLookup, cfg.AuthScheme))
	if err != nil || raw == "" {
		return nil, ErrTokenMissing
	}

	claims, err := cfg.Decoder.DecodeSession(raw)
	if err != nil {
		return nil, goerrors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithCode(ErrTokenInvalid.Code).
			WithTextCode(ErrTokenInvalid.TextCode)
	}

	return claims, nil
}

func getVersionGateDefaults(config ...VersionGateConfig) (cfg VersionGateConfig) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = DefaultErrorHandler
	}

	if cfg.Store == nil {
		panic("AUTH: version gate configuration: Store is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func multiKeyfunc(givenKeys map[string]keyfunc.GivenKey, jwtSetUrls []string) (jwt.Keyfunc, error) {
	opts := keyfuncOptions(givenKeys)
	m := make(map[string]keyfunc.Options, len(jwtSetUrls))
	for _, url := range jwtSetUrls {
		m[url] = opts
	}
	mopts := keyfunc.MultipleOptions{
		KeySelector: keyfunc.KeySelectorFirst,
	}
	multi, err := keyfunc.GetMultiple(m, mopts)
	if err != nil {
		return nil, fmt.Errorf("failed to get JWT URLs: %w", err)
	}
	return multi.Keyfunc, nil
}

func keyfuncOptions(givenKeys map[string]keyfunc.GivenKey) keyfunc.Options {
	return keyfunc.Options{
		GivenKeys: givenKeys,
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWT set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

func signingKeyFunc(key SigningKey) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		if key.JWTAlg != "" {
			alg, ok := token.Header["alg"].(string)
			if !ok {
				return nil, fmt.Errorf("unexpected JWT signing method: expected %q got: missing json type", key.JWTAlg)
			}
			if alg != key.JWTAlg {
				return nil, fmt.Errorf("unexpected jwt signing method: expected: %q: got: %q", key.JWTAlg, alg)
			}
		}
		return key.Key, nil
	}
}
