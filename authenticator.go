package auth

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// TokenPair is the access/refresh pair returned by login, register and refresh
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Auther struct {
	store         UserStore
	codec         *TokenCodec
	signingKey    []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	audience      []string
	singleSession bool
	logger        Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store UserStore, opts Config) *Auther {
	codec := NewTokenCodec(
		[]byte(opts.GetSigningKey()),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		store:         store,
		codec:         codec,
		signingKey:    []byte(opts.GetSigningKey()),
		accessTTL:     opts.GetAccessTokenDuration(),
		refreshTTL:    opts.GetRefreshTokenDuration(),
		issuer:        opts.GetIssuer(),
		audience:      opts.GetAudience(),
		singleSession: opts.GetSingleSession(),
		logger:        defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.codec = NewTokenCodec(s.signingKey, s.issuer, s.audience, logger)
	return s
}

// Codec returns the TokenCodec instance used by this Authenticator
func (s *Auther) Codec() *TokenCodec {
	return s.codec
}

// Login verifies the credential pair and mints a token pair carrying the
// user's CURRENT stored token version. With single session enabled the
// version is bumped first so every previously issued token goes stale.
func (s *Auther) Login(ctx context.Context, email, username, password string) (*TokenPair, error) {
	user, err := s.store.FindByEmailAndUsername(ctx, email, username)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login user lookup error", "error", err)
		return nil, goerrors.Wrap(err, ErrStoreFailure.Category, ErrStoreFailure.Message).
			WithTextCode(ErrStoreFailure.TextCode)
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, err
	}

	if s.singleSession {
		user, err = s.store.IncrementTokenVersion(ctx, user.ID)
		if err != nil {
			s.logger.Error("Login version increment error", "error", err)
			return nil, goerrors.Wrap(err, ErrStoreFailure.Category, ErrStoreFailure.Message).
				WithTextCode(ErrStoreFailure.TextCode)
		}
	}

	return s.IssuePair(user)
}

// Refresh validates a refresh token and mints a fresh pair. The version
// snapshot must still match the stored one, so a refresh token outlives
// a logout no better than the access token did.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrTokenEmpty
	}

	claims, err := s.codec.VerifySession(refreshToken)
	if err != nil {
		return nil, err
	}

	if claims.IsExpired(time.Now()) {
		return nil, ErrRefreshTokenExpired
	}

	user, err := s.store.GetByID(ctx, claims.UserID())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		s.logger.Error("Refresh user lookup error", "error", err)
		return nil, goerrors.Wrap(err, ErrStoreFailure.Category, ErrStoreFailure.Message).
			WithTextCode(ErrStoreFailure.TextCode)
	}

	if claims.TokenVersion() != user.TokenVersion {
		return nil, ErrVersionMismatch
	}

	return s.IssuePair(user)
}

// Logout bumps the stored token version so every outstanding token goes
// stale. The token only identifies the caller here; the signature gate
// in front of the route already vouched for it.
func (s *Auther) Logout(ctx context.Context, accessToken string) (*User, error) {
	claims, err := s.codec.DecodeSession(accessToken)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, ErrTokenMalformed
	}

	user, err := s.store.IncrementTokenVersion(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		s.logger.Error("Logout version increment error", "error", err)
		return nil, goerrors.Wrap(err, ErrStoreFailure.Category, ErrStoreFailure.Message).
			WithTextCode(ErrStoreFailure.TextCode)
	}

	return user, nil
}

// CurrentTokenVersion resolves the stored version for the version gate
func (s *Auther) CurrentTokenVersion(ctx context.Context, userID string) (int, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.TokenVersion, nil
}

// IssuePair mints an access/refresh pair for the given record
func (s *Auther) IssuePair(user *User) (*TokenPair, error) {
	identity := user.Identity()

	access, err := s.codec.IssueSession(identity, user.TokenVersion, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := s.codec.IssueSession(identity, user.TokenVersion, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
