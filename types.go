package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
	GetAudience() []string
	GetAccessTokenDuration() time.Duration
	GetRefreshTokenDuration() time.Duration
	GetResetTokenDuration() time.Duration
	GetSingleSession() bool
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// LoginPayload carries credentials into the authenticator
type LoginPayload interface {
	GetEmail() string
	GetUsername() string
	GetPassword() string
}

// UserStore is the slice of the users repository the authenticator needs.
// The bun backed repository satisfies it; tests stub it.
type UserStore interface {
	GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*User, error)
	FindByEmailAndUsername(ctx context.Context, email, username string) (*User, error)
	IncrementTokenVersion(ctx context.Context, id uuid.UUID) (*User, error)
}

// Mailer sends account related notifications
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// MailMessage is a plain text email payload
type MailMessage struct {
	To      string
	Subject string
	Body    string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
