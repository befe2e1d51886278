package auth

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email" example:"pepe.rone@example.com" doc:"Customer email."`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	// Sent is true when an account exists and a reset email was
	// dispatched. HTTP callers must NOT leak this to the client.
	Sent    bool
	Success bool
}

type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	codec    *TokenCodec
	mailer   Mailer
	resetTTL time.Duration
	resetURL string
	logger   Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, codec *TokenCodec, mailer Mailer, opts Config) *InitializePasswordResetHandler {
	if mailer == nil {
		mailer = noopMailer{}
	}
	return &InitializePasswordResetHandler{
		repo:     repo,
		codec:    codec,
		mailer:   mailer,
		resetTTL: opts.GetResetTokenDuration(),
		resetURL: "/password-reset",
		logger:   defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	h.logger = logger
	return h
}

// WithResetURL sets the base path used to build the emailed reset link
func (h *InitializePasswordResetHandler) WithResetURL(url string) *InitializePasswordResetHandler {
	h.resetURL = url
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Email == "" {
		return ErrNoEmailReceived
	}

	user, err := h.repo.Users().GetByIdentifier(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// same outcome as the happy path so callers cannot probe
			// which addresses have accounts
			resp.Success = true
			if event.OnResponse != nil {
				event.OnResponse(resp)
			}
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token, err := h.codec.IssueReset(user.Identity(), h.resetTTL)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue password reset token")
	}

	// the HTTP response never waits on SMTP
	go h.dispatchResetEmail(user.Email, token)

	resp.Sent = true
	resp.Success = true
	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

func (h *InitializePasswordResetHandler) dispatchResetEmail(email, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	msg := MailMessage{
		To:      email,
		Subject: "Password Reset",
		Body:    fmt.Sprintf("Reset your password using the link below:\n\n%s/%s\n\nThe link expires in %s.", h.resetURL, token, h.resetTTL),
	}

	if err := h.mailer.Send(ctx, msg); err != nil {
		h.logger.Error("password reset email dispatch failed",
			"error", goerrors.Wrap(err, ErrMailDispatchFailure.Category, ErrMailDispatchFailure.Message).
				WithTextCode(ErrMailDispatchFailure.TextCode),
			"to", email,
		)
	}
}
