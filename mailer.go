package auth

import (
	"context"
	"fmt"
	"net/smtp"
)

// SMTPConfig holds the transport settings for the SMTP mailer
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPMailer sends plain text mail over authenticated SMTP
type SMTPMailer struct {
	auth smtp.Auth
	addr string
	from string
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
		addr: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		from: cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	// smtp.SendMail carries no context; honor cancellation before dialing
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	data := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		m.from,
		msg.To,
		msg.Subject,
		msg.Body,
	)

	return smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, []byte(data))
}

type noopMailer struct{}

func (noopMailer) Send(context.Context, MailMessage) error { return nil }
