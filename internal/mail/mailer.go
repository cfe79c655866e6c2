// Package mail implements outbound email delivery for password resets.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"mosaic/internal/config"
	"mosaic/internal/middleware"
)

// Mailer is the external collaborator delivering transactional mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewMailer returns an SMTP mailer when SMTP_HOST is configured, otherwise a
// log-only mailer for development.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &logMailer{}
	}
	return &smtpMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		host: cfg.SMTPHost,
		user: cfg.SMTPUser,
		pass: cfg.SMTPPass,
		from: cfg.MailFrom,
	}
}

type smtpMailer struct {
	addr string
	host string
	user string
	pass string
	from string
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, to, subject, body)

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(m.addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// logMailer records the delivery without the body so raw reset tokens never
// reach the logs.
type logMailer struct{}

func (m *logMailer) Send(ctx context.Context, to, subject, _ string) error {
	middleware.Logger.InfoContext(ctx, "mail delivery (log sink)",
		slog.String("to", to),
		slog.String("subject", subject),
	)
	return nil
}
