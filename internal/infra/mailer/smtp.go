// Package mailer delivers notification email over SMTP.
package mailer

import (
	"context"
	"log/slog"
	"time"

	"atelier-backend/internal/pkg/config"
	"atelier-backend/internal/pkg/errs"
	"atelier-backend/internal/usecase/shared"

	"github.com/wneessen/go-mail"
)

type SMTPMailer struct {
	client *mail.Client
	cfg    config.MailConfig
	log    *slog.Logger
}

func NewSMTPMailer(cfg config.MailConfig, log *slog.Logger) (shared.Notifier, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build smtp client")
	}
	return &SMTPMailer{client: client, cfg: cfg, log: log}, nil
}

func (m *SMTPMailer) Notify(ctx context.Context, to []string, subject, htmlBody string) error {
	if len(to) == 0 {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.FromEmail); err != nil {
		return errs.Wrap(err, "invalid sender address")
	}
	if err := msg.To(to...); err != nil {
		return errs.Wrap(err, "invalid recipient address")
	}
	if m.cfg.ReplyTo != "" {
		if err := msg.ReplyTo(m.cfg.ReplyTo); err != nil {
			return errs.Wrap(err, "invalid reply-to address")
		}
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return errs.Wrap(err, "failed to send mail")
	}
	m.log.Debug("mail sent", "subject", subject, "recipients", len(to))
	return nil
}
