package notify

import (
	"context"
	"errors"

	"gopkg.in/mail.v2"

	"github.com/tasktrack/tasktrack/internal/config"
)

// ErrMailerDisabled is returned when no SMTP host is configured.
var ErrMailerDisabled = errors.New("email delivery is not configured")

// Email is one outgoing message.
type Email struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends email.
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// SMTPMailer sends email through an SMTP relay.
type SMTPMailer struct {
	dialer *mail.Dialer
	from   string
}

// NewMailer returns an SMTPMailer, or a mailer that always fails with
// ErrMailerDisabled when cfg has no host.
func NewMailer(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" {
		return disabledMailer{}
	}
	return &SMTPMailer{
		dialer: mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	message := mail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", msg.Subject)
	message.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		message.AddAlternative("text/html", msg.HTML)
	}
	return m.dialer.DialAndSend(message)
}

type disabledMailer struct{}

func (disabledMailer) Send(context.Context, Email) error { return ErrMailerDisabled }
