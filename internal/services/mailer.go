package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"
)

var ErrMailerNotConfigured = errors.New("email credentials are not configured")

// Mailer delivers an already rendered HTML email.
type Mailer interface {
	SendHTML(ctx context.Context, to, subject, html string) error
}

// SMTPMailer relays through an authenticated SMTP account (a Gmail address
// with an app password by default).
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{host: host, port: port, username: username, password: password}
}

func (m *SMTPMailer) SendHTML(ctx context.Context, to, subject, html string) error {
	if m.username == "" || m.password == "" {
		return ErrMailerNotConfigured
	}

	msg := mail.NewMsg()

	if err := msg.From(m.username); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.username),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)

	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
