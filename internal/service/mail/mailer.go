// Package mail sends the transactional account emails over SMTP.
// Delivery is best-effort: callers fire sends in the background and
// failures are logged, never surfaced to the HTTP client.
package mail

import (
	"fmt"
	"log/slog"

	gomail "github.com/go-mail/mail/v2"
)

// Mailer defines the transactional notifications the application sends.
type Mailer interface {
	// SendWelcome greets a freshly signed-up user.
	SendWelcome(email, name string) error

	// SendCancellation follows up on an account deletion.
	SendCancellation(email, name string) error
}

// SMTPMailer implements Mailer using an SMTP dialer.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
	logger *slog.Logger
}

// NewSMTPMailer creates a new SMTPMailer.
// If logger is nil, a default logger will be used.
func NewSMTPMailer(host string, port int, username, password, sender string, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		sender: sender,
		logger: logger.With(slog.String("component", "mailer")),
	}
}

// Ensure SMTPMailer implements Mailer interface
var _ Mailer = (*SMTPMailer)(nil)

// SendWelcome implements the Mailer interface.
func (m *SMTPMailer) SendWelcome(email, name string) error {
	body := fmt.Sprintf(
		"Welcome to the task-manager app, %s! Let us know how you get along with the app.",
		name,
	)
	return m.send(email, "Thanks for joining in..", body)
}

// SendCancellation implements the Mailer interface.
func (m *SMTPMailer) SendCancellation(email, name string) error {
	body := fmt.Sprintf("Hey %s! Let us know why you deleted your account.", name)
	return m.send(email, "Account Removal", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("failed to send mail",
			slog.String("to", to),
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Info("mail sent",
		slog.String("to", to),
		slog.String("subject", subject))
	return nil
}

// NopMailer is a Mailer that silently drops every message. It stands in for
// the SMTP mailer when no mail host is configured.
type NopMailer struct{}

// Ensure NopMailer implements Mailer interface
var _ Mailer = (*NopMailer)(nil)

// SendWelcome implements the Mailer interface.
func (NopMailer) SendWelcome(email, name string) error { return nil }

// SendCancellation implements the Mailer interface.
func (NopMailer) SendCancellation(email, name string) error { return nil }
