// Package mailer delivers assignment notifications. Delivery is
// best-effort: callers log failures and move on, nothing is retried.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"

	"issue-tracker/internal/config"
)

type Notifier interface {
	Send(to, subject, body string) error
}

// SMTP sends plain-text mail through a single relay.
type SMTP struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewSMTP(host, port, username, password, from string) *SMTP {
	return &SMTP{host: host, port: port, username: username, password: password, from: from}
}

func (s *SMTP) Send(to, subject, body string) error {
	addr := s.host + ":" + s.port

	msg := "From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		body

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

// LogOnly is the notifier used when no SMTP relay is configured.
type LogOnly struct{}

func (LogOnly) Send(to, subject, _ string) error {
	log.Printf("mail disabled, would have sent %q to %s", subject, to)
	return nil
}

func FromConfig(cfg *config.Config) Notifier {
	if cfg.SMTPHost == "" {
		return LogOnly{}
	}
	return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
}
