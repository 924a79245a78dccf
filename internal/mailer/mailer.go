// Package mailer sends plain-text notification emails over SMTP. It is
// used for best-effort delivery of support request notifications to the
// ops inbox; persistence never depends on it.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds the SMTP connection settings and the fixed sender and
// recipient for notifications.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
}

// Mailer sends notifications to a fixed ops address.
type Mailer struct {
	cfg Config
}

// New validates the configuration and returns a Mailer.
func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" || cfg.Port == "" {
		return nil, fmt.Errorf("SMTP host and port must be provided")
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, fmt.Errorf("SMTP username and password must be provided")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("sender and recipient addresses must be provided")
	}
	return &Mailer{cfg: cfg}, nil
}

// Send delivers a plain-text email with the given subject and body.
func (m *Mailer) Send(subject, body string) error {
	if strings.TrimSpace(subject) == "" {
		return fmt.Errorf("email subject cannot be empty")
	}

	addr := m.cfg.Host + ":" + m.cfg.Port
	message := []byte(fmt.Sprintf("To: %s\r\n"+
		"From: %s\r\n"+
		"Subject: %s\r\n"+
		"Content-Type: text/plain; charset=UTF-8\r\n"+
		"\r\n"+
		"%s\r\n", m.cfg.To, m.cfg.From, subject, body))

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{m.cfg.To}, message); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", addr, err)
	}
	return nil
}
