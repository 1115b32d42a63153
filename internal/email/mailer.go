package email

import (
	"fmt"
	"sync"

	"gopkg.in/gomail.v2"

	"github.com/pinewood/booking-api/internal/config"
)

// Mailer is an injected SMTP capability with an explicit lifecycle. It is
// passed into the notification service rather than referenced as a shared
// global, and the owner is responsible for Close on shutdown.
type Mailer interface {
	Send(to, subject, body string) error
	Verify() error
	Close() error
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string

	mu     sync.Mutex
	sender gomail.SendCloser
}

// NewSMTPMailer builds a mailer from the SMTP config. The connection is
// established lazily on first send, or eagerly via Verify.
func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// connect dials the SMTP server if no live connection exists. Callers must
// hold mu.
func (m *smtpMailer) connect() error {
	if m.sender != nil {
		return nil
	}
	sender, err := m.dialer.Dial()
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	m.sender = sender
	return nil
}

// Verify dials the server to prove the configuration works, keeping the
// connection for subsequent sends.
func (m *smtpMailer) Verify() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connect()
}

func (m *smtpMailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.connect(); err != nil {
		return err
	}
	if err := gomail.Send(m.sender, msg); err != nil {
		// Drop the connection so the next send redials instead of
		// reusing a broken session.
		m.sender.Close()
		m.sender = nil
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (m *smtpMailer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sender == nil {
		return nil
	}
	err := m.sender.Close()
	m.sender = nil
	return err
}
