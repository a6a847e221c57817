// Package mailer sends outbound email over SMTP.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/bookradio/bookradio-server/internal/config"
)

// Message is a single outbound email.
type Message struct {
	To       string
	Subject  string
	BodyText string
	BodyHTML string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers messages through a configured SMTP relay with
// STARTTLS and optional PLAIN authentication.
type SMTPMailer struct {
	cfg         config.SMTPConfig
	logger      *slog.Logger
	dialTimeout time.Duration
}

// NewSMTP creates a mailer for the given SMTP configuration.
func NewSMTP(cfg config.SMTPConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg:         cfg,
		logger:      logger,
		dialTimeout: 30 * time.Second,
	}
}

// Send delivers a message. The context bounds the connection dial.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.cfg.Host == "" {
		return fmt.Errorf("smtp host not configured")
	}

	raw := m.buildMessage(msg)
	if err := m.sendSMTP(ctx, msg.To, raw); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}

	if m.logger != nil {
		m.logger.Info("Mail sent", "to", msg.To, "subject", msg.Subject)
	}
	return nil
}

// buildMessage constructs the wire-format message with headers.
func (m *SMTPMailer) buildMessage(msg Message) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("From: BookRadio <%s>\r\n", m.cfg.From))
	b.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")

	hasHTML := msg.BodyHTML != ""
	hasText := msg.BodyText != ""

	switch {
	case hasHTML && hasText:
		boundary := fmt.Sprintf("boundary_%d", time.Now().UnixNano())
		b.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary))

		b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.BodyText)
		b.WriteString("\r\n")

		b.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.BodyHTML)
		b.WriteString("\r\n")

		b.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	case hasHTML:
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.BodyHTML)
	default:
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.BodyText)
	}

	return b.String()
}

func (m *SMTPMailer) sendSMTP(ctx context.Context, to, raw string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	dialer := &net.Dialer{Timeout: m.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	if ok, _ := client.Extension("STARTTLS"); ok {
		tlsConfig := &tls.Config{
			ServerName: m.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("start message: %w", err)
	}
	if _, err := writer.Write([]byte(raw)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	// The message is already accepted; a failed QUIT is not an error.
	_ = client.Quit()
	return nil
}

// Noop discards all messages. Used in tests and when SMTP is not
// configured.
type Noop struct{}

// Send implements Mailer as a no-op.
func (Noop) Send(context.Context, Message) error { return nil }
