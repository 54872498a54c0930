package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"
)

// Sender delivers one built Message. The SMTP implementation opens a
// fresh connection per send, so a single Sender is safe for concurrent
// use by multiple in-flight requests.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
	Verify(ctx context.Context) error
}

// SMTPTransport speaks SMTP with STARTTLS and AUTH PLAIN against the
// configured submission host.
type SMTPTransport struct {
	cfg Config
}

func NewTransport(cfg Config) *SMTPTransport {
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) client(ctx context.Context) (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", t.cfg.Host, t.cfg.Port)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smtp greeting: %w", err)
	}

	if t.cfg.StartTLS {
		if err := client.StartTLS(&tls.Config{ServerName: t.cfg.Host}); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}

	if t.cfg.Username != "" && t.cfg.Password != "" {
		auth := smtp.PlainAuth("", t.cfg.Username, t.cfg.Password, t.cfg.Host)
		if err := client.Auth(auth); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("smtp auth: %w", err)
		}
	}

	return client, nil
}

func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	body, err := msg.Build()
	if err != nil {
		return err
	}

	client, err := t.client(ctx)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Mail(t.cfg.FromAddress); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return nil
}

// Verify dials the host, authenticates and quits. It backs the health
// endpoint and the startup check.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	client, err := t.client(ctx)
	if err != nil {
		return err
	}
	defer client.Quit()
	return client.Noop()
}
